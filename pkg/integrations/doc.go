// Package integrations provides shared HTTP plumbing for upstream
// sources: a caching JSON/text client, quota accounting, and the
// classification of transport failures into stable error codes.
//
// Concrete sources live in subpackages: trendpage scrapes the trending
// listing pages, github talks to the REST API for per-repository
// detail. Both are built on [Client].
package integrations

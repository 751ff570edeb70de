// Package trending implements the trending aggregation engine.
//
// The engine combines two sources: a listing source (the unauthenticated
// trending page, rank-ordered but metadata-poor) and a detail source (the
// authenticated REST API, rate-limited but authoritative). For each
// requested language it fetches one listing page, enriches the retained
// rows through a bounded worker pool, and merges the per-language groups
// into one deterministic result.
//
// # Components
//
//   - Allocate: splits a requested limit into per-language quotas
//   - Pipeline: per-language fetch + enrichment with backoff on quota errors
//   - Plan/Assemble: shortfall redistribution and final ordering
//   - Service: the facade consumed by the CLI and the HTTP server
//
// Ordering is part of the contract: within a language, ranks follow the
// listing page exactly; across languages, groups follow the caller-supplied
// language order. Enrichment concurrency never changes observable order.
package trending

package integrations

import (
	"net/http"
	"time"

	"github.com/matzehuels/trendtower/pkg/buildinfo"
)

const httpTimeout = 10 * time.Second

// NewHTTPClient creates an HTTP client with the standard timeout for
// upstream requests. The timeout covers the whole exchange including
// body read; slower responses surface as TIMEOUT errors.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// UserAgent identifies this tool to upstream services. GitHub rejects
// requests without one.
func UserAgent() string {
	return "trendtower/" + buildinfo.Version
}

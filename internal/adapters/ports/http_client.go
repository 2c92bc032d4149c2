package ports

import "net/http"

// HTTPClient is the subset of *http.Client used by gateway adapters.
// Tests substitute an httptest server client or a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

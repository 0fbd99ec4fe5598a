// Package httpmiddleware provides HTTP server middleware: panic recovery,
// request IDs, request logging, CORS, and rate limiting.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler. The alias matches the signature
// chi's Router.Use expects, so these compose directly with chi routers.
type Middleware = func(http.Handler) http.Handler

// Package httpclient provides a small JSON-over-HTTP client used for
// service-to-service calls. It wraps net/http with a base URL, default
// headers, bearer token injection, and status-code classification into
// application errors.
package httpclient

// Package web serves the mashup HTML form and a small JSON API.
//
// POST / accepts the multipart form, validates it with the web bounds, and
// runs the pipeline inside the request; the response is the plain-text
// outcome. GET /api/runs lists run history and is guarded by an optional
// bearer token. /healthz and /metrics are always open.
package web

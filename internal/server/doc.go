// Package server exposes the funnel calculator over HTTP.
//
// Routes are served by a chi router:
//
//	GET  /healthz          liveness check
//	GET  /api/v1/funnel    report from query parameters
//	POST /api/v1/funnel    report from a JSON body
//	GET  /metrics          Prometheus exposition
//
// Rejected inputs answer 400 with a JSON body {"error": ..., "field": ...}.
package server

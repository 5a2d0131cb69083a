// Package api hosts the HTTP server, middleware, and REST handlers of the
// gateway. Notable routes:
//   - GET /lookup?callsign=... returns the normalized callsign record.
//   - GET /openapi.json and /openapi.yaml serve the API description.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api

// Package api hosts the HTTP server, middleware, and REST handlers.
// Notable routes:
//   - GET /healthz / readyz for Kubernetes liveness and readiness checks.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/items for the cached priority-source feed.
//   - POST /v1/analyze and /v1/email for per-notice actions.
//   - GET /v1/digest for the model-written news digest.
//   - GET|POST /v1/cron/scrape for scheduled cache refreshes.
package api

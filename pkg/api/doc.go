// Package api provides the HTTP REST API server for the drink catalog.
//
// # Overview
//
// The API is built on gorilla/mux and exposes five routes over the drink
// repository. Reads of the short projection are public; everything else
// requires a bearer token whose permissions claim grants the route's
// permission.
//
// # API Endpoints
//
//	GET    /drinks             public              short projections, 404 when empty
//	GET    /drinks-detail      get:drinks-detail   long projections, 404 when empty
//	POST   /drinks             post:drinks         create, 409 when the title exists
//	PATCH  /drinks/{id}        patch:drinks        replace title and recipe, 404 when absent
//	DELETE /drinks/{id}        delete:drinks       delete, 404 when absent
//
// Successful responses are {"success": true, "drinks": [...]} or, for
// deletes, {"success": true, "delete": <id>}. Failures use the envelope
// written by httputil.WriteAPIError.
//
// # Usage
//
//	gate := middleware.NewGate(validator, logger, metrics)
//	server := api.NewServer(repo, gate, logger).
//		WithMetrics(metrics).
//		WithTracing(cfg.Observability.OTelEnabled).
//		WithCORSOrigins(cfg.Server.CORSOrigins)
//	http.ListenAndServe(":8080", server.Handler())
//
// Handler wraps the router with request id propagation, request logging,
// panic recovery, CORS and a request body size limit.
package api

// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Error Envelope
//
// Every failure is rendered as
//
//	{"success": false, "error": 404, "message": "resource not found"}
//
// Handlers return errors and let WriteAPIError pick the status. Errors that
// implement StatusError (the envelope sentinels here, auth.AuthError,
// drinks.ValidationError) carry their own status and message. Anything else
// is a 500 with the fixed message "internal server error".
//
//	if err := repo.Delete(ctx, id); err != nil {
//		httputil.WriteAPIError(w, err)
//		return
//	}
//
// # Request Parsing
//
//	var body interface{}
//	if err := httputil.ParseJSON(r, &body); err != nil {
//		httputil.WriteAPIError(w, httputil.ErrBadRequest)
//		return
//	}
//	id, err := httputil.ParsePathInt64(r, "id")
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.RequestIDMiddleware,
//		httputil.CORSMiddleware(cfg.Server.CORSOrigins),
//		httputil.LoggingMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
package httputil

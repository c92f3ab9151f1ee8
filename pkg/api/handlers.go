package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/coffeeshop/pkg/contextkeys"
	"github.com/platinummonkey/coffeeshop/pkg/drinks"
	"github.com/platinummonkey/coffeeshop/pkg/httputil"
	"github.com/platinummonkey/coffeeshop/pkg/observability"
	"github.com/platinummonkey/coffeeshop/pkg/storage"
)

// listDrinks handles GET /drinks
func (s *Server) listDrinks(w http.ResponseWriter, r *http.Request) {
	all, err := s.repo.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(all) == 0 {
		httputil.WriteAPIError(w, httputil.ErrNotFound)
		return
	}
	_ = httputil.WriteSuccess(w, shortResponse(all))
}

// listDrinksDetail handles GET /drinks-detail
func (s *Server) listDrinksDetail(w http.ResponseWriter, r *http.Request) {
	all, err := s.repo.ListAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(all) == 0 {
		httputil.WriteAPIError(w, httputil.ErrNotFound)
		return
	}
	_ = httputil.WriteSuccess(w, longResponse(all...))
}

// createDrink handles POST /drinks
func (s *Server) createDrink(w http.ResponseWriter, r *http.Request) {
	title, recipe, ok := s.decodeDrink(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if _, err := s.repo.FindByTitle(ctx, title); err == nil {
		httputil.WriteAPIError(w, httputil.ErrConflict)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.fail(w, r, err)
		return
	}

	drink := &drinks.Drink{Title: title, Recipe: recipe}
	if err := s.repo.Insert(ctx, drink); err != nil {
		s.fail(w, r, err)
		return
	}

	s.loggerFor(r).WithField("drink_id", drink.ID).Info("Drink created")
	_ = httputil.WriteSuccess(w, longResponse(*drink))
}

// updateDrink handles PATCH /drinks/{id}
func (s *Server) updateDrink(w http.ResponseWriter, r *http.Request) {
	title, recipe, ok := s.decodeDrink(w, r)
	if !ok {
		return
	}

	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		// the route only matches digits, so this is an id beyond int64
		httputil.WriteAPIError(w, httputil.ErrNotFound)
		return
	}

	ctx := r.Context()
	drink, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	drink.Title = title
	drink.Recipe = recipe
	if err := s.repo.Update(ctx, drink); err != nil {
		s.fail(w, r, err)
		return
	}

	s.loggerFor(r).WithField("drink_id", drink.ID).Info("Drink updated")
	_ = httputil.WriteSuccess(w, longResponse(*drink))
}

// deleteDrink handles DELETE /drinks/{id}
func (s *Server) deleteDrink(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteAPIError(w, httputil.ErrNotFound)
		return
	}

	ctx := r.Context()
	drink, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.Delete(ctx, drink.ID); err != nil {
		s.fail(w, r, err)
		return
	}

	s.loggerFor(r).WithField("drink_id", drink.ID).Info("Drink deleted")
	_ = httputil.WriteSuccess(w, DeleteResponse{Success: true, Delete: drink.ID})
}

// decodeDrink parses and validates a drink payload, writing the error
// response itself when the payload is rejected
func (s *Server) decodeDrink(w http.ResponseWriter, r *http.Request) (string, []drinks.Ingredient, bool) {
	var body interface{}
	if err := httputil.ParseJSON(r, &body); err != nil {
		s.loggerFor(r).WithError(err).Debug("Rejected request body")
		httputil.WriteAPIError(w, httputil.ErrBadRequest)
		return "", nil, false
	}

	title, recipe, err := drinks.DecodePayload(body)
	if err != nil {
		s.loggerFor(r).WithError(err).Debug("Rejected drink payload")
		httputil.WriteAPIError(w, err)
		return "", nil, false
	}
	return title, recipe, true
}

// fail maps repository errors onto the error envelope. Unexpected errors are
// logged and rendered as 500 without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteAPIError(w, httputil.ErrNotFound)
	case errors.Is(err, storage.ErrConflict):
		httputil.WriteAPIError(w, httputil.ErrConflict)
	default:
		s.loggerFor(r).WithError(err).Error("Drink store operation failed")
		httputil.WriteAPIError(w, httputil.ErrInternal)
	}
}

// loggerFor prefers the request-scoped logger installed by LoggingMiddleware
func (s *Server) loggerFor(r *http.Request) *observability.Logger {
	logger := s.logger
	if reqLogger, ok := r.Context().Value(contextkeys.LoggerKey).(*observability.Logger); ok {
		logger = reqLogger
	}
	if subject := contextkeys.GetSubject(r.Context()); subject != "" {
		logger = logger.WithField("subject", subject)
	}
	return observability.UpdateLoggerWithTraceContext(r.Context(), logger)
}

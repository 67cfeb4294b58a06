package v1

import (
	"context"
	"net/http"

	"spooltrack/interfaces/http/rest/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
)

// NewRouter creates the legacy v1 API router. It serves the same
// handlers as v2 on the flat route layout older clients still use.
func NewRouter(
	componentHandler *handlers.ComponentHandler,
	inferenceHandler *handlers.InferenceHandler,
	historyHandler *handlers.HistoryHandler,
) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	// Component endpoints
	v1.HandleFunc("/components", componentHandler.ListComponents).Methods("GET")
	v1.HandleFunc("/components/{componentID}", adapt(componentHandler.GetComponent)).Methods("GET")
	v1.HandleFunc("/components/{componentID}/subtree", adapt(componentHandler.GetSubtree)).Methods("GET")
	v1.HandleFunc("/components/{componentID}/children", adapt(componentHandler.AddChild)).Methods("POST")
	v1.HandleFunc("/components/{componentID}/children/{childID}", adapt(componentHandler.RemoveChild)).Methods("DELETE")
	v1.HandleFunc("/components/{componentID}/parent", adapt(componentHandler.MoveComponent)).Methods("PUT")

	// Mass endpoints
	v1.HandleFunc("/components/{componentID}/measurements", adapt(inferenceHandler.RecordMeasurement)).Methods("POST")
	v1.HandleFunc("/components/{componentID}/measurements", adapt(inferenceHandler.ListMeasurements)).Methods("GET")
	v1.HandleFunc("/components/{componentID}/infer-mass", adapt(inferenceHandler.InferMass)).Methods("POST")
	v1.HandleFunc("/components/{componentID}/scale-reading", adapt(inferenceHandler.ScaleReading)).Methods("POST")

	// Sibling endpoint
	v1.HandleFunc("/siblings", componentHandler.CreateSibling).Methods("POST")

	// Inventory lifecycle
	v1.HandleFunc("/inventory/refresh", componentHandler.RefreshInventory).Methods("POST")

	// Undo/redo endpoints
	v1.HandleFunc("/history", historyHandler.GetHistory).Methods("GET")
	v1.HandleFunc("/history/undo", historyHandler.Undo).Methods("POST")
	v1.HandleFunc("/history/redo", historyHandler.Redo).Methods("POST")

	// Health check
	v1.HandleFunc("/health", healthCheck).Methods("GET")

	v1.Use(versionHeaders)

	return router
}

// adapt bridges mux path variables into the chi route context the
// shared handlers read from
func adapt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.NewRouteContext()
		for key, value := range mux.Vars(r) {
			rctx.URLParams.Add(key, value)
		}
		ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
		h(w, r.WithContext(ctx))
	}
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}

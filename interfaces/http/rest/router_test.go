package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spooltrack/application/builder"
	"spooltrack/application/history"
	"spooltrack/application/inference"
	"spooltrack/application/merge"
	"spooltrack/application/queries"
	"spooltrack/application/services"
	domaincfg "spooltrack/domain/config"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/scan"
	"spooltrack/infrastructure/config"
	"spooltrack/infrastructure/di"
	"spooltrack/infrastructure/messaging/eventbridge"
	"spooltrack/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func devConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		EnableCORS:  false,
	}
}

// newTestHandler wires the full stack on in-memory infrastructure
func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	now := time.Now()

	store := memory.NewOverlayStore()
	source := memory.NewScanSource([]scan.Record{
		{TagUID: "tag-a", TrayUID: "tray-1", Material: "PLA", ColorName: "Black", ScannedAt: now},
		{TagUID: "tag-b", TrayUID: "tray-1", ScannedAt: now},
	})

	assembly := services.NewAssemblyService(
		source, store,
		builder.NewGraphBuilder(logger),
		merge.NewMerger(logger),
		di.ProvideCache(),
		eventbridge.NewNopPublisher(),
		logger,
	)
	dcfg := domaincfg.DefaultDomainConfig()
	components := services.NewComponentService(
		assembly, store,
		eventbridge.NewNopPublisher(),
		memory.NewLocalLock(),
		inference.NewEngine(dcfg, logger),
		history.NewHistory(dcfg),
		logger,
	)

	router := NewRouter(
		di.ProvideCommandBus(components, assembly, logger),
		di.ProvideQueryBus(assembly, components),
		cfg,
		logger,
	)
	return router.Setup()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func trayPath(suffix string) string {
	return "/api/v2/components/" + valueobjects.NewGeneratedComponentID("tray", "tray-1").String() + suffix
}

func TestRouter_HealthEndpoints(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ListComponents(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet, "/api/v2/components", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", rec.Header().Get("X-API-Version"))

	var list queries.ComponentListView
	decodeBody(t, rec, &list)
	assert.Equal(t, 3, list.Total)

	rec = doRequest(t, handler, http.MethodGet, "/api/v2/components?roots_only=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.Total)
}

func TestRouter_GetComponent(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet, trayPath(""), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view queries.ComponentView
	decodeBody(t, rec, &view)
	assert.Equal(t, "PLA Black", view.Name)
	assert.Len(t, view.Children, 2)
}

func TestRouter_GetComponent_BadID(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet, "/api/v2/components/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GetComponent_NotFound(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet,
		"/api/v2/components/"+valueobjects.NewComponentID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AddChildAndUndo(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodPost, trayPath("/children"),
		map[string]interface{}{"name": "Desiccant Pack", "category": "accessory"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v2/components", nil)
	var list queries.ComponentListView
	decodeBody(t, rec, &list)
	assert.Equal(t, 4, list.Total)

	rec = doRequest(t, handler, http.MethodGet, "/api/v2/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist queries.HistoryView
	decodeBody(t, rec, &hist)
	assert.True(t, hist.CanUndo)
	assert.False(t, hist.CanRedo)

	rec = doRequest(t, handler, http.MethodPost, "/api/v2/history/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v2/components", nil)
	decodeBody(t, rec, &list)
	assert.Equal(t, 3, list.Total)
}

func TestRouter_AddChild_MissingName(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodPost, trayPath("/children"),
		map[string]interface{}{"category": "accessory"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UndoEmptyHistory(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodPost, "/api/v2/history/undo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MeasurementAndInferencePreview(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodPost, trayPath("/measurements"),
		map[string]interface{}{"grams": 20.0, "type": "manual"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, trayPath("/measurements"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var measurements []queries.MeasurementView
	decodeBody(t, rec, &measurements)
	assert.Len(t, measurements, 1)

	// Preview must not mutate; the tags stay unknown
	rec = doRequest(t, handler, http.MethodPost, trayPath("/infer-mass"),
		map[string]interface{}{"total_grams": 32.0, "apply": false})
	require.Equal(t, http.StatusOK, rec.Code)
	var preview queries.InferenceView
	decodeBody(t, rec, &preview)
	assert.True(t, preview.Success)
	assert.Len(t, preview.Assignments, 2)

	rec = doRequest(t, handler, http.MethodPost, trayPath("/infer-mass"),
		map[string]interface{}{"total_grams": 32.0, "apply": true})
	require.Equal(t, http.StatusOK, rec.Code)

	tagPath := "/api/v2/components/" + valueobjects.NewGeneratedComponentID("tag", "tag-a").String()
	rec = doRequest(t, handler, http.MethodGet, tagPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view queries.ComponentView
	decodeBody(t, rec, &view)
	require.NotNil(t, view.MassGrams)
	assert.InDelta(t, 6.0, *view.MassGrams, 0.001)
	assert.True(t, view.MassInferred)
}

func TestRouter_ScaleReadingRejectsUnstable(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodPost, trayPath("/scale-reading"),
		map[string]interface{}{"value": 100.0, "unit": "g", "stable": false, "apply": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var preview queries.InferenceView
	decodeBody(t, rec, &preview)
	assert.False(t, preview.Success)
}

func TestRouter_LegacyAPIRedirectsByDefault(t *testing.T) {
	handler := newTestHandler(t, devConfig())

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/components", nil)
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/api/v2/components", rec.Header().Get("Location"))
}

func TestRouter_LegacyAPIServedWhenEnabled(t *testing.T) {
	cfg := devConfig()
	cfg.EnableLegacyAPI = true
	handler := newTestHandler(t, cfg)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/components", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))

	var list queries.ComponentListView
	decodeBody(t, rec, &list)
	assert.Equal(t, 3, list.Total)
}

func TestRouter_ProductionRequiresToken(t *testing.T) {
	cfg := devConfig()
	cfg.Environment = "production"
	cfg.JWTSecret = "test-secret-key-for-router-tests"
	handler := newTestHandler(t, cfg)

	rec := doRequest(t, handler, http.MethodGet, "/api/v2/components", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

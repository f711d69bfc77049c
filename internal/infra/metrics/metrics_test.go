package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric any
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"DispatchTotal", DispatchTotal},
		{"PlayRejectionsTotal", PlayRejectionsTotal},
		{"SessionsActive", SessionsActive},
		{"SessionsReapedTotal", SessionsReapedTotal},
		{"RenderCommandsTotal", RenderCommandsTotal},
		{"CatalogRecords", CatalogRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.metric)
		})
	}
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/titles/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/titles/{name}", "418"))

	for _, name := range []string{"blue-moon", "summertime"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/titles/"+name, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/titles/{name}", "418"))
	assert.Equal(t, 2.0, after-before)

	skippedBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, skippedBefore, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")))
}

func TestMiddleware_Unmatched(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "unmatched", "200"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/anything", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "unmatched", "200"))

	assert.Equal(t, 1.0, after-before)
}

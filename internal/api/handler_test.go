package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetupRoutesInstallsMiddlewareOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, nil, nil, nil, nil)
	router := gin.New()
	h.SetupRoutes(router)

	// Recovery, metrics and logging all come from SetupRoutes; the engine
	// must start bare so none of them runs twice per request.
	assert.Len(t, router.Handlers, 3)
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, nil, nil, nil, nil)
	router := gin.New()
	h.SetupRoutes(router)

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

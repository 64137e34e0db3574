package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(authKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(authKey))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidKey(t *testing.T) {
	router := newAuthRouter("secret")
	w := doRequest(router, "Bearer secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := newAuthRouter("secret")
	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongKey(t *testing.T) {
	router := newAuthRouter("secret")
	w := doRequest(router, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := newAuthRouter("secret")
	w := doRequest(router, "secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, "Basic secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareDisabledWhenUnset(t *testing.T) {
	router := newAuthRouter("")
	w := doRequest(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func identityRouter(skip ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity(skip...))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "guest": IsGuest(c)})
	}
	router.GET("/api/v1/documents/current", handler)
	router.GET("/health", handler)
	router.OPTIONS("/api/v1/documents/current", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestIdentityAllowsOptionsWithoutIdentity(t *testing.T) {
	router := identityRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents/current", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestIdentityPrefersUserHeader(t *testing.T) {
	router := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	req.Header.Set(HeaderUserID, "user-42")
	req.Header.Set(HeaderGuestID, "browser-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"guest":false,"userId":"user-42"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestIdentityGuestPrefix(t *testing.T) {
	router := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	req.Header.Set(HeaderGuestID, " browser-1 ")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if body := resp.Body.String(); body != `{"guest":true,"userId":"guest:browser-1"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestIdentityMissingHeaders(t *testing.T) {
	router := identityRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestIdentitySkipsConfiguredPaths(t *testing.T) {
	router := identityRouter("/health")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

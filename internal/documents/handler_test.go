package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/bootstrap"
	"ats-backend/internal/shared/config"
)

func TestDocumentsUploadAndCurrent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := newTestRouter(t)

	// Upload a small file.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "hello.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("hello world")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}

	var created struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}

	// Fetch current document.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}

	var current struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&current); err != nil {
		t.Fatalf("decode current response: %v", err)
	}
	if current.FileName != "hello.txt" {
		t.Fatalf("expected fileName hello.txt, got %s", current.FileName)
	}

	// Fetch by id.
	reqByID := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	addGuestHeader(reqByID)
	respByID := httptest.NewRecorder()
	router.ServeHTTP(respByID, reqByID)
	if respByID.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respByID.Code)
	}

	// Another principal cannot see it.
	reqOther := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	reqOther.Header.Set("X-Guest-Id", "someone-else")
	respOther := httptest.NewRecorder()
	router.ServeHTTP(respOther, reqOther)
	if respOther.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for other user, got %d", respOther.Code)
	}
}

func TestDocumentsUploadRejectsUnsupportedType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newTestRouter(t)

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	req := multipartRequest(t, "photo.png", png)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status 415, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "unsupported_media_type" {
		t.Fatalf("unexpected error code %q", body.Error.Code)
	}
}

func TestDocumentsRequireIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestDocumentsCurrentNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		Port:                "0",
		CORSAllowOrigin:     []string{"http://localhost:5173"},
		LocalStoreDir:       t.TempDir(),
		Env:                 "dev",
		ObjectStoreType:     "local",
		ParserProvider:      "none",
		KeywordMatch:        "substring",
		RateLimitScoreRPS:   100,
		RateLimitScoreBurst: 100,
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func multipartRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

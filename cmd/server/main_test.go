package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
	"github.com/thexDman/domain-monitoring-devops/pkg/database"
	"github.com/thexDman/domain-monitoring-devops/pkg/domains"
	"github.com/thexDman/domain-monitoring-devops/pkg/monitor"
	"github.com/thexDman/domain-monitoring-devops/pkg/notify"
)

var router *gin.Engine

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "domwatch-server-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := database.Init(filepath.Join(dir, "test.db")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := database.SeedAdmin(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	engine = domains.NewEngine(database.DB)
	scanner = monitor.New(1, time.Second, false)
	notifier = notify.New("")
	router = newRouter()

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func doJSON(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w, payload
}

func loginAs(t *testing.T, username, password string) string {
	t.Helper()
	w, payload := doJSON(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := payload["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerUser(t *testing.T, username, password string) string {
	t.Helper()
	w, _ := doJSON(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username:             username,
		Password:             password,
		PasswordConfirmation: password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return loginAs(t, username, password)
}

func TestHealth(t *testing.T) {
	w, payload := doJSON(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, payload["ok"])
}

func TestLoginSeededAdmin(t *testing.T) {
	token := loginAs(t, "admin", "Domwatch1")
	require.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	w, payload := doJSON(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: "admin",
		Password: "WrongPass1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid username or password", payload["error"])

	w, payload = doJSON(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: "nobody",
		Password: "Domwatch1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid username or password", payload["error"])
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body api.RegisterRequest
		want string
	}{
		{
			"mismatch",
			api.RegisterRequest{Username: "u1", Password: "Passw0rd", PasswordConfirmation: "Other0rd"},
			"Password and Password Confirmation are not the same.",
		},
		{
			"too short",
			api.RegisterRequest{Username: "u1", Password: "Pas0rd", PasswordConfirmation: "Pas0rd"},
			"Password is not between 8 to 12 characters.",
		},
		{
			"no digit",
			api.RegisterRequest{Username: "u1", Password: "Password", PasswordConfirmation: "Password"},
			"Password does not include at least one digit.",
		},
		{
			"blank username",
			api.RegisterRequest{Username: "   ", Password: "Passw0rd", PasswordConfirmation: "Passw0rd"},
			"Username invalid.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, payload := doJSON(t, http.MethodPost, "/api/auth/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, tt.want, payload["error"])
		})
	}
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	registerUser(t, "taken", "Passw0rd")

	w, payload := doJSON(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username:             "taken",
		Password:             "Passw0rd",
		PasswordConfirmation: "Passw0rd",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Username already taken.", payload["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	w, _ := doJSON(t, http.MethodGet, "/api/domains", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/domains", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDomainLifecycle(t *testing.T) {
	token := registerUser(t, "lifecycle", "Passw0rd")

	// Add accepts raw input and stores the normalized host.
	w, payload := doJSON(t, http.MethodPost, "/api/domains", token, api.AddDomainRequest{
		Domain: "HTTPS://Example.COM/login",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "example.com", payload["domain"])

	w, payload = doJSON(t, http.MethodPost, "/api/domains", token, api.AddDomainRequest{
		Domain: "example.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "Domain already exists", payload["error"])

	w, _ = doJSON(t, http.MethodPost, "/api/domains", token, api.AddDomainRequest{
		Domain: "not a domain",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// New records list as Pending with placeholder certificate fields.
	w, _ = doJSON(t, http.MethodGet, "/api/domains", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list api.ListDomainsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.True(t, list.OK)
	require.Len(t, list.Domains, 1)
	require.Equal(t, api.StatusPending, list.Domains[0].Status)
	require.Equal(t, "N/A", list.Domains[0].SSLExpiration)

	// Delete reports removed and not-found separately.
	w, _ = doJSON(t, http.MethodDelete, "/api/domains", token, api.DeleteDomainsRequest{
		Domains: []string{"example.com", "missing.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var del api.DeleteDomainsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &del))
	require.Equal(t, []string{"example.com"}, del.Summary.Removed)
	require.Equal(t, []string{"missing.com"}, del.Summary.NotFound)
}

func TestDeleteRequiresNonEmptyList(t *testing.T) {
	token := registerUser(t, "deleter", "Passw0rd")

	w, payload := doJSON(t, http.MethodDelete, "/api/domains", token, api.DeleteDomainsRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Request must include a non-empty 'domains' list", payload["error"])
}

func uploadFile(t *testing.T, token, filename, content string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/domains/bulk", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return w, payload
}

func TestBulkUpload(t *testing.T) {
	token := registerUser(t, "bulk", "Passw0rd")

	w, _ := uploadFile(t, token, "domains.txt", "one.com\ntwo.com\nbad input\none.com\n")
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.BulkUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"one.com", "two.com"}, resp.Summary.Added)
	require.Equal(t, []string{"one.com"}, resp.Summary.Duplicates)
	require.Len(t, resp.Summary.Invalid, 1)
	require.Equal(t, "bad input", resp.Summary.Invalid[0].Input)
}

func TestBulkUploadRejectsNonTxt(t *testing.T) {
	token := registerUser(t, "bulkcsv", "Passw0rd")

	w, payload := uploadFile(t, token, "domains.csv", "one.com\n")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Only .txt files allowed", payload["error"])
}

func TestBulkUploadRejectsEmptyFile(t *testing.T) {
	token := registerUser(t, "bulkempty", "Passw0rd")

	w, payload := uploadFile(t, token, "domains.txt", "\n\n")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "File is empty or invalid", payload["error"])
}

func TestScanWithEmptyWatchList(t *testing.T) {
	token := registerUser(t, "scanner", "Passw0rd")

	w, _ := doJSON(t, http.MethodGet, "/api/domains/scan", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ScanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Zero(t, resp.Updated)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/scanonce/internal/client/models"
)

func newStubServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL)
}

func TestRegister_Created(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/users/register", r.URL.Path)

		var req registerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "demo", req.Username)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Identity{ID: "u-1", Username: "demo", Email: "demo@example.com"})
	})

	identity, err := c.Register(context.Background(), "demo", "demo@example.com", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
}

func TestRegister_Conflict(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := c.Register(context.Background(), "demo", "demo@example.com", "demo123")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLogin_Success(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(loginResponse{
			Token:    "tok-123",
			Identity: models.Identity{ID: "u-1", Username: "demo"},
		})
	})

	session, err := c.Login(context.Background(), "demo", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", session.Token)
	assert.Equal(t, "u-1", session.Identity.ID)
}

func TestLogin_Unauthorized(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), "demo", "wrongpass")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateSession_SendsBearerToken(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.Identity{ID: "u-1", Username: "demo"})
	})

	identity, err := c.ValidateSession(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "demo", identity.Username)
}

func TestValidateSession_Invalid(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ValidateSession(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitScan_Accepted(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req submitScanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "CODE-1", req.CodeValue)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(submitScanResponse{
			Record: &models.ScanRecord{ID: "s-1", CodeValue: "CODE-1", RecordedAt: time.Now()},
		})
	})

	result, err := c.SubmitScan(context.Background(), "tok", "CODE-1")
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	require.NotNil(t, result.Record)
	assert.Equal(t, "CODE-1", result.Record.CodeValue)
}

func TestSubmitScan_DuplicateIsNotAnError(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(submitScanResponse{
			Duplicate: true,
			Message:   "this code has already been scanned",
		})
	})

	result, err := c.SubmitScan(context.Background(), "tok", "CODE-1")
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.Record)
}

func TestSubmitScan_Unauthorized(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.SubmitScan(context.Background(), "stale", "CODE-1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitScan_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewHTTPClient(srv.URL)

	_, err := c.SubmitScan(context.Background(), "tok", "CODE-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestContainsScan(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/scans/CODE-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(containsResponse{Exists: true})
	})

	exists, err := c.ContainsScan(context.Background(), "tok", "CODE-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHistory(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode([]*models.ScanRecord{
			{ID: "s-1", CodeValue: "CODE-1"},
			{ID: "s-2", CodeValue: "CODE-2"},
		})
	})

	records, err := c.History(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CODE-2", records[1].CodeValue)
}

func TestPing_Healthy(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte("ok"))
	})

	assert.NoError(t, c.Ping(context.Background()))
}

func TestPing_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewHTTPClient(srv.URL)

	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestExportLedger(t *testing.T) {
	c := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/ledger/export", r.URL.Path)
		_ = json.NewEncoder(w).Encode(exportResponse{Key: "snapshots/x.json", URL: "https://s3.local/x"})
	})

	key, url, err := c.ExportLedger(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "snapshots/x.json", key)
	assert.Equal(t, "https://s3.local/x", url)
}

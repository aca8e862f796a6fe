package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolkov/scanonce/internal/client/models"
	"github.com/avolkov/scanonce/internal/common"
)

// Wire DTOs mirroring the server's REST payloads.

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

type submitScanRequest struct {
	CodeValue string `json:"code_value"`
}

type submitScanResponse struct {
	Duplicate bool               `json:"duplicate"`
	Message   string             `json:"message"`
	Record    *models.ScanRecord `json:"record"`
}

type containsResponse struct {
	Exists bool `json:"exists"`
}

type exportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// HTTPClient implements Client against the server's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do sends one request. Transport failures map to ErrUnavailable so callers
// can tell a down server apart from a definitive rejection.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*models.Identity, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/users/register", "",
		registerRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var identity models.Identity
		if err := decodeBody(resp, &identity); err != nil {
			return nil, err
		}
		return &identity, nil
	case http.StatusConflict:
		drainClose(resp)
		return nil, ErrAlreadyExists
	default:
		drainClose(resp)
		return nil, fmt.Errorf("register: unexpected status %d", resp.StatusCode)
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/users/login", "",
		loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var lr loginResponse
		if err := decodeBody(resp, &lr); err != nil {
			return nil, err
		}
		return &models.Session{Token: lr.Token, Identity: lr.Identity, IssuedAt: time.Now()}, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return nil, ErrUnauthorized
	default:
		drainClose(resp)
		return nil, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}
}

// ValidateSession asks the server whether the token is still good and, if so,
// which identity it resolves to.
func (c *HTTPClient) ValidateSession(ctx context.Context, token string) (*models.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/session", token, nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var identity models.Identity
		if err := decodeBody(resp, &identity); err != nil {
			return nil, err
		}
		return &identity, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return nil, ErrUnauthorized
	default:
		drainClose(resp)
		return nil, fmt.Errorf("session: unexpected status %d", resp.StatusCode)
	}
}

// SubmitScan submits one code. A 409 with the duplicate flag is a normal
// outcome, not an error: the result carries Duplicate=true.
func (c *HTTPClient) SubmitScan(ctx context.Context, token, codeValue string) (*SubmitResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/scans", token,
		submitScanRequest{CodeValue: codeValue})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusConflict:
		var sr submitScanResponse
		if err := decodeBody(resp, &sr); err != nil {
			return nil, err
		}
		return &SubmitResult{Duplicate: sr.Duplicate, Message: sr.Message, Record: sr.Record}, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return nil, ErrUnauthorized
	default:
		drainClose(resp)
		return nil, fmt.Errorf("submit scan: unexpected status %d", resp.StatusCode)
	}
}

func (c *HTTPClient) ContainsScan(ctx context.Context, token, codeValue string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/scans/"+codeValue, token, nil)
	if err != nil {
		return false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var cr containsResponse
		if err := decodeBody(resp, &cr); err != nil {
			return false, err
		}
		return cr.Exists, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return false, ErrUnauthorized
	default:
		drainClose(resp)
		return false, fmt.Errorf("contains scan: unexpected status %d", resp.StatusCode)
	}
}

func (c *HTTPClient) History(ctx context.Context, token string) ([]*models.ScanRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/scans", token, nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var records []*models.ScanRecord
		if err := decodeBody(resp, &records); err != nil {
			return nil, err
		}
		return records, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return nil, ErrUnauthorized
	default:
		drainClose(resp)
		return nil, fmt.Errorf("history: unexpected status %d", resp.StatusCode)
	}
}

// Ping checks whether the server is reachable and healthy.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return err
	}
	drainClose(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections held by the underlying transport.
func (c *HTTPClient) Close() {
	c.http.CloseIdleConnections()
}

func (c *HTTPClient) ExportLedger(ctx context.Context, token string) (string, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/ledger/export", token, nil)
	if err != nil {
		return "", "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var er exportResponse
		if err := decodeBody(resp, &er); err != nil {
			return "", "", err
		}
		return er.Key, er.URL, nil
	case http.StatusUnauthorized:
		drainClose(resp)
		return "", "", ErrUnauthorized
	default:
		drainClose(resp)
		return "", "", fmt.Errorf("export: unexpected status %d", resp.StatusCode)
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/server/models"
)

// Wire DTOs. The duplicate outcome is signaled by a 409 plus an explicit
// flag rather than a generic failure, so clients can treat it as an
// expected result.

type identityPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type scanRecordPayload struct {
	ID         string    `json:"id"`
	CodeValue  string    `json:"code_value"`
	OwnerID    string    `json:"owner_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

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
	Identity identityPayload `json:"identity"`
}

type submitScanRequest struct {
	CodeValue string `json:"code_value"`
}

type submitScanResponse struct {
	Duplicate bool               `json:"duplicate"`
	Message   string             `json:"message,omitempty"`
	Record    *scanRecordPayload `json:"record,omitempty"`
}

type containsResponse struct {
	Exists bool `json:"exists"`
}

type exportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toIdentityPayload(u *models.User) identityPayload {
	return identityPayload{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toScanRecordPayload(r *models.ScanRecord) *scanRecordPayload {
	return &scanRecordPayload{ID: r.ID, CodeValue: r.CodeValue, OwnerID: r.OwnerID, RecordedAt: r.RecordedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		s.logger.Error(r.Context(), "register failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, toIdentityPayload(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Username, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, Identity: toIdentityPayload(user)})
}

// handleSession confirms the caller's token and echoes back the identity it
// resolves to. This is the validation endpoint session restore relies on.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}
	writeJSON(w, http.StatusOK, toIdentityPayload(user))
}

func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	user, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req submitScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CodeValue == "" {
		writeError(w, http.StatusBadRequest, "code_value is required")
		return
	}

	record, err := s.scans.RecordIfAbsent(r.Context(), req.CodeValue, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, submitScanResponse{
				Duplicate: true,
				Message:   "this code has already been scanned",
			})
			return
		}
		s.logger.Error(r.Context(), "scan submission failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "scan recorded", "code", record.CodeValue, "owner", record.OwnerID)
	writeJSON(w, http.StatusCreated, submitScanResponse{Record: toScanRecordPayload(record)})
}

func (s *Server) handleContains(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	exists, err := s.scans.Contains(r.Context(), code)
	if err != nil {
		s.logger.Error(r.Context(), "contains check failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, containsResponse{Exists: exists})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	records, err := s.scans.History(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "history failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]*scanRecordPayload, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toScanRecordPayload(rec))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.scans.Export(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "export failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{Key: key, URL: url})
}

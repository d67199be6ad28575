package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/requester"
	"github.com/brizzai/tokenctl/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

const resource = "OauthAccess"

type getOrCreateRequest struct {
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Note         string   `json:"note"`
	NoteURL      string   `json:"note_url"`
	Fingerprint  string   `json:"fingerprint"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Problems parsing JSON")
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, http.StatusNotFound, "Not Found")
		return 0, false
	}
	return id, true
}

// public hides the token of stored authorizations
func public(a *authorizations.Authorization) authorizations.Authorization {
	out := *a
	out.Token = ""
	out.Scopes = slices.Clone(a.Scopes)
	return out
}

func newToken() string {
	return "gho_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]authorizations.Authorization, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, public(s.auths[id]))
	}
	s.mu.Unlock()

	utils.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	a, found := s.auths[id]
	var out authorizations.Authorization
	if found {
		out = public(a)
	}
	s.mu.Unlock()

	if !found {
		utils.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var update authorizations.AuthorizationUpdate
	if !decode(w, r, &update) {
		return
	}
	if update.Note == "" {
		utils.WriteError(w, http.StatusUnprocessableEntity, "Validation Failed",
			requester.FieldError{Resource: resource, Field: "note", Code: "missing_field"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked("", update.Note, update.Fingerprint) != nil {
		utils.WriteError(w, http.StatusUnprocessableEntity, "Validation Failed",
			requester.FieldError{Resource: resource, Field: "description", Code: "already_exists"})
		return
	}

	a := s.insertLocked(nil, update.Note, update.NoteURL, update.Fingerprint, update.Scopes)
	utils.WriteJSON(w, http.StatusCreated, *a)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var update authorizations.AuthorizationUpdate
	if !decode(w, r, &update) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, found := s.auths[id]
	if !found {
		utils.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	if update.Note != "" {
		a.Note = update.Note
	}
	if update.NoteURL != "" {
		a.NoteURL = update.NoteURL
	}
	if update.Fingerprint != "" {
		a.Fingerprint = update.Fingerprint
	}
	if update.Scopes != nil {
		a.Scopes = slices.Clone(update.Scopes)
	}
	for _, scope := range update.AddScopes {
		if !slices.Contains(a.Scopes, scope) {
			a.Scopes = append(a.Scopes, scope)
		}
	}
	a.Scopes = slices.DeleteFunc(a.Scopes, func(scope string) bool {
		return slices.Contains(update.RemoveScopes, scope)
	})
	a.UpdatedAt = s.now().UTC()

	utils.WriteJSON(w, http.StatusOK, public(a))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, found := s.auths[id]
	if found {
		delete(s.auths, id)
		s.order = slices.DeleteFunc(s.order, func(v int64) bool { return v == id })
	}
	s.mu.Unlock()

	if !found {
		utils.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOrCreate(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	var req getOrCreateRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	app, known := s.apps[clientID]
	s.mu.Unlock()
	if !known {
		utils.WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	if req.ClientSecret != app.secret {
		utils.WriteError(w, http.StatusUnauthorized, "Bad credentials")
		return
	}

	if s.totpSecret != "" && !s.checkCode(w, r.Header.Get(requester.OTPHeader)) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findLocked(clientID, "", req.Fingerprint); existing != nil {
		utils.WriteJSON(w, http.StatusOK, public(existing))
		return
	}
	a := s.insertLocked(&app, req.Note, req.NoteURL, req.Fingerprint, req.Scopes)
	utils.WriteJSON(w, http.StatusCreated, *a)
}

// checkCode writes the challenge and reports false unless code is valid now
func (s *Server) checkCode(w http.ResponseWriter, code string) bool {
	if code == "" {
		s.mu.Lock()
		s.resends++
		s.mu.Unlock()
		s.challenge(w)
		return false
	}
	valid, err := totp.ValidateCustom(code, s.totpSecret, s.now(), totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	if err != nil || !valid {
		s.challenge(w)
		return false
	}
	return true
}

func (s *Server) challenge(w http.ResponseWriter) {
	w.Header().Set(requester.OTPHeader, fmt.Sprintf("required; %s", s.method))
	utils.WriteError(w, http.StatusUnauthorized, "Must specify two-factor authentication OTP code.")
}

// findLocked finds an authorization by application or note, and fingerprint
func (s *Server) findLocked(clientID, note, fingerprint string) *authorizations.Authorization {
	for _, id := range s.order {
		a := s.auths[id]
		if a.Fingerprint != fingerprint {
			continue
		}
		if clientID != "" && a.Application != nil && a.Application.ClientID == clientID {
			return a
		}
		if clientID == "" && note != "" && a.Note == note && a.Application == nil {
			return a
		}
	}
	return nil
}

func (s *Server) insertLocked(app *application, note, noteURL, fingerprint string, scopes []string) *authorizations.Authorization {
	id := s.nextID
	s.nextID++

	token := newToken()
	now := s.now().UTC()
	a := &authorizations.Authorization{
		ID:             id,
		URL:            fmt.Sprintf("/authorizations/%d", id),
		Token:          token,
		TokenLastEight: token[len(token)-8:],
		Note:           note,
		NoteURL:        noteURL,
		Scopes:         slices.Clone(scopes),
		Fingerprint:    fingerprint,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if a.Scopes == nil {
		a.Scopes = []string{}
	}
	if app != nil {
		a.Application = &authorizations.Application{Name: app.name, ClientID: app.clientID}
	}

	s.auths[id] = a
	s.order = append(s.order, id)
	return a
}

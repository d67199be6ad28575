package authorizations

import (
	"strings"
	"time"

	"github.com/brizzai/tokenctl/internal/requester"
)

// TwoFactorType is the delivery method reported with a challenge
type TwoFactorType = requester.TwoFactorType

const (
	TwoFactorUnknown = requester.TwoFactorUnknown
	TwoFactorSMS     = requester.TwoFactorSMS
	TwoFactorApp     = requester.TwoFactorApp
)

// Application is the OAuth application an authorization was granted to
type Application struct {
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	ClientID string `json:"client_id" yaml:"client_id"`
}

// Authorization is an access grant as returned by the server.
// Token is only populated in the response that created it.
type Authorization struct {
	ID             int64        `json:"id" yaml:"id"`
	URL            string       `json:"url,omitempty" yaml:"url,omitempty"`
	Application    *Application `json:"app,omitempty" yaml:"app,omitempty"`
	Token          string       `json:"token,omitempty" yaml:"token,omitempty"`
	TokenLastEight string       `json:"token_last_eight,omitempty" yaml:"token_last_eight,omitempty"`
	HashedToken    string       `json:"hashed_token,omitempty" yaml:"hashed_token,omitempty"`
	Note           string       `json:"note,omitempty" yaml:"note,omitempty"`
	NoteURL        string       `json:"note_url,omitempty" yaml:"note_url,omitempty"`
	Scopes         []string     `json:"scopes" yaml:"scopes"`
	Fingerprint    string       `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	CreatedAt      time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" yaml:"updated_at"`
}

// ScopesDelimited joins the scopes with ","
func (a Authorization) ScopesDelimited() string {
	return strings.Join(a.Scopes, ",")
}

// AuthorizationUpdate describes a grant to create or the changes to apply
// to an existing one. Unset fields are not sent.
type AuthorizationUpdate struct {
	Note         string   `json:"note,omitempty"`
	NoteURL      string   `json:"note_url,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	AddScopes    []string `json:"add_scopes,omitempty"`
	RemoveScopes []string `json:"remove_scopes,omitempty"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
}

// applicationAuthorizationRequest is the get-or-create payload. It is
// built from a copy so the caller's update is never retained.
type applicationAuthorizationRequest struct {
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
	Note         string   `json:"note,omitempty"`
	NoteURL      string   `json:"note_url,omitempty"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
}

func newApplicationAuthorizationRequest(clientSecret string, update *AuthorizationUpdate) applicationAuthorizationRequest {
	var scopes []string
	if len(update.Scopes) > 0 {
		scopes = append([]string(nil), update.Scopes...)
	}
	return applicationAuthorizationRequest{
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Note:         update.Note,
		NoteURL:      update.NoteURL,
		Fingerprint:  update.Fingerprint,
	}
}

package requester

import (
	"fmt"
	"net/http"

	"github.com/brizzai/tokenctl/internal/config"
	"golang.org/x/oauth2"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	authType   config.AuthType
	authConfig map[string]string
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(serviceConfig *config.EndpointConfig) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   serviceConfig.AuthType,
		authConfig: serviceConfig.AuthConfig,
	}
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(req *http.Request) error {
	switch a.authType {
	case config.AuthTypeNone, "":
		return nil
	case config.AuthTypeBasic:
		username := a.authConfig["username"]
		if username == "" {
			return fmt.Errorf("basic auth requires a username")
		}
		req.SetBasicAuth(username, a.authConfig["password"])
	case config.AuthTypeToken:
		// personal access tokens use the "token" scheme
		a.setToken(req, "token")
	case config.AuthTypeOAuth2:
		a.setToken(req, "Bearer")
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}

func (a *HTTPAuthManager) setToken(req *http.Request, tokenType string) {
	tok := &oauth2.Token{
		AccessToken: a.authConfig["token"],
		TokenType:   tokenType,
	}
	tok.SetAuthHeader(req)
}

package authorizations

import (
	"fmt"
	"net/url"
)

// AuthorizationsURL lists and creates authorizations
func AuthorizationsURL() string {
	return "/authorizations"
}

// AuthorizationURL addresses a single authorization
func AuthorizationURL(id int64) string {
	return fmt.Sprintf("/authorizations/%d", id)
}

// ApplicationAuthorizationURL is the get-or-create endpoint for an application
func ApplicationAuthorizationURL(clientID string) string {
	return "/authorizations/clients/" + url.PathEscape(clientID)
}

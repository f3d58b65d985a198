package shared

import (
	"net/http"
	"strings"
)

// Credentials carries whatever the client supplied to authenticate a request:
// a bearer token, or a basic email/password pair. Zero value means nothing
// was supplied.
type Credentials struct {
	Token    string
	Email    string
	Password string
}

// HasToken reports whether a bearer token was supplied.
func (c Credentials) HasToken() bool { return c.Token != "" }

// HasBasic reports whether basic credentials were supplied.
func (c Credentials) HasBasic() bool { return c.Email != "" }

// Empty reports whether no credential of any kind was supplied.
func (c Credentials) Empty() bool { return !c.HasToken() && !c.HasBasic() }

// CredentialsFromRequest extracts credentials from the Authorization header.
// Bearer wins when both schemes would parse.
func CredentialsFromRequest(r *http.Request) Credentials {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return Credentials{Token: token}
	}
	if email, password, ok := r.BasicAuth(); ok {
		return Credentials{Email: email, Password: password}
	}
	return Credentials{}
}

package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Scheme names an HTTP authentication scheme as it appears in the
// WWW-Authenticate challenge.
type Scheme string

const (
	SchemeBasic  Scheme = "Basic"
	SchemeBearer Scheme = "Bearer"
	SchemeNone   Scheme = ""
)

// Credential is the tagged decoding of an Authorization header. Exactly one
// variant is populated, selected by Scheme: Basic carries Username and
// Password, Bearer carries Token, None carries nothing (header absent or
// malformed).
type Credential struct {
	Scheme   Scheme
	Username string
	Password string
	Token    string
}

// DecodeCredential derives a Credential from the request's Authorization
// header. It runs once per request at the boundary; malformed headers
// decode to the None variant rather than an error.
func DecodeCredential(r *http.Request) Credential {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Credential{Scheme: SchemeNone}
	}

	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return Credential{Scheme: SchemeNone}
	}
	rest = strings.TrimSpace(rest)

	switch {
	case strings.EqualFold(scheme, string(SchemeBasic)):
		decoded, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return Credential{Scheme: SchemeNone}
		}
		username, password, ok := strings.Cut(string(decoded), ":")
		if !ok || username == "" {
			return Credential{Scheme: SchemeNone}
		}
		return Credential{Scheme: SchemeBasic, Username: username, Password: password}

	case strings.EqualFold(scheme, string(SchemeBearer)):
		return Credential{Scheme: SchemeBearer, Token: rest}

	default:
		return Credential{Scheme: SchemeNone}
	}
}

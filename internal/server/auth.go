package server

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// publicPaths are always unauthenticated, per spec.md §4.H.
var publicPaths = map[string]bool{
	"/":            true,
	"/index.html":  true,
	"/favicon.ico": true,
	"/favicon.png": true,
}

// Auth enforces the shared-secret policy of spec.md §4.H: bearer
// token, basic auth (user defaults to "admin"), or X-Probing-Token.
// NewAuth hashes the secret with bcrypt and keeps only the hash in
// memory; the token itself is still read in plaintext from the
// environment or config file. The cost of a bcrypt compare per request
// is acceptable for a diagnostic control plane, not a high-QPS path.
type Auth struct {
	enabled    bool
	secretHash []byte
	username   string
	realm      string
}

// NewAuth returns a disabled Auth when token is empty, matching
// spec.md's "If a shared secret is configured" conditional.
func NewAuth(token, username, realm string) (*Auth, error) {
	if token == "" {
		return &Auth{enabled: false}, nil
	}
	if username == "" {
		username = "admin"
	}
	if realm == "" {
		realm = "Probe Server"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Auth{enabled: true, secretHash: hash, username: username, realm: realm}, nil
}

// Middleware wraps next with the authentication check. assetPrefixes
// names path prefixes (the static bundle tree) that are always public
// alongside the literal publicPaths.
func (a *Auth) Middleware(next http.Handler, assetPrefixes []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled || isPublicPath(r.URL.Path, assetPrefixes) {
			next.ServeHTTP(w, r)
			return
		}
		if a.authenticate(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="`+a.realm+`"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func isPublicPath(path string, assetPrefixes []string) bool {
	if publicPaths[path] {
		return true
	}
	if strings.HasPrefix(path, "/favicon") {
		return true
	}
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (a *Auth) authenticate(r *http.Request) bool {
	if token := r.Header.Get("X-Probing-Token"); token != "" {
		return a.matches(token)
	}
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return false
	}
	if rest, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return a.matches(rest)
	}
	if rest, ok := strings.CutPrefix(authz, "Basic "); ok {
		decoded, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return false
		}
		parts := strings.SplitN(string(decoded), ":", 2)
		if len(parts) != 2 {
			return false
		}
		user, pass := parts[0], parts[1]
		if subtle.ConstantTimeCompare([]byte(user), []byte(a.username)) != 1 {
			return false
		}
		return a.matches(pass)
	}
	return false
}

func (a *Auth) matches(presented string) bool {
	return bcrypt.CompareHashAndPassword(a.secretHash, []byte(presented)) == nil
}

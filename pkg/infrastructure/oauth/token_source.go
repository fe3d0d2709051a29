// Package oauth exchanges the service-account credential for bearer
// tokens used by the Firestore and Identity Toolkit REST clients.
package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ServiceAccountTokenSource signs a short-lived JWT assertion with the
// service account's private key (issuer = client_email, audience = the
// token endpoint, one hour expiry) and exchanges it for an access token
// with the jwt-bearer grant. Tokens are cached until they expire.
//
// The credential is parsed lazily so a malformed credential surfaces as
// an authentication failure on the message being processed rather than
// taking the whole function instance down.
type ServiceAccountTokenSource struct {
	credentialsJSON []byte
	scopes          []string

	mu sync.Mutex
	ts oauth2.TokenSource
}

func NewServiceAccountTokenSource(credentialsJSON []byte, scopes ...string) *ServiceAccountTokenSource {
	return &ServiceAccountTokenSource{
		credentialsJSON: credentialsJSON,
		scopes:          scopes,
	}
}

// AccessToken returns a valid bearer token, performing the assertion
// exchange on first use and whenever the cached token has expired.
// Safe for concurrent use.
func (s *ServiceAccountTokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ts == nil {
		conf, err := google.JWTConfigFromJSON(s.credentialsJSON, s.scopes...)
		if err != nil {
			return "", fmt.Errorf("parse service account credentials: %w", err)
		}
		conf.Expires = time.Hour
		s.ts = conf.TokenSource(ctx)
	}

	tok, err := s.ts.Token()
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}
	return tok.AccessToken, nil
}

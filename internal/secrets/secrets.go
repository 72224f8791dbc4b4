// Package secrets abstracts where API keys come from.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a secret is not configured.
var ErrNotFound = errors.New("secret not found")

// Provider resolves named secrets such as upstream API keys.
type Provider interface {
	GetSecret(name string) (string, error)
}

// Env reads secrets from environment variables, the deployment default.
type Env struct{}

func (Env) GetSecret(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

// Static serves secrets from a fixed map. Intended for tests.
type Static map[string]string

func (s Static) GetSecret(name string) (string, error) {
	v, ok := s[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}

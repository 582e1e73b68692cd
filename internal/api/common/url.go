package common

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// maxIDLength bounds identifiers taken from the path. Discord snowflakes are
// at most 20 digits; dry-run guild ids are free form.
const maxIDLength = 64

// IDParam returns the decoded path parameter name. Identifiers are limited to
// ASCII letters, digits, '.', '_' and '-'.
func IDParam(r *http.Request, name string) (string, error) {
	id, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", name)
	}

	switch {
	case id == "":
		return "", fmt.Errorf("%s is required", name)
	case len(id) > maxIDLength:
		return "", fmt.Errorf("%s exceeds %d characters", name, maxIDLength)
	}
	for _, c := range id {
		if !isIDChar(c) {
			return "", fmt.Errorf("%s contains invalid character %q", name, c)
		}
	}
	return id, nil
}

func isIDChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}

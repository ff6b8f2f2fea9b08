package mediaserver

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// TokenStore resolves the application's auth token from a known token
// file, falling back to the token attribute in the app's own preference
// XML. Absence is an error the caller is expected to degrade on, not
// crash on.
type TokenStore struct {
	paths    []string // token file candidates, checked in order
	prefFile string   // preference XML fallback; optional
}

// NewTokenStore creates a token store over the given candidate paths.
func NewTokenStore(paths []string, prefFile string) *TokenStore {
	return &TokenStore{paths: paths, prefFile: prefFile}
}

// Token returns the first token found.
func (s *TokenStore) Token() (string, error) {
	for _, path := range s.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
	}

	if s.prefFile != "" {
		if token, err := tokenFromPreferences(s.prefFile); err == nil {
			return token, nil
		}
	}

	return "", fmt.Errorf("no auth token found")
}

// tokenFromPreferences pulls the token attribute off the root element of
// the app's preference XML.
func tokenFromPreferences(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("no token attribute in %s", path)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, attr := range start.Attr {
			if strings.HasSuffix(attr.Name.Local, "OnlineToken") && attr.Value != "" {
				return attr.Value, nil
			}
		}
		return "", fmt.Errorf("no token attribute in %s", path)
	}
}

// Package auth validates API keys for the gateway authorizer function.
package auth

import (
	"encoding/json"
	"strings"
)

// KeySet holds the API keys accepted by the validation function.
type KeySet map[string]struct{}

// ParseKeys builds a KeySet from a comma-separated list. Blank entries and
// surrounding whitespace are dropped.
func ParseKeys(raw string) KeySet {
	set := make(KeySet)
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the key is a member of the set. The empty key is
// never valid.
func (s KeySet) Contains(key string) bool {
	if key == "" {
		return false
	}
	_, ok := s[key]
	return ok
}

// credentialRequest is the authorizer request body:
// {"data": {"api-key": "..."}}
type credentialRequest struct {
	Data struct {
		APIKey string `json:"api-key"`
	} `json:"data"`
}

// ValidateRequest decodes an authorization request body and checks the
// carried key against the set. A malformed body is simply unauthorized.
func (s KeySet) ValidateRequest(body []byte) bool {
	var req credentialRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return false
	}
	return s.Contains(req.Data.APIKey)
}

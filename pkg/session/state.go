package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Cookie is one browser cookie in storage-state form
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// StorageEntry is one local storage key/value pair
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Origin groups the local storage entries of one origin
type Origin struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// State is a snapshot of an authenticated browsing context. The JSON form
// is the common cookies+origins storage-state document, so snapshots taken
// by other automation tools load as is.
type State struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Parse decodes and validates a storage-state document
func Parse(data []byte) (*State, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, errors.New("session state is empty")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errors.New("session state must be a JSON object")
	}

	var state State
	if err := json.Unmarshal([]byte(trimmed), &state); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}

	for i, c := range state.Cookies {
		if c.Name == "" {
			return nil, fmt.Errorf("cookie %d has no name", i)
		}
		if c.Domain == "" {
			return nil, fmt.Errorf("cookie %q has no domain", c.Name)
		}
	}
	for _, o := range state.Origins {
		if o.Origin == "" {
			return nil, errors.New("local storage entry has no origin")
		}
	}
	return &state, nil
}

// Marshal encodes the state as indented JSON
func (s *State) Marshal() ([]byte, error) {
	out := *s
	if out.Cookies == nil {
		out.Cookies = []Cookie{}
	}
	if out.Origins == nil {
		out.Origins = []Origin{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// Empty reports whether the state carries nothing to restore
func (s *State) Empty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}

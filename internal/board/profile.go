package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Profile carries the cosmetic half of a board definition: display
// labels for relays and inputs. Wiring (addresses, bit maps) is fixed
// in the registry and cannot be overridden by a profile.
type Profile struct {
	Board  string            `json:"board"`
	Vendor string            `json:"vendor,omitempty"`
	Relays map[string]string `json:"relays,omitempty"`
	Inputs map[string]string `json:"inputs,omitempty"`
}

// DefaultProfile returns the built-in KC868-A16 profile with numeric
// labels, used when no profile file is found.
func DefaultProfile() *Profile {
	p := &Profile{
		Board:  "KC868-A16",
		Vendor: "Kincony",
		Relays: make(map[string]string, 16),
		Inputs: make(map[string]string, 19),
	}
	for i := 1; i <= 16; i++ {
		id := strconv.Itoa(i)
		p.Relays[id] = "Relay " + id
		p.Inputs[fmt.Sprintf("X%02d", i)] = "Input " + id
	}
	for i := 1; i <= 3; i++ {
		name := "HT" + strconv.Itoa(i)
		p.Inputs[name] = name
	}
	return p
}

type ProfileLoader struct {
	cache       sync.Map
	validator   *Validator
	searchPaths []string
}

func NewProfileLoader(searchPaths []string) (*ProfileLoader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &ProfileLoader{
		validator:   validator,
		searchPaths: searchPaths,
	}, nil
}

// Load resolves a profile by name against the search paths. A missing
// profile is not an error; the built-in default applies.
func (l *ProfileLoader) Load(name string) (*Profile, error) {
	// Cache-Check
	if cached, ok := l.cache.Load(name); ok {
		return cached.(*Profile), nil
	}

	var data []byte
	var err error
	var foundPath string

	for _, searchPath := range l.searchPaths {
		fullPath := filepath.Join(searchPath, name+".json")
		data, err = os.ReadFile(fullPath)
		if err == nil {
			foundPath = fullPath
			break
		}
	}

	if data == nil {
		return DefaultProfile(), nil
	}

	if err := l.validator.ValidateProfile(data); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", foundPath, err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	l.cache.Store(name, &profile)

	return &profile, nil
}

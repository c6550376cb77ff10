package devices

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidProfileName = errors.New("invalid profile name")
)

// Same as the profile id pattern in the schema. Keeps lookups inside the search paths.
var profileNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var profileExtensions = []string{".yaml", ".yml"}

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

// Load finds <name>.yaml (or .yml) in the search paths, validates it and
// caches the parsed profile.
func (l *ProfileLoader) Load(name string) (*Profile, error) {
	if !profileNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProfileName, name)
	}

	if cached, ok := l.cache.Load(name); ok {
		return cached.(*Profile), nil
	}

	var data []byte
	var foundPath string

search:
	for _, searchPath := range l.searchPaths {
		for _, ext := range profileExtensions {
			fullPath := filepath.Join(searchPath, name+ext)
			content, err := os.ReadFile(fullPath)
			if err == nil {
				data = content
				foundPath = fullPath
				break search
			}
		}
	}

	if data == nil {
		return nil, fmt.Errorf("%w: %s (searched in: %v)", ErrProfileNotFound, name, l.searchPaths)
	}

	profile, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", foundPath, err)
	}

	l.cache.Store(name, profile)

	return profile, nil
}

// Parse validates and decodes a YAML profile document.
func (l *ProfileLoader) Parse(data []byte) (*Profile, error) {
	if _, err := l.validator.ValidateYAML(data); err != nil {
		return nil, err
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	if _, err := profile.minuteDuration(); err != nil {
		return nil, err
	}

	return &profile, nil
}

// List returns the names of all profile files in the search paths. Earlier
// paths shadow later ones, matching Load.
func (l *ProfileLoader) List() ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	for _, searchPath := range l.searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", searchPath, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if !slices.Contains(profileExtensions, ext) {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)
	return names, nil
}

func (l *ProfileLoader) ClearCache() {
	l.cache.Range(func(key, value interface{}) bool {
		l.cache.Delete(key)
		return true
	})
}

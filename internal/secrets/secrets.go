// Package secrets loads the flat key/value secrets file consulted by launch
// config templating. Keys referenced by {{env:NAME}} placeholders that are
// absent from the map resolve to the empty string, which in turn causes the
// templater to drop the argument or environment entry entirely.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

// Store is a read-only view over the loaded secrets.
type Store map[string]string

// Get returns the value for key, or the empty string when absent.
func (s Store) Get(key string) string {
	return s[key]
}

// Load reads the TOML secrets file at path. A missing file is not an error:
// it yields an empty store, the same as every key being unset.
func Load(path string) (Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: secrets path cannot be empty", errors.ErrConfigLoad)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("%w: failed to stat secrets file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	var raw map[string]string
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode secrets from file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	return Store(raw), nil
}

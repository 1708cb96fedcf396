package filter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// LoadPaths reads a JSONC file holding an array of input paths.
// Comments and trailing commas are allowed.
func LoadPaths(path string) ([]string, error) {
	return load("files-from list", path)
}

// LoadPatterns reads a JSONC file holding an array of glob patterns.
func LoadPatterns(path string) ([]string, error) {
	return load("patterns file", path)
}

func load(kind, path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return nil, fmt.Errorf("reading %s %q: %w", kind, path, err)
	}

	clean := jsonc.ToJSONInPlace(data)

	var entries []string
	if err := json.Unmarshal(clean, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", kind, path, err)
	}

	return entries, nil
}

package idioms

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errNullMapping = errors.New("top level is null, want an object")

	newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Polyphones maps an idiom to its reading. Only the keys are used here.
type Polyphones map[string]any

// Keys returns the idioms of the mapping in no particular order.
func (p Polyphones) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// LoadPolyphones reads a polyphone mapping document. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON. An empty YAML document
// is an empty mapping; a JSON document must be an object.
func LoadPolyphones(path string) (Polyphones, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Kind: ErrNotFound, Err: err}
	}

	var p Polyphones
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
		if err == nil && p == nil {
			err = errNullMapping
		}
	}
	if err != nil {
		return nil, &FileError{Op: "parse", Path: path, Kind: ErrParse, Err: err}
	}
	if p == nil {
		p = Polyphones{}
	}
	return p, nil
}

// ReadLines reads a plain text list, one entry per line, each trimmed of
// surrounding whitespace. Lines end at \n, \r\n or a bare \r. A final line
// terminator does not produce an extra entry, but interior blank lines come
// back as empty strings.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Op: "read", Path: path, Kind: ErrNotFound, Err: err}
	}
	return splitLines(string(data)), nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(newlines.Replace(s), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

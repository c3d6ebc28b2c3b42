// Package idioms builds the canonical idiom list used by the guessing bot.
//
// The list is the union of the idioms that carry a polyphone override and the
// plain idiom list, deduplicated and sorted by code point:
//
//	polyphones.json keys ∪ idioms.txt lines -> all_idioms.txt
//
// Both inputs are loaded fully before the output is touched, so a read or
// parse failure never modifies the destination. The write itself is not
// atomic.
package idioms

import (
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Options names the three files involved in a merge.
type Options struct {
	PolyphonesPath string
	IdiomsPath     string
	OutputPath     string

	// SkipBlank drops entries that are empty after trimming. By default an
	// empty line is kept as an empty-string entry.
	SkipBlank bool
}

// Result summarizes a merge.
type Result struct {
	MappingKeys int // keys in the polyphone mapping
	ListEntries int // lines read from the idiom list
	Merged      int // entries written
	Duplicates  int // entries dropped as duplicates (or blank when skipped)
}

// Merger runs merges and reports progress to its logger.
type Merger struct {
	logger *zap.Logger
}

// NewMerger returns a Merger. A nil logger disables logging.
func NewMerger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// MergeIdioms is a convenience for NewMerger(nil).Merge(opts).
func MergeIdioms(opts Options) (Result, error) {
	return NewMerger(nil).Merge(opts)
}

// Merge reads both sources, computes the sorted union and overwrites
// opts.OutputPath with it.
func (m *Merger) Merge(opts Options) (Result, error) {
	merged, res, err := m.collect(opts)
	if err != nil {
		return res, err
	}

	if err := WriteOutput(opts.OutputPath, Render(merged)); err != nil {
		return res, err
	}
	m.logger.Info("Idiom list written",
		zap.String("output", opts.OutputPath),
		zap.Int("mapping_keys", res.MappingKeys),
		zap.Int("list_entries", res.ListEntries),
		zap.Int("merged", res.Merged),
		zap.Int("duplicates", res.Duplicates))
	return res, nil
}

// collect loads both sources and returns the sorted union.
func (m *Merger) collect(opts Options) ([]string, Result, error) {
	var res Result

	m.logger.Debug("Loading polyphone mapping", zap.String("path", opts.PolyphonesPath))
	mapping, err := LoadPolyphones(opts.PolyphonesPath)
	if err != nil {
		return nil, res, err
	}
	keys := mapping.Keys()
	res.MappingKeys = len(keys)

	m.logger.Debug("Reading idiom list", zap.String("path", opts.IdiomsPath))
	lines, err := ReadLines(opts.IdiomsPath)
	if err != nil {
		return nil, res, err
	}
	res.ListEntries = len(lines)

	merged := Union(keys, lines, opts.SkipBlank)
	res.Merged = len(merged)
	res.Duplicates = res.MappingKeys + res.ListEntries - res.Merged
	m.logger.Debug("Sources merged",
		zap.Int("mapping_keys", res.MappingKeys),
		zap.Int("list_entries", res.ListEntries),
		zap.Int("merged", res.Merged))
	return merged, res, nil
}

// Union returns the distinct entries of a and b sorted ascending. Comparison
// is exact; Go string order is UTF-8 byte order, which is code point order.
func Union(a, b []string, skipBlank bool) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if skipBlank && s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

// Render joins entries with a single newline and no trailing terminator.
func Render(entries []string) string {
	return strings.Join(entries, "\n")
}

// WriteOutput creates or truncates path and writes text to it.
func WriteOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return &FileError{Op: "write", Path: path, Kind: ErrWrite, Err: err}
	}
	return nil
}

package idioms

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// VerifyOutput checks that the file at path is a well formed idiom list:
// no duplicate lines, ascending order and no trailing newline. When want is
// non-nil the file must also render exactly the entries in want.
// All violations are reported together.
func VerifyOutput(path string, want []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Op: "read", Path: path, Kind: ErrNotFound, Err: err}
	}
	content := string(data)

	var errs error
	if strings.HasSuffix(content, "\n") {
		errs = multierr.Append(errs, errors.New("trailing newline"))
	}

	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	seen := make(map[string]int, len(lines))
	for i, l := range lines {
		if first, ok := seen[l]; ok {
			errs = multierr.Append(errs, fmt.Errorf("line %d: duplicate of line %d: %q", i+1, first+1, l))
		} else {
			seen[l] = i
		}
		if i > 0 && lines[i-1] > l {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %q sorts before %q", i+1, l, lines[i-1]))
		}
	}

	if want != nil && Render(want) != content {
		errs = multierr.Append(errs, diffEntries(want, seen))
	}

	if errs != nil {
		return &FileError{Op: "verify", Path: path, Kind: ErrVerify, Err: errs}
	}
	return nil
}

// diffEntries describes how the entries on disk differ from want.
func diffEntries(want []string, got map[string]int) error {
	var missing []string
	wantSet := make(map[string]struct{}, len(want))
	for _, w := range want {
		wantSet[w] = struct{}{}
		if _, ok := got[w]; !ok {
			missing = append(missing, w)
		}
	}
	extra := 0
	for g := range got {
		if _, ok := wantSet[g]; !ok {
			extra++
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("content differs: %d missing (first %q), %d unexpected", len(missing), missing[0], extra)
	}
	return fmt.Errorf("content differs: %d unexpected", extra)
}

// Check recomputes the merge from the sources in opts and verifies the
// existing output against it. Nothing is written.
func (m *Merger) Check(opts Options) (Result, error) {
	merged, res, err := m.collect(opts)
	if err != nil {
		return res, err
	}
	if err := VerifyOutput(opts.OutputPath, merged); err != nil {
		m.logger.Warn("Idiom list is stale or malformed",
			zap.String("output", opts.OutputPath),
			zap.Error(err))
		return res, err
	}
	m.logger.Info("Idiom list up to date",
		zap.String("output", opts.OutputPath),
		zap.Int("merged", res.Merged))
	return res, nil
}

package idioms

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixture writes the two sources into a temp dir and returns merge options
// pointing at them.
func fixture(t *testing.T, mapping, list string) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		PolyphonesPath: filepath.Join(dir, "polyphones.json"),
		IdiomsPath:     filepath.Join(dir, "idioms.txt"),
		OutputPath:     filepath.Join(dir, "all_idioms.txt"),
	}
	require.NoError(t, os.WriteFile(opts.PolyphonesPath, []byte(mapping), 0644))
	require.NoError(t, os.WriteFile(opts.IdiomsPath, []byte(list), 0644))
	return opts
}

func readOutput(t *testing.T, opts Options) string {
	t.Helper()
	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	return string(data)
}

func TestMergeIdioms_MappingAndList(t *testing.T) {
	opts := fixture(t,
		`{"喜出望外": ["xi3 chu1 wang4 wai4"], "一心一意": ["yi1 xin1 yi1 yi4"]}`,
		"一心一意\n画蛇添足\n")

	res, err := MergeIdioms(opts)
	require.NoError(t, err)

	assert.Equal(t, "一心一意\n喜出望外\n画蛇添足", readOutput(t, opts))
	assert.Equal(t, Result{MappingKeys: 2, ListEntries: 2, Merged: 3, Duplicates: 1}, res)
}

func TestMergeIdioms_EmptyMappingDeduplicates(t *testing.T) {
	opts := fixture(t, `{}`, "beta\nalpha\nalpha")

	_, err := MergeIdioms(opts)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta", readOutput(t, opts))
}

func TestMergeIdioms_MissingMappingLeavesOutputUntouched(t *testing.T) {
	opts := fixture(t, `{}`, "alpha")
	require.NoError(t, os.Remove(opts.PolyphonesPath))
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("previous"), 0644))

	_, err := MergeIdioms(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "previous", readOutput(t, opts))
}

func TestMergeIdioms_MissingListIsNotFound(t *testing.T) {
	opts := fixture(t, `{"一心一意": "yi1 xin1 yi1 yi4"}`, "")
	require.NoError(t, os.Remove(opts.IdiomsPath))

	_, err := MergeIdioms(opts)
	assert.ErrorIs(t, err, ErrNotFound)
	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "output must not be created")
}

func TestMergeIdioms_ParseErrorLeavesOutputUntouched(t *testing.T) {
	for name, mapping := range map[string]string{
		"truncated": `{"一心一意": `,
		"array":     `["一心一意"]`,
		"empty":     ``,
		"null":      `null`,
	} {
		t.Run(name, func(t *testing.T) {
			opts := fixture(t, mapping, "alpha")
			require.NoError(t, os.WriteFile(opts.OutputPath, []byte("previous"), 0644))

			_, err := MergeIdioms(opts)
			assert.ErrorIs(t, err, ErrParse)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.Equal(t, "previous", readOutput(t, opts))
		})
	}
}

func TestMergeIdioms_WriteError(t *testing.T) {
	opts := fixture(t, `{}`, "alpha")
	opts.OutputPath = filepath.Join(filepath.Dir(opts.OutputPath), "no-such-dir", "all_idioms.txt")

	_, err := MergeIdioms(opts)
	assert.ErrorIs(t, err, ErrWrite)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "write", fe.Op)
	assert.Equal(t, opts.OutputPath, fe.Path)
}

func TestMergeIdioms_BlankLines(t *testing.T) {
	list := "alpha\n   \r\nbeta\n"

	t.Run("kept by default", func(t *testing.T) {
		opts := fixture(t, `{}`, list)
		_, err := MergeIdioms(opts)
		require.NoError(t, err)
		assert.Equal(t, "\nalpha\nbeta", readOutput(t, opts))
	})

	t.Run("skipped on request", func(t *testing.T) {
		opts := fixture(t, `{"": "x"}`, list)
		opts.SkipBlank = true
		res, err := MergeIdioms(opts)
		require.NoError(t, err)
		assert.Equal(t, "alpha\nbeta", readOutput(t, opts))
		assert.Equal(t, 2, res.Merged)
	})
}

func TestMergeIdioms_CarriageReturnSeparators(t *testing.T) {
	opts := fixture(t, `{}`, "beta\ralpha\r")

	_, err := MergeIdioms(opts)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta", readOutput(t, opts))
}

func TestMergeIdioms_OverwritesAndIsIdempotent(t *testing.T) {
	opts := fixture(t, `{"画蛇添足": null}`, "一心一意\r\n喜出望外\r\n")
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte(strings.Repeat("stale\n", 100)), 0644))

	_, err := MergeIdioms(opts)
	require.NoError(t, err)
	first := readOutput(t, opts)

	_, err = MergeIdioms(opts)
	require.NoError(t, err)
	second := readOutput(t, opts)

	assert.Equal(t, "一心一意\n喜出望外\n画蛇添足", first)
	assert.Equal(t, first, second)
}

func TestMergeIdioms_YAMLMapping(t *testing.T) {
	opts := fixture(t, `{}`, "画蛇添足")
	opts.PolyphonesPath = filepath.Join(filepath.Dir(opts.PolyphonesPath), "polyphones.yaml")
	require.NoError(t, os.WriteFile(opts.PolyphonesPath, []byte("一心一意: yi1 xin1 yi1 yi4\n喜出望外: xi3 chu1 wang4 wai4\n"), 0644))

	_, err := NewMerger(zaptest.NewLogger(t)).Merge(opts)
	require.NoError(t, err)
	assert.Equal(t, "一心一意\n喜出望外\n画蛇添足", readOutput(t, opts))
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []string
		skipBlank bool
		want      []string
	}{
		{name: "empty", want: []string{}},
		{name: "disjoint", a: []string{"b"}, b: []string{"a", "c"}, want: []string{"a", "b", "c"}},
		{name: "case sensitive", a: []string{"a"}, b: []string{"A", "a"}, want: []string{"A", "a"}},
		{name: "code point order", a: []string{"画", "喜"}, b: []string{"一", "z"}, want: []string{"z", "一", "喜", "画"}},
		{name: "blank kept", a: []string{"", "x"}, b: []string{""}, want: []string{"", "x"}},
		{name: "blank skipped", a: []string{"", "x"}, b: []string{""}, skipBlank: true, want: []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Union(tt.a, tt.b, tt.skipBlank)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Union() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnion_Properties(t *testing.T) {
	a := []string{"守株待兔", "一心一意", "zebra", "Apple", "apple"}
	b := []string{"一心一意", "apple", "", "画蛇添足", "守株待兔"}
	got := Union(a, b, false)

	inputs := map[string]bool{}
	for _, s := range append(append([]string{}, a...), b...) {
		inputs[s] = true
	}
	seen := map[string]bool{}
	for i, s := range got {
		assert.True(t, inputs[s], "%q not from inputs", s)
		assert.False(t, seen[s], "%q duplicated", s)
		seen[s] = true
		if i > 0 {
			assert.LessOrEqual(t, got[i-1], s)
		}
	}
	for s := range inputs {
		assert.True(t, seen[s], "%q missing from union", s)
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "a", Render([]string{"a"}))
	assert.Equal(t, "a\nb", Render([]string{"a", "b"}))
}

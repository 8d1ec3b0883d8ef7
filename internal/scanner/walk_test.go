package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeloader/typeloader/internal/types"
)

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func rels(t *testing.T, root string, paths []string) []string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), "expected absolute path, got %s", p)
		r, err := filepath.Rel(resolved, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestWalk_EmptyRoot(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "README.md")

	got, err := Walk(context.Background(), Config{Root: dir})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWalk_NestedAndExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.so")
	touch(t, dir, "sub/deeper/b.TYPELIB")
	touch(t, dir, "sub/c.dll")
	touch(t, dir, "notes.txt")
	touch(t, dir, ".so")

	got, err := Walk(context.Background(), Config{Root: dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.so", "sub/deeper/b.TYPELIB"}, rels(t, dir, got))

	got, err = Walk(context.Background(), Config{Root: dir, Extensions: []string{"dll", " .SO "}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.so", "sub/c.dll"}, rels(t, dir, got))
}

func TestWalk_Filters(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "keep/a.so")
	touch(t, dir, "keep/a_test.so")
	touch(t, dir, ".git/hooks/x.so")
	touch(t, dir, "node_modules/pkg/y.so")
	touch(t, dir, "vendor/example.com/v.so")
	touch(t, dir, "staging/z.so")
	touch(t, dir, "other/w.typelib")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".typeloaderignore"), []byte("staging/\n"), 0o644))

	got, err := Walk(context.Background(), Config{
		Root:            dir,
		DefaultExcludes: true,
		ExcludeGlobs:    "**/*_test.so",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep/a.so", "other/w.typelib"}, rels(t, dir, got))

	got, err = Walk(context.Background(), Config{Root: dir, DefaultExcludes: true, IncludeGlobs: "keep/**", IgnoreFile: "-"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep/a.so", "keep/a_test.so"}, rels(t, dir, got))
}

func TestWalk_RootFailures(t *testing.T) {
	dir := t.TempDir()
	file := touch(t, dir, "plain.so")

	for name, root := range map[string]string{
		"missing":   filepath.Join(dir, "does-not-exist"),
		"not a dir": file,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Walk(context.Background(), Config{Root: root})
			require.Error(t, err)
			assert.Nil(t, got)

			var lf *types.LoadFailure
			require.True(t, errors.As(err, &lf))
			assert.Equal(t, types.FatalIO, lf.Kind)
			assert.True(t, lf.Fatal())
			assert.NotEmpty(t, lf.Causes)
		})
	}
}

func TestWalk_Cancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.so")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, Config{Root: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllowedByGlobs(t *testing.T) {
	assert.True(t, allowedByGlobs("a/b.so", "", ""))
	assert.True(t, allowedByGlobs("a/b.so", "**/*.so", ""))
	assert.False(t, allowedByGlobs("a/b.so", "*.typelib", ""))
	assert.False(t, allowedByGlobs("a/b.so", "", "b.so"))
	assert.True(t, allowedByGlobs(`a\b.so`, "a/*.so", ""))
}

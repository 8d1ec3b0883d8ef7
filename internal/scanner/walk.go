package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/typeloader/typeloader/internal/ignore"
	"github.com/typeloader/typeloader/internal/types"
)

// DefaultExtensions are the library suffixes scanned when none are configured.
var DefaultExtensions = []string{".so", ".typelib"}

// Config selects which files under Root are library candidates.
type Config struct {
	Root string
	// Extensions are accepted file suffixes, matched case-insensitively
	// against the base name (".so", ".typelib", ".plugin.so").
	Extensions      []string
	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool
	// IgnoreFile overrides the ignore file name looked up in Root.
	// "-" disables ignore files.
	IgnoreFile string
}

// Walk returns the absolute paths of every candidate library under cfg.Root,
// including nested directories. The order follows the filesystem traversal
// and must be treated as a set.
//
// A root that is missing, not a directory or not readable yields a
// *types.LoadFailure of kind FatalIO. Unreadable entries below the root are
// skipped.
func Walk(ctx context.Context, cfg Config) ([]string, error) {
	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	ign := loadIgnore(root, cfg.IgnoreFile)
	exts := normalizeExtensions(cfg.Extensions)

	var out []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return rootFailure(root, "scan root is not readable", err)
			}
			return nil
		}
		if p == root {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			if ign.Match(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !hasExtension(d.Name(), exts) {
			return nil
		}
		if !allowedByGlobs(rel, cfg.IncludeGlobs, cfg.ExcludeGlobs) {
			return nil
		}
		if ign.Match(rel) {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", rootFailure(root, "scan root cannot be resolved", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", rootFailure(abs, "scan root does not exist", err)
		}
		return "", rootFailure(abs, "scan root is not accessible", err)
	}
	if !info.IsDir() {
		return "", rootFailure(abs, "scan root is not a directory", fmt.Errorf("%s is a %s", abs, info.Mode().Type()))
	}
	// WalkDir does not descend into a symlinked root.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

func rootFailure(root, msg string, err error) *types.LoadFailure {
	return &types.LoadFailure{
		Kind:    types.FatalIO,
		Path:    root,
		Message: msg,
		Causes:  []types.Cause{{Message: err.Error()}},
	}
}

func loadIgnore(root, name string) ignore.Matcher {
	if name == "-" {
		return ignore.Matcher{}
	}
	if name == "" {
		name = ignore.FileName
	}
	m, _ := ignore.Load(filepath.Join(root, name))
	return m
}

func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, e := range exts {
		if strings.HasSuffix(lower, e) && len(lower) > len(e) {
			return true
		}
	}
	return false
}

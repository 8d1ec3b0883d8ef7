// Package ignore reads .typeloaderignore files: gitignore-like patterns that
// keep paths out of a library scan.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up in a scan root.
const FileName = ".typeloaderignore"

// Matcher holds parsed ignore patterns. The zero value matches nothing.
type Matcher struct {
	patterns []string
}

// Load parses the ignore file at p. A missing file yields an empty matcher
// together with the open error so callers may ignore it.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads patterns line by line, skipping blanks and # comments.
func Parse(r io.Reader) Matcher {
	var m Matcher
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m
}

// Match reports whether the slash-separated relative path is ignored.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
	for _, p := range m.patterns {
		if matchPattern(p, rel) {
			return true
		}
	}
	return false
}

func matchPattern(p, rel string) bool {
	anchored := strings.HasPrefix(p, "/")
	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		dir := strings.TrimSuffix(p, "/")
		if anchored {
			return rel == dir || strings.HasPrefix(rel, dir+"/")
		}
		return rel == dir || strings.HasPrefix(rel, dir+"/") || strings.Contains(rel, "/"+dir+"/")
	}
	if ok, _ := doublestar.Match(p, rel); ok {
		return true
	}
	if ok, _ := doublestar.Match(p+"/**", rel); ok {
		return true
	}
	// patterns without a slash match at any depth
	if !anchored && !strings.Contains(p, "/") {
		if ok, _ := doublestar.Match(p, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

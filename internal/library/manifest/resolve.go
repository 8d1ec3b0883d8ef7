package manifest

import (
	"fmt"
	"strings"

	semver "github.com/blang/semver/v4"
)

// resolve checks reqs against the modules the host provides. The trace has
// one line per step; err names the first unmet requirement. Resolution
// never looks beyond the host, so results do not depend on scan order.
func (f *Format) resolve(reqs []Requirement) (string, error) {
	var lines []string
	var first error
	for _, r := range reqs {
		line, err := f.resolveOne(r)
		lines = append(lines, line)
		if err != nil && first == nil {
			first = err
		}
	}
	return strings.Join(lines, "\n"), first
}

func (f *Format) resolveOne(r Requirement) (string, error) {
	want := r.Version
	if want == "" {
		want = "*"
	}
	step := fmt.Sprintf("resolving %s %s", r.Name, want)
	if r.Name == "" {
		return step + ": requirement has no name", fmt.Errorf("requirement has no name")
	}
	accept := func(semver.Version) bool { return true }
	if r.Version != "" {
		rng, err := semver.ParseRange(r.Version)
		if err != nil {
			return fmt.Sprintf("%s: invalid range: %v", step, err), fmt.Errorf("dependency %s: invalid range %q", r.Name, r.Version)
		}
		accept = rng
	}
	provided := f.table.Providers(r.Name)
	if len(provided) == 0 {
		return step + ": not provided by host", fmt.Errorf("dependency %s %s could not be resolved", r.Name, want)
	}
	for _, p := range provided {
		v, err := semver.ParseTolerant(p)
		if err == nil && accept(v) {
			return fmt.Sprintf("%s: using %s", step, p), nil
		}
	}
	return fmt.Sprintf("%s: host provides %s, none satisfy", step, strings.Join(provided, ", ")),
		fmt.Errorf("dependency %s %s could not be resolved", r.Name, want)
}

package deps

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// parseVersion parses v, tolerating a leading "v", "=" and missing
// components when loose is set.
func parseVersion(v string, loose bool) (*semver.Version, error) {
	v = strings.TrimSpace(v)
	if loose {
		return semver.NewVersion(strings.TrimLeft(v, "=v"))
	}
	return semver.StrictNewVersion(v)
}

// HighestStable returns the highest published version without a
// pre-release part, or "" if there is none.
func HighestStable(versions []string, loose bool) string {
	return highest(versions, loose, true)
}

// Highest returns the highest published version, or "" if none parse.
func Highest(versions []string, loose bool) string {
	return highest(versions, loose, false)
}

func highest(versions []string, loose, stableOnly bool) string {
	var best *semver.Version
	var raw string
	for _, s := range versions {
		v, err := parseVersion(s, loose)
		if err != nil {
			continue
		}
		if stableOnly && v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, raw = v, s
		}
	}
	return raw
}

// IsOutdated reports whether the declared constraint of rec cannot be
// satisfied by the target version. The target is rec.Stable when stable is
// set and rec.Latest otherwise.
//
//   - A missing, "*" or "latest" constraint is never outdated.
//   - A missing target version is never outdated.
//   - A constraint that is not a valid range is always outdated.
//   - With stable set, an unsatisfied range is outdated only when the target
//     lies above it; a registry whose stable line trails the declared range
//     (for example a pre-release pin) is not reported.
func IsOutdated(rec Record, stable, loose bool) bool {
	required := strings.TrimSpace(rec.Required)
	if required == "" || required == "*" || required == "latest" {
		return false
	}

	target := rec.Latest
	if stable {
		target = rec.Stable
	}
	if target == "" {
		return false
	}

	v, err := parseVersion(target, loose)
	if err != nil {
		return false
	}
	c, err := semver.NewConstraint(required)
	if err != nil {
		return true
	}
	if c.Check(v) {
		return false
	}
	if !stable {
		return true
	}
	return aboveRange(v, required)
}

var rangeVersionRegex = regexp.MustCompile(`v?(\d+)(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?(-[0-9A-Za-z.-]+)?`)

// aboveRange reports whether v is at or above every version mentioned in
// the range. Callers only ask for versions that do not satisfy the range, so
// reaching an exclusive upper bound counts as above. Wildcard components
// count as zero.
func aboveRange(v *semver.Version, rng string) bool {
	matches := rangeVersionRegex.FindAllStringSubmatch(rng, -1)
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		bound := m[1] + "." + component(m[2]) + "." + component(m[3]) + m[4]
		b, err := semver.NewVersion(bound)
		if err != nil {
			return false
		}
		if v.LessThan(b) {
			return false
		}
	}
	return true
}

func component(s string) string {
	if s == "" || s == "x" || s == "X" || s == "*" {
		return "0"
	}
	return s
}

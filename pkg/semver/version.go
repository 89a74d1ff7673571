// Package semver provides semantic version parsing, comparison, and bump
// arithmetic for waymark. It implements the ordering rules of
// https://semver.org/ including pre-release precedence.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// BumpType is the size of a version change, totally ordered patch < minor < major.
type BumpType string

const (
	Patch BumpType = "patch"
	Minor BumpType = "minor"
	Major BumpType = "major"
)

// Validate reports whether b is one of the three known bump types.
func (b BumpType) Validate() error {
	switch b {
	case Patch, Minor, Major:
		return nil
	default:
		return fmt.Errorf("invalid bump type: %q (must be patch, minor, or major)", b)
	}
}

// priority returns the ordinal rank of a bump type, higher is bigger.
func (b BumpType) priority() int {
	switch b {
	case Major:
		return 3
	case Minor:
		return 2
	case Patch:
		return 1
	default:
		return 0
	}
}

// CompareBump returns -1, 0, or 1 as a is smaller than, equal to, or larger than b.
func CompareBump(a, b BumpType) int {
	pa, pb := a.priority(), b.priority()
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}

// MaxBump returns whichever of a, b has the larger priority.
func MaxBump(a, b BumpType) BumpType {
	if CompareBump(a, b) >= 0 {
		return a
	}
	return b
}

// Version is a parsed semantic version: major.minor.patch[-pre][+build].
type Version struct {
	Major     int
	Minor     int
	Patch     int
	Pre       []string // dot-separated pre-release identifiers, nil if none
	BuildMeta string   // build metadata, ignored for comparison
}

// String renders the version back to its canonical textual form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Pre) > 0 {
		s += "-" + strings.Join(v.Pre, ".")
	}
	if v.BuildMeta != "" {
		s += "+" + v.BuildMeta
	}
	return s
}

// IsPrerelease reports whether v carries a pre-release identifier.
func (v Version) IsPrerelease() bool {
	return len(v.Pre) > 0
}

// Parse parses a version string, accepting an optional leading "v".
func Parse(s string) (Version, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return Version{}, fmt.Errorf("invalid version: %q", orig)
	}

	// split off build metadata first (it starts at the first '+')
	var build string
	if i := strings.IndexByte(s, '+'); i >= 0 {
		build = s[i+1:]
		s = s[:i]
		if build == "" {
			return Version{}, fmt.Errorf("invalid version: %q: empty build metadata", orig)
		}
	}

	// then split off pre-release (starts at the first '-')
	var pre []string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		preStr := s[i+1:]
		s = s[:i]
		if preStr == "" {
			return Version{}, fmt.Errorf("invalid version: %q: empty pre-release", orig)
		}
		pre = strings.Split(preStr, ".")
		for _, id := range pre {
			if id == "" {
				return Version{}, fmt.Errorf("invalid version: %q: empty pre-release identifier", orig)
			}
		}
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version: %q: expected major.minor.patch", orig)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version: %q: bad numeric component %q", orig, p)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Pre: pre, BuildMeta: build}, nil
}

// MustParse parses s and panics on failure. Reserved for literals in fixtures.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare orders two versions per semver precedence: numeric triple first,
// then pre-release precedence (a pre-release sorts below its normal
// counterpart); build metadata is ignored entirely.
func Compare(a, b Version) int {
	if a.Major != b.Major {
		return cmpInt(a.Major, b.Major)
	}
	if a.Minor != b.Minor {
		return cmpInt(a.Minor, b.Minor)
	}
	if a.Patch != b.Patch {
		return cmpInt(a.Patch, b.Patch)
	}

	switch {
	case len(a.Pre) == 0 && len(b.Pre) == 0:
		return 0
	case len(a.Pre) == 0: // a is a normal release, b is a pre-release
		return 1
	case len(b.Pre) == 0:
		return -1
	default:
		return comparePre(a.Pre, b.Pre)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre compares pre-release identifier lists per semver: numeric
// identifiers compare numerically and always sort lower than alphanumeric
// ones; a shorter list sorts lower than a longer list with an equal prefix.
func comparePre(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai, aIsNum := asNumeric(a[i])
		bi, bIsNum := asNumeric(b[i])

		switch {
		case aIsNum && bIsNum:
			if c := cmpInt(ai, bi); c != 0 {
				return c
			}
		case aIsNum && !bIsNum:
			return -1
		case !aIsNum && bIsNum:
			return 1
		default:
			if a[i] != b[i] {
				if a[i] < b[i] {
					return -1
				}
				return 1
			}
		}
	}
	return cmpInt(len(a), len(b))
}

func asNumeric(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Less reports whether a sorts strictly before b.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Equal reports whether a and b are equal under Compare (build metadata ignored).
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// Bump strips pre-release and build metadata, increments the named field,
// and zeros every field below it.
func Bump(v Version, b BumpType) Version {
	switch b {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	}
}

// IsBreaking reports whether applying bumpType to a package currently at
// currentVersion constitutes a breaking change: once a package has reached
// 1.0, only a major bump is breaking; below 1.0 the whole line is
// pre-stable, so minor (and major) bumps are breaking too.
func IsBreaking(currentVersion Version, bumpType BumpType) bool {
	if currentVersion.Major >= 1 {
		return bumpType == Major
	}
	return CompareBump(bumpType, Minor) >= 0
}

// DetectBump derives the bump type that turns from into to. Assumes from < to.
func DetectBump(from, to Version) BumpType {
	if to.Major != from.Major {
		return Major
	}
	if to.Minor != from.Minor {
		return Minor
	}
	return Patch
}

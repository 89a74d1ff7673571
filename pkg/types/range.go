// Package types holds the small value types shared across waymark's core
// packages that don't belong to any single component: dependency ranges
// and the dependency-kind enum used by the graph and plan engine.
package types

import (
	"strings"

	"github.com/waymark/waymark/pkg/semver"
)

// DependencyKind classifies an edge in the dependency graph. Production and
// peer edges are ordering-significant; development edges are not.
type DependencyKind string

const (
	Prod DependencyKind = "prod"
	Peer DependencyKind = "peer"
	Dev  DependencyKind = "dev"
)

// Precedence returns the edge-kind priority used when the same dependency
// name appears under more than one kind on a package: prod > peer > dev.
func (k DependencyKind) Precedence() int {
	switch k {
	case Prod:
		return 3
	case Peer:
		return 2
	case Dev:
		return 1
	default:
		return 0
	}
}

// CausesRepublish reports whether an update along an edge of this kind
// forces the dependent to be republished (true for prod and peer, false for dev).
func (k DependencyKind) CausesRepublish() bool {
	return k == Prod || k == Peer
}

// wildcard is the "*" range. The range prefixes this system understands
// are "", "^", "~", ">=", and "*" (§3); the wildcard has no anchor version
// and is handled separately.
const wildcard = "*"

// Range is a dependency version range of the form PREFIX VERSION (e.g.
// "^1.2.3", "~1.2.3", ">=1.2.3", "1.2.3", or the wildcard "*"). Waymark
// does not implement general range resolution: it only parses the prefix
// and anchor version well enough to test "does this range already cover
// version V" and to rewrite the anchor while preserving the prefix.
type Range string

// Prefix returns the range's prefix, one of "", "^", "~", ">=", or "*" for
// the wildcard range (in which case Anchor is meaningless).
func (r Range) Prefix() string {
	s := string(r)
	switch {
	case s == wildcard:
		return wildcard
	case strings.HasPrefix(s, ">="):
		return ">="
	case strings.HasPrefix(s, "^"):
		return "^"
	case strings.HasPrefix(s, "~"):
		return "~"
	default:
		return ""
	}
}

// IsWildcard reports whether the range is the literal "*".
func (r Range) IsWildcard() bool {
	return string(r) == wildcard
}

// Anchor parses the version portion of the range (everything after the
// prefix). Returns an error for the wildcard range, which has no anchor.
func (r Range) Anchor() (semver.Version, error) {
	if r.IsWildcard() {
		return semver.Version{}, errNoAnchor
	}
	return semver.Parse(strings.TrimPrefix(string(r), r.Prefix()))
}

var errNoAnchor = rangeError("wildcard range has no anchor version")

type rangeError string

func (e rangeError) Error() string { return string(e) }

// Satisfies reports whether the range matches version v: per §3, a range
// "matches" iff the parsed anchor version is <= v. The wildcard never
// satisfies any concrete version for the purpose of update detection
// (spec §4.5 edge cases: conservative treatment of "*").
func (r Range) Satisfies(v semver.Version) bool {
	if r.IsWildcard() {
		return false
	}
	anchor, err := r.Anchor()
	if err != nil {
		return false
	}
	return semver.Compare(anchor, v) <= 0
}

// RangeStrategy selects the prefix used when the updater writes a new
// version into a manifest range (§4.7).
type RangeStrategy string

const (
	StrategyExact RangeStrategy = "exact"
	StrategyCaret RangeStrategy = "caret"
	StrategyTilde RangeStrategy = "tilde"
	StrategyGTE   RangeStrategy = "gte"
)

func (s RangeStrategy) prefix() string {
	switch s {
	case StrategyExact:
		return ""
	case StrategyTilde:
		return "~"
	case StrategyGTE:
		return ">="
	case StrategyCaret:
		return "^"
	default:
		return "^"
	}
}

// WriteRange renders a new range for newVersion given the range that used
// to be there and the requested strategy. If the current range carries a
// recognized, non-wildcard prefix, that prefix is reused regardless of
// strategy (§4.7 "range preservation"); otherwise (a wildcard, or an
// unparseable range) the strategy's prefix is used.
func WriteRange(current Range, newVersion semver.Version, strategy RangeStrategy) Range {
	prefix := strategy.prefix()
	if !current.IsWildcard() {
		if _, err := current.Anchor(); err == nil {
			prefix = current.Prefix()
		}
	}
	return Range(prefix + newVersion.String())
}

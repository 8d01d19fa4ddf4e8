package core

import (
	"github.com/blang/semver/v4"
)

// Version is a semantic version, as published for a package revision.
type Version struct {
	inner semver.Version
}

// ParseVersion parses a semver string such as "1.2.3" or "1.2.3-rc.1".
func ParseVersion(s string) (*Version, error) {
	v, err := semver.Parse(s)
	if err != nil {
		return nil, ModelError.New("not a valid version: %s: %s", s, err)
	}
	return &Version{inner: v}, nil
}

func (v *Version) String() string {
	return v.inner.String()
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other.
func (v *Version) Compare(other *Version) int {
	return v.inner.Compare(other.inner)
}

// LessThan reports whether v < other.
func (v *Version) LessThan(other *Version) bool {
	return v.inner.LT(other.inner)
}

// IsPreRelease reports whether v carries a pre-release component.
func (v *Version) IsPreRelease() bool {
	return len(v.inner.Pre) > 0
}

// VersionRange is a predicate over versions plus the source text it was
// parsed from, for error messages ("range does not admit pre-releases").
type VersionRange struct {
	source string
	rng    semver.Range
}

// ParseVersionRange parses a range expression such as ">=1.0.0 <2.0.0".
// An empty string matches any version.
func ParseVersionRange(s string) (*VersionRange, error) {
	if s == "" {
		return &VersionRange{source: "*", rng: func(semver.Version) bool { return true }}, nil
	}
	rng, err := semver.ParseRange(s)
	if err != nil {
		return nil, ModelError.New("not a valid version range: %s: %s", s, err)
	}
	return &VersionRange{source: s, rng: rng}, nil
}

// Admits reports whether v satisfies the range. Pre-release versions are
// only considered if the range's source text explicitly names one, per
// spec.md §4.3.
func (r *VersionRange) Admits(v *Version) bool {
	if v.IsPreRelease() && !r.admitsPreRelease() {
		return false
	}
	return r.rng(v.inner)
}

func (r *VersionRange) admitsPreRelease() bool {
	return containsHyphen(r.source)
}

func containsHyphen(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			return true
		}
	}
	return false
}

func (r *VersionRange) String() string {
	return r.source
}

// BestMatch returns the highest version in candidates admitted by r, or
// nil if none match. Ties (there can be none, since semver orders
// totally) break toward the higher version.
func BestMatch(r *VersionRange, candidates []*Version) *Version {
	var best *Version
	for _, c := range candidates {
		if !r.Admits(c) {
			continue
		}
		if best == nil || best.LessThan(c) {
			best = c
		}
	}
	return best
}

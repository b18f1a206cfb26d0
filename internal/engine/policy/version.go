package policy

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
)

// Version is a rule-file compatibility version.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// CurrentVersion is the newest version whose policies this engine knows.
var CurrentVersion = Version{Major: 1, Minor: 6}

// ParseVersion parses "major.minor" or "major.minor.patch".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, zerr.With(domain.ErrInvalidVersion, "version", s)
	}

	var nums [3]uint32
	for i, p := range parts {
		// Atoi alone would accept a leading sign.
		if !isDigits(p) {
			return Version{}, zerr.With(domain.ErrInvalidVersion, "version", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidVersion.Error()), "version", s)
		}
		v, err := safecast.Conv[uint32](n)
		if err != nil {
			return Version{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidVersion.Error()), "version", s)
		}
		nums[i] = v
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MustParseVersion is like ParseVersion but panics on error.
// It is meant for the policy table, whose versions are constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after other.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, other.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// String renders "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

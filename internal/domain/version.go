package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted numeric triple ("2.4.1"). Missing components are zero,
// so "2.4" parses the same as "2.4.0".
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a dotted version string into a Version. A component
// that is not a non-negative integer is rejected rather than compared
// loosely; callers validate feed versions before any comparison runs.
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, nil
	}
	trimmed = strings.TrimPrefix(trimmed, "v")

	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: %q has more than three components", ErrInvalidVersion, raw)
	}

	var components [3]int
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			return Version{}, fmt.Errorf("%w: component %q in %q", ErrInvalidVersion, part, raw)
		}
		components[i] = value
	}
	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// Compare orders versions component-wise, major first. Returns 1 when v is
// newer than other, -1 when older, 0 when equal.
func (v Version) Compare(other Version) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, pair := range pairs {
		if pair[0] > pair[1] {
			return 1
		}
		if pair[0] < pair[1] {
			return -1
		}
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CompareVersions compares two version strings. An unparseable input is an
// error, never a silent tie.
func CompareVersions(a, b string) (int, error) {
	left, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	right, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return left.Compare(right), nil
}

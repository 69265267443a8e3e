package pyenv

import (
	"fmt"
	"strconv"
	"strings"
)

// Version represents an interpreter or pip version with major, minor, and
// patch components. Minor and Patch are -1 when the source string did not
// specify them (e.g. "3" parses as {3, -1, -1}).
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "X.Y.Z", "X.Y", or "X". Trailing non-numeric text on
// the last component is ignored, so "3.12.0rc1" parses as {3, 12, 0}.
func ParseVersion(s string) (Version, error) {
	v := Version{Minor: -1, Patch: -1}

	fields := strings.SplitN(strings.TrimSpace(s), ".", 3)
	targets := []*int{&v.Major, &v.Minor, &v.Patch}

	for i, field := range fields {
		n, ok := leadingInt(field)
		if !ok {
			if i == 0 {
				return Version{}, fmt.Errorf("invalid version string: %q", s)
			}
			break
		}
		*targets[i] = n
	}

	if v.Major < 0 {
		return Version{}, fmt.Errorf("invalid version string: %q", s)
	}
	return v, nil
}

// leadingInt parses the leading decimal digits of s.
func leadingInt(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParsePythonVersion parses "python --version" output such as "Python 3.12.1".
func ParsePythonVersion(s string) (Version, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) < 2 || parts[0] != "Python" {
		return Version{}, fmt.Errorf("unexpected python version output: %q", s)
	}
	return ParseVersion(parts[1])
}

// ParsePipVersion parses "pip --version" output such as
// "pip 24.0 from /lib/python3.12/site-packages/pip (python 3.12)".
func ParsePipVersion(s string) (Version, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "pip") {
		return Version{}, fmt.Errorf("unexpected pip version output: %q", s)
	}
	return ParseVersion(parts[1])
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// Components are compared in order: major, minor, patch.
func (v Version) Compare(other Version) int {
	for _, pair := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if pair[0] > pair[1] {
			return 1
		}
		if pair[0] < pair[1] {
			return -1
		}
	}
	return 0
}

// String formats the version, omitting unspecified components.
func (v Version) String() string {
	switch {
	case v.Patch != -1:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != -1:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(v.Major)
	}
}

// MinorString returns "major.minor", the form used in interpreter paths
// like python3.12.
func (v Version) MinorString() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

package bzgate

import (
	"fmt"
	"strings"
	"unicode"

	goversion "github.com/hashicorp/go-version"
)

// LooseVersion is an ordered rendition of a version-ish tracker string such
// as "rhel-7.3" or "2.0.1-5". A leading run of non-digit characters is
// stripped before parsing, so two differently prefixed strings with the same
// numeric remainder compare equal.
type LooseVersion struct {
	raw string
	v   *goversion.Version
}

// ParseLooseVersion parses raw into an ordered version. It fails when
// nothing parseable remains after stripping the prefix.
func ParseLooseVersion(raw string) (LooseVersion, error) {
	rest := strings.TrimLeftFunc(raw, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if rest == "" {
		return LooseVersion{}, fmt.Errorf("no version number in %q", raw)
	}
	v, err := goversion.NewVersion(rest)
	if err != nil {
		return LooseVersion{}, fmt.Errorf("parsing version %q: %w", raw, err)
	}
	return LooseVersion{raw: raw, v: v}, nil
}

// Raw returns the original string the version was parsed from.
func (l LooseVersion) Raw() string { return l.raw }

func (l LooseVersion) String() string {
	if l.v == nil {
		return ""
	}
	return l.v.String()
}

// Compare returns -1, 0 or 1 ordering l against other.
func (l LooseVersion) Compare(other LooseVersion) int { return l.v.Compare(other.v) }

func (l LooseVersion) LessThan(other LooseVersion) bool    { return l.Compare(other) < 0 }
func (l LooseVersion) AtMost(other LooseVersion) bool      { return l.Compare(other) <= 0 }
func (l LooseVersion) Equal(other LooseVersion) bool       { return l.Compare(other) == 0 }
func (l LooseVersion) AtLeast(other LooseVersion) bool     { return l.Compare(other) >= 0 }
func (l LooseVersion) GreaterThan(other LooseVersion) bool { return l.Compare(other) > 0 }

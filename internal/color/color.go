package color

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Fallback is used wherever a color must be valid but the input is not.
const Fallback = "#0EA5E9"

const (
	DarkText  = "#1F2937"
	LightText = "#FFFFFF"
)

var (
	inputPattern     = regexp.MustCompile(`^#?[0-9A-Fa-f]{0,6}$`)
	fullPattern      = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	shortPattern     = regexp.MustCompile(`^#[0-9A-Fa-f]{3}$`)
	bareRunPattern   = regexp.MustCompile(`^[0-9A-Fa-f]{1,6}$`)
	bareSafePattern  = regexp.MustCompile(`^[0-9A-Fa-f]{3,6}$`)
	partialPattern   = regexp.MustCompile(`^#[0-9A-Fa-f]{1,5}$`)
	canonicalPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)
)

type Kind int

const (
	// KindEmpty is the result for "".
	KindEmpty Kind = iota
	// KindHash is the result for a lone "#".
	KindHash
	// KindCanonical means Value is "#" followed by six uppercase hex digits.
	KindCanonical
	// KindUnchanged means the input matched no hex shape and Value is the
	// original string. Callers must not submit it.
	KindUnchanged
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindHash:
		return "hash"
	case KindCanonical:
		return "canonical"
	case KindUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

type Result struct {
	Kind  Kind
	Value string
}

func (r Result) OK() bool { return r.Kind == KindCanonical }

// IsValidInput reports whether s is acceptable while the user is still typing:
// empty, "#", or "#" optionally followed by up to six hex digits.
func IsValidInput(s string) bool {
	return inputPattern.MatchString(s)
}

func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

// Normalize canonicalizes s on a best-effort basis.
//
// Shorthand "#abc" and bare "abc" expand per digit. Other bare runs of one to
// six digits and "#" runs of one to five digits are right-padded with "0".
// A bare four to six digit run is padded, never read as an alpha channel.
func Normalize(s string) Result {
	switch {
	case s == "":
		return Result{Kind: KindEmpty, Value: ""}
	case s == "#":
		return Result{Kind: KindHash, Value: "#"}
	case fullPattern.MatchString(s):
		return canonical(s[1:])
	case shortPattern.MatchString(s):
		return canonical(expand(s[1:]))
	case bareRunPattern.MatchString(s):
		if len(s) == 3 {
			return canonical(expand(s))
		}
		return canonical(pad(s))
	case partialPattern.MatchString(s):
		return canonical(pad(s[1:]))
	default:
		return Result{Kind: KindUnchanged, Value: s}
	}
}

func NormalizeString(s string) string {
	return Normalize(s).Value
}

// Safe always returns a renderable color. Inputs that match none of the
// recognized hex shapes yield Fallback.
func Safe(s string) string {
	switch {
	case fullPattern.MatchString(s):
		return strings.ToUpper(s)
	case shortPattern.MatchString(s):
		return canonical(expand(s[1:])).Value
	case partialPattern.MatchString(s):
		return canonical(pad(s[1:])).Value
	case bareSafePattern.MatchString(s):
		if len(s) == 3 {
			return canonical(expand(s)).Value
		}
		return canonical(pad(s)).Value
	default:
		return Fallback
	}
}

// Submission returns the value to send to the API. It is total and always
// canonical.
func Submission(s string) string {
	if fullPattern.MatchString(s) {
		return strings.ToUpper(s)
	}
	if r := Normalize(s); r.OK() {
		return r.Value
	}
	return Fallback
}

func canonical(hex string) Result {
	return Result{Kind: KindCanonical, Value: "#" + strings.ToUpper(hex)}
}

func expand(hex string) string {
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < len(hex); i++ {
		b.WriteByte(hex[i])
		b.WriteByte(hex[i])
	}
	return b.String()
}

func pad(hex string) string {
	if len(hex) >= 6 {
		return hex
	}
	return hex + strings.Repeat("0", 6-len(hex))
}

// ContrastText picks dark or light text for a background of s, by perceived
// luminance with a 0.5 cutoff.
func ContrastText(s string) string {
	c, err := colorful.Hex(Safe(s))
	if err != nil {
		return DarkText
	}
	if 0.299*c.R+0.587*c.G+0.114*c.B > 0.5 {
		return DarkText
	}
	return LightText
}

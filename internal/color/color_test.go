package color

import "testing"

func TestIsValidInput(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"#", true},
		{"#0", true},
		{"#0ea5", true},
		{"#0EA5E9", true},
		{"0ea5e9", true},
		{"abc", true},
		{"#gg", false},
		{"12345g", false},
		{"##", false},
		{"#1234567", false},
		{" #fff", false},
	}
	for _, tc := range cases {
		if got := IsValidInput(tc.in); got != tc.want {
			t.Fatalf("IsValidInput(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		wantKind Kind
	}{
		{"", "", KindEmpty},
		{"#", "#", KindHash},
		{"#abc", "#AABBCC", KindCanonical},
		{"abc", "#AABBCC", KindCanonical},
		{"a1", "#A10000", KindCanonical},
		{"#a1", "#A10000", KindCanonical},
		{"#0ea5e9", "#0EA5E9", KindCanonical},
		{"0ea5e9", "#0EA5E9", KindCanonical},
		{"abcd", "#ABCD00", KindCanonical},
		{"#abcd", "#ABCD00", KindCanonical},
		{"f", "#F00000", KindCanonical},
		{"#1234567", "#1234567", KindUnchanged},
		{"red", "red", KindUnchanged},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if got.Value != tc.want || got.Kind != tc.wantKind {
			t.Fatalf("Normalize(%q) = %+v, want %q (%s)", tc.in, got, tc.want, tc.wantKind)
		}
		if NormalizeString(tc.in) != tc.want {
			t.Fatalf("NormalizeString(%q) = %q, want %q", tc.in, NormalizeString(tc.in), tc.want)
		}
	}
}

func TestSafe(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"not-a-color", Fallback},
		{"#0ea5e9", "#0EA5E9"},
		{"f00", "#FF0000"},
		{"#f00", "#FF0000"},
		{"#12", "#120000"},
		{"1234", "#123400"},
		{"", Fallback},
		{"#", Fallback},
		{"a1", Fallback},
		{"#1234567", Fallback},
	}
	for _, tc := range cases {
		if got := Safe(tc.in); got != tc.want {
			t.Fatalf("Safe(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSubmission(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"#123456", "#123456"},
		{"#abcdef", "#ABCDEF"},
		{"#abc", "#AABBCC"},
		{"a1", "#A10000"},
		{"bad", "#BBAADD"},
		{"", Fallback},
		{"#", Fallback},
		{"nope", Fallback},
		{"#xyz", Fallback},
	}
	for _, tc := range cases {
		if got := Submission(tc.in); got != tc.want {
			t.Fatalf("Submission(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSafeAndSubmissionAreIdempotentAndCanonical(t *testing.T) {
	inputs := []string{"", "#", "#a", "#ab", "#abc", "#abcd", "#abcde", "#abcdef", "a", "ab", "abc", "abcd", "abcde", "abcdef", "bad", "zzz", "##", "#1234567", "rgb(0,0,0)"}
	for _, in := range inputs {
		safe := Safe(in)
		if Safe(safe) != safe {
			t.Fatalf("Safe not idempotent for %q: %q -> %q", in, safe, Safe(safe))
		}
		if !IsCanonical(safe) {
			t.Fatalf("Safe(%q) = %q is not canonical", in, safe)
		}
		sub := Submission(in)
		if Submission(sub) != sub {
			t.Fatalf("Submission not idempotent for %q: %q -> %q", in, sub, Submission(sub))
		}
		if !IsCanonical(sub) {
			t.Fatalf("Submission(%q) = %q is not canonical", in, sub)
		}
	}
}

func TestResultOK(t *testing.T) {
	if Normalize("#").OK() {
		t.Fatal("lone hash must not be submittable")
	}
	if Normalize("red").OK() {
		t.Fatal("unchanged result must not be submittable")
	}
	if !Normalize("#fff").OK() {
		t.Fatal("expanded shorthand should be submittable")
	}
}

func TestContrastText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"#FFFFFF", DarkText},
		{"#FFFF00", DarkText},
		{"#000000", LightText},
		{"#1E3A8A", LightText},
		{"#FF0000", LightText},
		{"#808080", DarkText},
		{"#7F7F7F", LightText},
		{"not-a-color", DarkText},
	}
	for _, tc := range cases {
		if got := ContrastText(tc.in); got != tc.want {
			t.Fatalf("ContrastText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

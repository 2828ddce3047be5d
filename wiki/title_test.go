package wiki

import (
	"errors"
	"testing"
)

func TestEncodeTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Test", want: "Test"},
		{name: "whitespace run", in: "test \t  page", want: "test_page"},
		{name: "reserved", in: `a"b%c&d+e=f?g\h^i` + "`j~k", want: "a%22b%25c%26d%2Be%3Df%3Fg%5Ch%5Ei%60j%7Ek"},
		{name: "non ascii untouched", in: "Заглавная страница", want: "Заглавная_страница"},
		{name: "anchor and colon untouched", in: "Help:Links#Section", want: "Help:Links#Section"},
		{name: "escape encoded once", in: "%22", want: "%2522"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EncodeTitle(tc.in); got != tc.want {
				t.Fatalf("EncodeTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestEncodeTitleIsNotIdempotent(t *testing.T) {
	once := EncodeTitle("100% done")
	twice := EncodeTitle(once)
	if once != "100%25_done" {
		t.Fatalf("EncodeTitle() = %q", once)
	}
	if twice == once {
		t.Fatalf("expected double encoding to differ, both %q", once)
	}
	if twice != "100%2525_done" {
		t.Fatalf("EncodeTitle(EncodeTitle()) = %q", twice)
	}
}

func TestValidateTitle(t *testing.T) {
	cases := []struct {
		in      string
		invalid bool
	}{
		{in: "Test", invalid: false},
		{in: "<script>", invalid: true},
		{in: "a>b", invalid: true},
		{in: "a{b", invalid: true},
		{in: "a]b", invalid: true},
		{in: "a|b", invalid: true},
		{in: "sig ~~~", invalid: true},
		{in: "tilde ~~ ok", invalid: false},
		{in: "A &amp; B", invalid: true},
		{in: "A &#160; B", invalid: true},
		{in: "A &#x20; B", invalid: true},
		{in: "A & B", invalid: false},
		{in: "Page#<anchor>", invalid: false},
		{in: "Pa<ge#anchor", invalid: true},
	}
	for _, tc := range cases {
		err := ValidateTitle(tc.in)
		if tc.invalid && !errors.Is(err, ErrInvalidTitle) {
			t.Fatalf("ValidateTitle(%q) error = %v, want ErrInvalidTitle", tc.in, err)
		}
		if !tc.invalid && err != nil {
			t.Fatalf("ValidateTitle(%q) error = %v, want nil", tc.in, err)
		}
	}
}

func TestCapitalizeFirst(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"test page": "Test page",
		"Test":      "Test",
		"éclair":    "Éclair",
		"юникод":    "Юникод",
		"1st":       "1st",
		"ßtraße":    "ßtraße",
		"ǆungla":    "Ǆungla",
	}
	for in, want := range cases {
		if got := CapitalizeFirst(in); got != want {
			t.Fatalf("CapitalizeFirst(%q) = %q, want %q", in, got, want)
		}
	}
}

package services

import "testing"

func TestNormEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"Jo.Bloggs@Example.COM", "jo.bloggs@example.com", true},
		{" jo@example.com ", "jo@example.com", true},
		{"not-an-email", "not-an-email", false},
		{"jo@", "jo@", false},
	}
	for _, tc := range cases {
		got, ok := NormEmail(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormEmail(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormNINumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AB123456C", "AB123456C"},
		{"ab 12 34 56 c", "AB123456C"},
		{"ab-12-34-56-c", "AB123456C"},
		{"QQ123456C", ""}, // Q never appears in the prefix
		{"AO123456C", ""}, // O never appears second
		{"AB123456E", ""}, // suffix must be A-D
		{"AB12345C", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormNINumber(tc.in); got != tc.want {
			t.Errorf("NormNINumber(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormPostcode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"SW1A 1AA", "SW1A 1AA"},
		{"sw1a1aa", "SW1A 1AA"},
		{"ls1 4ap", "LS1 4AP"},
		{"m1 1ae", "M1 1AE"},
		{"ec1a-1bb", "EC1A 1BB"},
		{"12345", ""},
		{"SW1A 1A", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormPostcode(tc.in); got != tc.want {
			t.Errorf("NormPostcode(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

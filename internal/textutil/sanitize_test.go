package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BinaryCode", "BinaryCode"},
		{"  a/b\\c:d*e  ", "a-b-c-d-e"},
		{"what?<>|\"", "what"},
		{"..", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SRM 144 DIV 1", "srm_144_div_1"},
		{"TCO'24 Round-2A", "tco_24_round-2a"},
		{"Straße", "strasse"},
		{"  !!!  ", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

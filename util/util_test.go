package util

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "./ggml-base-q5_1.bin", "other"); got != "./ggml-base-q5_1.bin" {
		t.Errorf("expected first non-empty, got %q", got)
	}
	if got := Coalesce(0, 0, 8000); got != 8000 {
		t.Errorf("expected 8000, got %d", got)
	}
	if got := Coalesce[string](); got != "" {
		t.Errorf("expected zero value, got %q", got)
	}
}

func TestSanitizeEnvValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{`"http://a.test"`, "http://a.test"},
		{`'base'`, "base"},
		{"  5m  ", "5m"},
		{`  " spaced "  `, "spaced"},
		{`"mismatched'`, `"mismatched'`},
		{`"`, `"`},
		{`""`, ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeEnvValue(tc.in); got != tc.want {
			t.Errorf("SanitizeEnvValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"hello", 0, "hello"},
		{"", 3, ""},
		{"héllo", 2, "h..."},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	const def = int64(7)
	tests := []struct {
		in   string
		want int64
	}{
		{"100MB", 100 << 20},
		{"512KB", 512 << 10},
		{"512k", 512 << 10},
		{"2GB", 2 << 30},
		{" 10 mb ", 10 << 20},
		{"30720B", 30720},
		{"1024", 1024},
		{"", def},
		{"lots", def},
		{"-5MB", def},
		{"1.5MB", def},
	}
	for _, tc := range tests {
		if got := ParseSize(tc.in, def); got != tc.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPtr(t *testing.T) {
	a, b := Ptr(0.5), Ptr(0.5)
	if a == b || *a != *b {
		t.Errorf("expected distinct pointers to equal values, got %p %p", a, b)
	}
}

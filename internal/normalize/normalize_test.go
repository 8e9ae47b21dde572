package normalize

import (
	"testing"
	"time"
)

func TestParseDate_KnownFormats(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-03-05",
		"03/05/2024",
		"3/5/2024",
		"2024/03/05",
		"March 5, 2024",
	} {
		got := ParseDate(in)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDate_TimestampKeepsDate(t *testing.T) {
	got := ParseDate("2024-03-05 14:30:00")
	if got == nil || got.Year() != 2024 || got.Month() != 3 || got.Day() != 5 {
		t.Errorf("ParseDate timestamp = %v", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "not-a-date", "13/45/2024"} {
		if got := ParseDate(in); got != nil {
			t.Errorf("ParseDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1234.5", 1234.5},
		{"1,234.50", 1234.5},
		{"₦2,500", 2500},
		{"$100", 100},
		{" 42 ", 42},
		{"", 0},
	}
	for _, c := range cases {
		got, err := Amount(c.in)
		if err != nil {
			t.Errorf("Amount(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Amount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAmount_Invalid(t *testing.T) {
	if _, err := Amount("abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestCode(t *testing.T) {
	cases := map[string]string{
		"c1":      "C1",
		" C-100 ": "C100",
		"a.b/c":   "ABC",
		"":        "",
	}
	for in, want := range cases {
		if got := Code(in); got != want {
			t.Errorf("Code(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnrolleeID(t *testing.T) {
	cases := map[string]string{
		"ENR/01/0001": "ENR010001",
		"enr-01~2 ":   "enr012",
	}
	for in, want := range cases {
		if got := EnrolleeID(in); got != want {
			t.Errorf("EnrolleeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompanyName(t *testing.T) {
	a := CompanyName("ACME   LTD.")
	b := CompanyName("Acme Ltd")
	if a != b {
		t.Errorf("normalized names differ: %q vs %q", a, b)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.006); got != 10.01 {
		t.Errorf("Round2(10.006) = %v, want 10.01", got)
	}
	if got := Round2(2.344); got != 2.34 {
		t.Errorf("Round2(2.344) = %v, want 2.34", got)
	}
}

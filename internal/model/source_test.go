package model

import "testing"

func TestParseSourceRoundTrip(t *testing.T) {
	for _, src := range AllSources {
		got, err := ParseSource(src.String())
		if err != nil {
			t.Errorf("ParseSource(%q): %v", src.String(), err)
			continue
		}
		if got != src {
			t.Errorf("ParseSource(%q) = %v, want %v", src.String(), got, src)
		}
	}
}

func TestParseSource_Unknown(t *testing.T) {
	if _, err := ParseSource("everything"); err == nil {
		t.Error("expected error for unknown selector")
	}
}

func TestRequiredExtracts(t *testing.T) {
	required := RequiredExtracts()
	want := map[string]bool{"pa_procedures": true, "claims": true, "ledger_entries": false}
	for name, wantRequired := range want {
		found := false
		for _, r := range required {
			if r == name {
				found = true
			}
		}
		if found != wantRequired {
			t.Errorf("%s required = %v, want %v", name, found, wantRequired)
		}
	}
}

func TestWindowContainsBoundsInclusive(t *testing.T) {
	w := Window{}
	if !w.Contains(w.Start) || !w.Contains(w.End) {
		t.Error("window bounds should be inclusive")
	}
}

package model

import "fmt"

// Source selects which transaction stream a reconciliation reads from.
type Source int

const (
	// SourcePA uses pre-authorization records only.
	SourcePA Source = iota
	// SourceClaims uses adjudicated claim records only.
	SourceClaims
	// SourceCombined merges both streams, counting a procedure present in
	// both exactly once (the Claims amount wins).
	SourceCombined
)

// AllSources lists the selectors in canonical order.
var AllSources = []Source{SourcePA, SourceClaims, SourceCombined}

func (s Source) String() string {
	switch s {
	case SourcePA:
		return "pa"
	case SourceClaims:
		return "claims"
	case SourceCombined:
		return "combined"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// MarshalText makes Source usable as a JSON map key and value.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSource maps a selector name (as used in API query parameters) to a
// Source.
func ParseSource(name string) (Source, error) {
	switch name {
	case "pa":
		return SourcePA, nil
	case "claims":
		return SourceClaims, nil
	case "combined":
		return SourceCombined, nil
	}
	return 0, fmt.Errorf("unknown source %q (want pa, claims, or combined)", name)
}

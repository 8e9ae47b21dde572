package ledger

import (
	"sort"

	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/normalize"
)

// Triage classifies the debit-note book against the contract register:
// which invoices name a contracted company, which name nobody we know,
// and which contracted companies were never invoiced at all.
type Triage struct {
	Valid      []model.DebitNoteRow `json:"valid"`
	Invalid    []model.DebitNoteRow `json:"invalid"`
	Uninvoiced []string             `json:"uninvoiced"`
}

// DebitTriage matches each note's company name, in normalized form, against
// the contracted group names. Unmatched notes usually mean a misspelled or
// renamed client in the finance system rather than a phantom invoice.
func DebitTriage(notes []model.DebitNoteRow, envelopes map[string]model.Window) Triage {
	contracted := make(map[string]string, len(envelopes))
	for name := range envelopes {
		contracted[normalize.CompanyName(name)] = name
	}

	var t Triage
	invoiced := make(map[string]struct{})
	for _, n := range notes {
		norm := normalize.CompanyName(n.CompanyName)
		if _, ok := contracted[norm]; ok {
			t.Valid = append(t.Valid, n)
			invoiced[norm] = struct{}{}
		} else {
			t.Invalid = append(t.Invalid, n)
		}
	}

	for norm, name := range contracted {
		if _, ok := invoiced[norm]; !ok {
			t.Uninvoiced = append(t.Uninvoiced, name)
		}
	}
	sort.Strings(t.Uninvoiced)
	return t
}

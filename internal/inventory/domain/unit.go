package domain

import "strings"

// Informal unit names folded to their canonical form before persisting.
var unitSynonyms = map[string]string{
	"bag":   "pack",
	"piece": "pack",
	"pc":    "pack",
	"item":  "pack",
}

var recognizedUnits = map[string]bool{
	"kg":   true,
	"g":    true,
	"l":    true,
	"ml":   true,
	"pack": true,
}

// CanonicalUnit lowercases, trims and folds synonyms. Returns "" when the
// unit is not recognized.
func CanonicalUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if folded, ok := unitSynonyms[u]; ok {
		return folded
	}
	if recognizedUnits[u] {
		return u
	}
	return ""
}

// NormalizeUnit picks the unit recorded in the ledger: the sale item's unit
// when recognized, otherwise the batch's unit.
func NormalizeUnit(saleUnit, batchUnit string) string {
	if u := CanonicalUnit(saleUnit); u != "" {
		return u
	}
	if u := CanonicalUnit(batchUnit); u != "" {
		return u
	}
	return strings.TrimSpace(batchUnit)
}

// Package wipstage maps the remote ERP's free-form production process
// codes onto the canonical WIP stage taxonomy.
package wipstage

import "github.com/texfocus/wiptrack_backend/models"

// The remote process master numbers its steps 1..24, weaving first.
const (
	CodeOnLoom   = 1
	ValidCodeMin = 1
	ValidCodeMax = 24
)

// Codes whose step means the piece has left the finishing pipeline.
var (
	fgStoreCodes = map[int]struct{}{19: {}, 20: {}}
	packedCodes  = map[int]struct{}{21: {}, 22: {}}
)

// Classify is total and pure: every integer maps to exactly one of
// on_loom, finishing, finished_goods_store or packed. Dispatched is
// never produced here; it is assigned downstream for orders the live
// source marks closed/invoiced.
//
// Codes outside the known 1..24 range fall back to on_loom. That is a
// conservative guess, not knowledge; see DESIGN.md before relying on
// on_loom counts for anything contractual.
func Classify(code int) models.WIPStage {
	if code == CodeOnLoom {
		return models.StageOnLoom
	}
	if _, ok := packedCodes[code]; ok {
		return models.StagePacked
	}
	if _, ok := fgStoreCodes[code]; ok {
		return models.StageFGStore
	}
	if code >= ValidCodeMin && code <= ValidCodeMax {
		// Anywhere in the pipeline past weaving.
		return models.StageFinishing
	}
	return models.StageOnLoom
}

// IsPacked reports whether the code is one of the packed steps.
func IsPacked(code int) bool {
	_, ok := packedCodes[code]
	return ok
}

// IsKnownCode reports whether the code is inside the remote process
// master's numeric range. The sync engine uses this to surface unknown
// codes without changing their classification.
func IsKnownCode(code int) bool {
	return code >= ValidCodeMin && code <= ValidCodeMax
}

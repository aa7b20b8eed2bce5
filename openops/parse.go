// Package openops ingests the manually exported "currently open"
// order list the reconciler uses as ground truth.
package openops

import (
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/texfocus/wiptrack_backend/utils"
)

var ErrEmptyDocument = errors.New("no order numbers found in document")

// ParseOpsSheet reads the first sheet of an xlsx export: one order
// number per row in the first column. Numbers are normalized, blanks
// and duplicates dropped, and the maximum trailing sequence across the
// set recorded. A header row without a trailing number simply yields
// no sequence and stays matchable only verbatim, which is harmless.
func ParseOpsSheet(r io.Reader) (opsNumbers []string, maxSequence int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, ErrEmptyDocument
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, err
	}

	seen := map[string]struct{}{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		number := utils.NormalizeOrderNo(row[0])
		if number == "" {
			continue
		}
		if _, dup := seen[number]; dup {
			continue
		}
		seen[number] = struct{}{}
		opsNumbers = append(opsNumbers, number)
		if seq, ok := utils.ExtractOrderSequence(number); ok && seq > maxSequence {
			maxSequence = seq
		}
	}
	if len(opsNumbers) == 0 {
		return nil, 0, ErrEmptyDocument
	}
	return opsNumbers, maxSequence, nil
}

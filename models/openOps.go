package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/texfocus/wiptrack_backend/config"
	"github.com/texfocus/wiptrack_backend/utils"
	"gorm.io/gorm"
)

// OpenOpsDocument stores the manually exported "currently open" order
// list. Each upload replaces the previous document wholesale; the
// reconciler only ever reads the latest one.
type OpenOpsDocument struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	FileName    string    `gorm:"size:255" json:"file_name" validate:"required"`
	OpsJSON     []byte    `gorm:"type:json" json:"-" validate:"required"`
	OpsCount    int       `json:"ops_count" validate:"gt=0"`
	MaxSequence int       `json:"max_sequence" validate:"gte=0"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (OpenOpsDocument) TableName() string { return "open_ops_document" }

// OpenOpsSet is the in-memory ground truth for one reconciliation
// pass. Immutable once loaded.
type OpenOpsSet struct {
	Numbers     map[string]struct{}
	MaxSequence int
}

func (s OpenOpsSet) Contains(normalizedOrderNo string) bool {
	_, ok := s.Numbers[normalizedOrderNo]
	return ok
}

func SaveOpenOpsDocument(ctx context.Context, fileName string, opsNumbers []string, maxSequence int) (*OpenOpsDocument, error) {
	opsJSON, err := json.Marshal(opsNumbers)
	if err != nil {
		return nil, err
	}
	doc := OpenOpsDocument{
		FileName:    fileName,
		OpsJSON:     opsJSON,
		OpsCount:    len(opsNumbers),
		MaxSequence: maxSequence,
	}
	if err := utils.ValidateStruct(doc); err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)
	// Wholesale replace: the latest document is the only one consulted,
	// older rows are kept as upload history.
	if err := db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// LatestOpenOpsDocument returns the most recent upload, or nil when no
// document has ever been uploaded.
func LatestOpenOpsDocument(ctx context.Context) (*OpenOpsDocument, error) {
	var doc OpenOpsDocument
	err := config.GetDB().WithContext(ctx).Order("id desc").Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (d *OpenOpsDocument) ToSet() (OpenOpsSet, error) {
	var numbers []string
	if len(d.OpsJSON) > 0 {
		if err := json.Unmarshal(d.OpsJSON, &numbers); err != nil {
			return OpenOpsSet{}, err
		}
	}
	set := OpenOpsSet{
		Numbers:     make(map[string]struct{}, len(numbers)),
		MaxSequence: d.MaxSequence,
	}
	for _, n := range numbers {
		set.Numbers[n] = struct{}{}
	}
	return set, nil
}

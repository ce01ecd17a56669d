// Package models contains domain types for the settings generator.
package models

import (
	"fmt"
	"time"
)

// Slot is one of the two fixed upload targets.
type Slot string

const (
	SlotCovariates Slot = "covariates"
	SlotData       Slot = "data"
)

// Slots lists every slot in display order.
func Slots() []Slot {
	return []Slot{SlotCovariates, SlotData}
}

// ParseSlot converts a path parameter into a Slot.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotCovariates, SlotData:
		return Slot(s), nil
	}
	return "", fmt.Errorf("unknown slot: %q", s)
}

// ExpectedFileName is the exact filename a selection must carry for this slot.
func (s Slot) ExpectedFileName() string {
	switch s {
	case SlotCovariates:
		return "covariates.csv"
	case SlotData:
		return "data.csv"
	}
	return ""
}

// Section is the configuration section the slot's schema is written to.
func (s Slot) Section() Section {
	if s == SlotCovariates {
		return SectionCovariates
	}
	return SectionDependents
}

// UploadedFile is a validated handle to a selected file. Content lives in the
// upload store under FileID and is only read when the slot is parsed.
type UploadedFile struct {
	Slot       Slot      `json:"slot"`
	Name       string    `json:"name"`
	MediaType  string    `json:"mediaType"`
	FileID     string    `json:"fileId,omitempty"`
	Size       int64     `json:"size"`
	SelectedAt time.Time `json:"selectedAt"`
}

// Package duedate computes filing due dates from a company's anchor date.
package duedate

import (
	"fmt"
	"time"

	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
)

// DueDate returns anchor + def.DaysFromAnchor calendar days. Only the date
// component of anchor is used; the result is midnight UTC of the due day.
func DueDate(def *models.DocumentDefinition, anchor *time.Time) (time.Time, error) {
	if def == nil {
		return time.Time{}, fmt.Errorf("%w: nil definition", e.ErrInvalidInput)
	}
	if anchor == nil || anchor.IsZero() {
		return time.Time{}, fmt.Errorf("%w: anchor date not set", e.ErrInvalidInput)
	}
	y, m, d := anchor.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, def.DaysFromAnchor), nil
}

// Annotate returns the due date or nil when it cannot be computed.
func Annotate(def *models.DocumentDefinition, anchor *time.Time) *time.Time {
	due, err := DueDate(def, anchor)
	if err != nil {
		return nil
	}
	return &due
}

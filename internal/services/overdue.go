package services

import (
	"math"
	"time"

	"github.com/yukikurage/community-workspace-api/internal/models"
)

// IsOverdue is evaluated at read time and never consults the persisted vencido
// status: an item is overdue when its due date has passed and it is neither
// completed nor cancelled.
func IsOverdue(due *time.Time, status models.TrackStatus, now time.Time) bool {
	if due == nil || status.Terminal() {
		return false
	}
	return due.Before(now)
}

// DaysUntilDue rounds up to whole days; negative values are days past due
func DaysUntilDue(due *time.Time, now time.Time) *int {
	if due == nil {
		return nil
	}
	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	return &days
}

package pipeline

import (
	"fmt"
	"time"

	"github.com/reviewloop/solicitor/internal/spapi"
)

// ComputeWindow derives the eligibility window from now: orders created
// between (now - maxEligibleDays) and (now - minOrderAgeDays) are
// candidates. Requires 0 < minOrderAgeDays < maxEligibleDays.
func ComputeWindow(now time.Time, minOrderAgeDays, maxEligibleDays int) (spapi.Window, error) {
	if minOrderAgeDays <= 0 {
		return spapi.Window{}, fmt.Errorf("minimum order age must be positive, got %d", minOrderAgeDays)
	}
	if maxEligibleDays <= minOrderAgeDays {
		return spapi.Window{}, fmt.Errorf("maximum eligible days (%d) must exceed minimum order age (%d)", maxEligibleDays, minOrderAgeDays)
	}
	return spapi.Window{
		CreatedAfter:  now.AddDate(0, 0, -maxEligibleDays),
		CreatedBefore: now.AddDate(0, 0, -minOrderAgeDays),
	}, nil
}

// Package status projects mention recency onto discrete attention bands for
// reporting. Banding is a pure function of elapsed time.
package status

import (
	"fmt"
	"math"
	"time"

	"ProposalScanner/internal/domain"
)

const day = 24 * time.Hour

// Default bands in ascending threshold order. The first band whose MaxAge is
// greater than or equal to the elapsed duration is selected; Dormant is the
// catch-all. Thresholds are tunable per deployment, not a hard contract.
var (
	JustCreated = domain.StatusBand{Name: "just created", Color: "blue", MaxAge: 28 * day}
	Active      = domain.StatusBand{Name: "active", Color: "green", MaxAge: 4 * 7 * day}
	Cooling     = domain.StatusBand{Name: "cooling", Color: "yellow", MaxAge: 12 * 7 * day}
	Stale       = domain.StatusBand{Name: "stale", Color: "red", MaxAge: 365 * day}
	Dormant     = domain.StatusBand{Name: "dormant", Color: "black", MaxAge: math.MaxInt64}
)

// Bands lists the mention-recency bands in ascending threshold order.
var Bands = []domain.StatusBand{Active, Cooling, Stale, Dormant}

// BandFor selects the band for an elapsed duration since the last relevant
// mention.
func BandFor(elapsed time.Duration) domain.StatusBand {
	for _, band := range Bands {
		if elapsed <= band.MaxAge {
			return band
		}
	}
	return Dormant
}

// For derives the band for a proposal. When the proposal has a subject
// mention the elapsed time since that mention decides; a proposal with no
// mention yet is "just created" while younger than that band's threshold and
// dormant after.
func For(lastSubjectMention *time.Time, createdOn time.Time, now time.Time) domain.StatusBand {
	if lastSubjectMention != nil {
		return BandFor(now.Sub(*lastSubjectMention))
	}

	if !createdOn.IsZero() && now.Sub(createdOn) <= JustCreated.MaxAge {
		return JustCreated
	}
	return Dormant
}

// AgeString renders an elapsed duration as a human age: days under a week,
// weeks under a year, then years and remaining weeks.
func AgeString(elapsed time.Duration) string {
	days := int(elapsed.Hours() / 24)

	if days < 7 {
		return fmt.Sprintf("%d days", days)
	}

	if days < 365 {
		weeks := int(math.Round(float64(days) / 7))
		return fmt.Sprintf("%d weeks", weeks)
	}

	years := days / 365
	weeksRemaining := int(math.Round(math.Mod(float64(days)/7, 52)))
	return fmt.Sprintf("%d years %d weeks", years, weeksRemaining)
}

package domain

import "time"

// StatusBand is a discrete attention label derived from how recently a
// proposal was mentioned. MaxAge is the inclusive upper bound on elapsed
// time for the band to apply; the final catch-all band carries no bound.
type StatusBand struct {
	Name   string
	Color  string
	MaxAge time.Duration
}

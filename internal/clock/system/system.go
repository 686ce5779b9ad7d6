// Package system provides a real clock implementation.
package system

import (
	"time"

	"github.com/JakeFAU/regwatch/internal/dates"
)

// Clock implements crawler.Clock using the wall clock in India Standard Time,
// the zone every scraped notice is dated in.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in IST.
func (Clock) Now() time.Time {
	return time.Now().In(dates.IST)
}

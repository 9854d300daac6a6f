package service

import (
	"time"

	"github.com/GTDGit/gtd_revenue/internal/analytics"
)

// clock fixes "now" and the snapshot date once per run.
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

func (c clock) snapshot() (now, snapshotDate time.Time) {
	now = c.now()
	return now, analytics.SnapshotDate(now, c.loc)
}

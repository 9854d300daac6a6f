package repository

import "time"

// dateParam renders a snapshot date as a plain DATE literal so the session
// time zone cannot shift it to a neighbouring day.
func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}

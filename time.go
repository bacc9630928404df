package accounts

import "time"

// isWithinWindow reports whether t falls inside the trailing window
// ending at now. The login lockout uses it to decide whether the last
// failed attempt is still recent enough to hold the lockout.
func isWithinWindow(now, t time.Time, window time.Duration) bool {
	return t.After(now.Add(-window))
}

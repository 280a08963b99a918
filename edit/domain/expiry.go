package domain

import "time"

// DefaultRetention is how long a record stays retrievable after
// generation. Downloads are deliberately short-lived for privacy.
const DefaultRetention = 24 * time.Hour

// Expired reports whether a record created at createdAt has outlived
// maxAge as of now. Expiry is logical: callers treat expired records as
// absent whether or not the bytes were physically reclaimed.
func Expired(createdAt, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultRetention
	}
	return now.Sub(createdAt) > maxAge
}

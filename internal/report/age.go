package report

import (
	"fmt"
	"time"
)

type Bucket uint8

const (
	BucketJustNow Bucket = iota
	BucketMinutes
	BucketHours
	BucketDays
	BucketMonths
	BucketYears
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	daysPerMonth     = 30
	daysPerYear      = 365
)

// Classify buckets the time elapsed between commitTime (Unix seconds) and now.
// Every bucket excludes its lower bound and all divisions truncate, so exactly
// 30 days old is still 30 days, and anything under a minute (or in the future)
// is BucketJustNow.
func Classify(now time.Time, commitTime int64) (Bucket, int64) {
	elapsed := now.Unix() - commitTime
	days := elapsed / secondsPerDay
	switch {
	case days > daysPerYear:
		return BucketYears, days / daysPerYear
	case days > daysPerMonth:
		return BucketMonths, days / daysPerMonth
	case days > 0:
		return BucketDays, days
	}
	if hours := elapsed / secondsPerHour; hours > 0 {
		return BucketHours, hours
	}
	if minutes := elapsed / secondsPerMinute; minutes > 0 {
		return BucketMinutes, minutes
	}
	return BucketJustNow, 0
}

// Age renders the relative age phrase, e.g. "3 days ago" or "just now".
func Age(now time.Time, commitTime int64) string {
	bucket, n := Classify(now, commitTime)
	switch bucket {
	case BucketYears:
		return fmt.Sprintf("%d years ago", n)
	case BucketMonths:
		return fmt.Sprintf("%d months ago", n)
	case BucketDays:
		return fmt.Sprintf("%d days ago", n)
	case BucketHours:
		return fmt.Sprintf("%d hours ago", n)
	case BucketMinutes:
		return fmt.Sprintf("%d minutes ago", n)
	default:
		return "just now"
	}
}

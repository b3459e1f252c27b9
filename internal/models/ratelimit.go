package models

import "time"

// RatePolicy - параметры fixed-window лимита для класса маршрутов.
type RatePolicy struct {
	Name   string
	Window time.Duration
	Max    int
}

// RateDecision is the outcome of a single rate-limit check.
type RateDecision struct {
	Allowed bool
	Burst   bool // rejected by the sub-window burst heuristic, not by quota
	// ResetAfter - время до конца текущего окна.
	ResetAfter time.Duration
}

// RetryAfterSeconds rounds the window remainder up to whole seconds
// for the Retry-After header.
func (d *RateDecision) RetryAfterSeconds() int64 {
	secs := int64((d.ResetAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

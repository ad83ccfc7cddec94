// Package mastery holds the per-user, per-question streak rules.
package mastery

import "time"

// Threshold is the number of consecutive correct answers that marks a question mastered.
const Threshold = 3

// State is the streak of one user on one question.
type State struct {
	ConsecutiveCorrect int
	Mastered           bool
	MasteredAt         *time.Time
	LastAttemptAt      time.Time
}

// Apply returns the state after one more answer.
// MasteredAt is stamped only on the answer that crosses the threshold.
func Apply(prev State, correct bool, now time.Time) State {
	next := State{LastAttemptAt: now}
	if !correct {
		return next
	}
	next.ConsecutiveCorrect = prev.ConsecutiveCorrect + 1
	next.Mastered = next.ConsecutiveCorrect >= Threshold
	if next.Mastered {
		if prev.Mastered && prev.MasteredAt != nil {
			next.MasteredAt = prev.MasteredAt
		} else {
			stamp := now
			next.MasteredAt = &stamp
		}
	}
	return next
}

// Reset zeroes the streak regardless of history.
func Reset(now time.Time) State {
	return State{LastAttemptAt: now}
}

// Progress is the review-list view of a streak.
type Progress struct {
	ConsecutiveCorrect int `json:"consecutive_correct"`
	Required           int `json:"required"`
}

func ProgressOf(streak int) Progress {
	return Progress{ConsecutiveCorrect: streak, Required: Threshold}
}

// Package sm2 implements the SM-2 spaced repetition schedule.
package sm2

import (
	"math"
	"time"
)

const (
	MinQuality = 0
	MaxQuality = 5

	// PassQuality is the lowest quality that keeps a repetition streak alive.
	PassQuality = 3
)

// Params holds the constants of the schedule.
type Params struct {
	MinEaseFactor  float64 // floor for the ease factor
	FirstInterval  int     // days after the first successful review
	SecondInterval int     // days after the second consecutive success
	LapseInterval  int     // days after a failed review
}

// DefaultParams returns the classic SM-2 constants.
func DefaultParams() *Params {
	return &Params{
		MinEaseFactor:  1.3,
		FirstInterval:  1,
		SecondInterval: 6,
		LapseInterval:  1,
	}
}

// State is the scheduling state of a card as stored.
type State struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
}

// Result is the scheduling state after a review.
type Result struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
	NextReview  time.Time
}

// Compute schedules a review using DefaultParams.
func Compute(quality int, easeFactor float64, interval, repetitions int, now time.Time) Result {
	return DefaultParams().Next(quality, State{
		EaseFactor:  easeFactor,
		Interval:    interval,
		Repetitions: repetitions,
	}, now)
}

// Next computes the state that follows a review of the given quality at now.
//
// Quality is clamped to [MinQuality, MaxQuality] first, so an out-of-range
// rating behaves like the nearest valid one instead of swinging the ease
// factor without bound. Growth on the third and later successes multiplies
// the incoming interval by the incoming ease factor, rounding half away from
// zero. The ease factor is updated on every review and never drops below
// MinEaseFactor.
func (p *Params) Next(quality int, s State, now time.Time) Result {
	q := ClampQuality(quality)
	interval := max(s.Interval, 0)
	repetitions := max(s.Repetitions, 0)

	var next Result
	if q < PassQuality {
		next.Repetitions = 0
		next.Interval = p.LapseInterval
	} else {
		switch repetitions {
		case 0:
			next.Interval = p.FirstInterval
		case 1:
			next.Interval = p.SecondInterval
		default:
			next.Interval = int(math.Round(float64(interval) * s.EaseFactor))
		}
		next.Repetitions = repetitions + 1
	}

	next.EaseFactor = p.nextEaseFactor(s.EaseFactor, q)
	next.NextReview = now.AddDate(0, 0, next.Interval)
	return next
}

// nextEaseFactor applies EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)).
func (p *Params) nextEaseFactor(ef float64, q int) float64 {
	gap := float64(MaxQuality - q)
	ef += 0.1 - gap*(0.08+gap*0.02)
	if ef < p.MinEaseFactor {
		ef = p.MinEaseFactor
	}
	return ef
}

// ClampQuality limits q to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	return min(max(q, MinQuality), MaxQuality)
}

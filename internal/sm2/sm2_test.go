package sm2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 11, 28, 10, 30, 0, 0, time.UTC)

func TestComputeFailureResetsStreak(t *testing.T) {
	for q := 0; q < PassQuality; q++ {
		res := Compute(q, 2.5, 15, 4, now)
		assert.Equal(t, 0, res.Repetitions, "quality %d", q)
		assert.Equal(t, 1, res.Interval, "quality %d", q)
		assert.Equal(t, now.AddDate(0, 0, 1), res.NextReview, "quality %d", q)
	}
}

func TestComputeFirstTwoPasses(t *testing.T) {
	first := Compute(4, 2.5, 0, 0, now)
	assert.Equal(t, 1, first.Interval)
	assert.Equal(t, 1, first.Repetitions)

	second := Compute(4, first.EaseFactor, first.Interval, first.Repetitions, now)
	assert.Equal(t, 6, second.Interval)
	assert.Equal(t, 2, second.Repetitions)
}

func TestComputeExponentialGrowth(t *testing.T) {
	res := Compute(4, 2.5, 6, 2, now)
	assert.Equal(t, 15, res.Interval)
	assert.Equal(t, 3, res.Repetitions)
	assert.InDelta(t, 2.5, res.EaseFactor, 1e-9)
}

func TestComputeMasteredCardPerfectRecall(t *testing.T) {
	res := Compute(5, 2.5, 4, 5, now)

	assert.Greater(t, res.EaseFactor, 2.5)
	assert.InDelta(t, 2.6, res.EaseFactor, 1e-9)
	assert.Equal(t, 10, res.Interval)
	assert.Equal(t, 6, res.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 10), res.NextReview)
}

func TestComputeUsesIncomingEaseForGrowth(t *testing.T) {
	// 3 * 2.5 = 7.5 rounds half away from zero; the lowered ease (2.36) must
	// not be used for the multiplication.
	res := Compute(3, 2.5, 3, 3, now)
	assert.Equal(t, 8, res.Interval)
	assert.InDelta(t, 2.36, res.EaseFactor, 1e-9)
}

func TestEaseFactorAdjustments(t *testing.T) {
	testCases := []struct {
		quality  int
		expected float64
	}{
		{5, 2.6},
		{4, 2.5},
		{3, 2.36},
		{2, 2.18},
		{1, 1.96},
		{0, 1.7},
	}

	for _, tc := range testCases {
		res := Compute(tc.quality, 2.5, 6, 2, now)
		assert.InDelta(t, tc.expected, res.EaseFactor, 1e-9, "quality %d", tc.quality)
	}
}

func TestEaseFactorFloor(t *testing.T) {
	for q := MinQuality; q <= MaxQuality; q++ {
		for _, ef := range []float64{1.3, 1.35, 1.5, 2.5} {
			res := Compute(q, ef, 10, 3, now)
			assert.GreaterOrEqual(t, res.EaseFactor, 1.3, "quality %d ease %.2f", q, ef)
		}
	}

	ef := 2.5
	for i := 0; i < 10; i++ {
		ef = Compute(0, ef, 1, 0, now).EaseFactor
	}
	assert.Equal(t, 1.3, ef)
}

func TestQualityIsClamped(t *testing.T) {
	assert.Equal(t, Compute(5, 2.5, 6, 2, now), Compute(11, 2.5, 6, 2, now))
	assert.Equal(t, Compute(0, 2.5, 6, 2, now), Compute(-4, 2.5, 6, 2, now))
}

func TestNextReviewNeverInThePast(t *testing.T) {
	res := Compute(4, 2.5, -3, -1, now)
	assert.False(t, res.NextReview.Before(now))
	assert.GreaterOrEqual(t, res.Interval, 0)
}

func TestNextReviewUsesCalendarDays(t *testing.T) {
	// Crossing a DST change in a zone with one keeps the wall clock time.
	loc, err := time.LoadLocation("Europe/Dublin")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	before := time.Date(2024, 3, 30, 9, 0, 0, 0, loc)
	res := Compute(4, 2.5, 0, 0, before)
	assert.Equal(t, 9, res.NextReview.Hour())
	assert.Equal(t, 31, res.NextReview.Day())
}

package spaced_repetition

import (
	"math"
	"time"
)

const (
	// MinMastery and MaxMastery bound every stored mastery level
	MinMastery = 0.0
	MaxMastery = 100.0
)

// MasteryModel maps session results to mastery levels and review intervals.
// Intervals are a step function: BaseInterval * (1 + floor(mastery / TierWidth)).
type MasteryModel struct {
	// Base interval between reviews
	BaseInterval time.Duration
	// Width of one mastery tier
	TierWidth float64
}

// NewMasteryModel returns the model with default settings: 24h base, 20-point tiers
func NewMasteryModel() *MasteryModel {
	return &MasteryModel{
		BaseInterval: 24 * time.Hour,
		TierWidth:    20,
	}
}

// Accuracy is the percentage of graded answers that were correct.
// A session with no graded answers has accuracy 0.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Clamp bounds a mastery level to [MinMastery, MaxMastery]
func Clamp(mastery float64) float64 {
	if math.IsNaN(mastery) {
		return MinMastery
	}
	return math.Max(MinMastery, math.Min(MaxMastery, mastery))
}

// Blend averages the previous mastery with a new session's accuracy.
// History and the current session weigh the same regardless of review count.
func (m *MasteryModel) Blend(previous, accuracy float64) float64 {
	return Clamp((previous + accuracy) / 2)
}

// Tier returns the review tier of a mastery level, 0 through 5
func (m *MasteryModel) Tier(mastery float64) int {
	return int(math.Floor(Clamp(mastery) / m.TierWidth))
}

// Interval returns the delay until the next review for a mastery level
func (m *MasteryModel) Interval(mastery float64) time.Duration {
	return m.BaseInterval * time.Duration(1+m.Tier(mastery))
}

// NextReviewDate schedules the next review relative to now
func (m *MasteryModel) NextReviewDate(now time.Time, mastery float64) time.Time {
	return now.Add(m.Interval(mastery))
}

// IsMastered reports whether a word counts as mastered
func (m *MasteryModel) IsMastered(mastery float64) bool {
	return m.Tier(mastery) >= 4
}

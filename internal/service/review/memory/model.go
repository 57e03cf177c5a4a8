// Package memory implements the analytic memory-decay model: retrievability
// from stability and elapsed time, and the stability/difficulty update rules
// applied after each rating. All functions are pure.
package memory

import (
	"fmt"
	"math"

	"github.com/heartmarshall/mykorean-backend/internal/domain"
)

// DecayFactor and DecayExponent define the forgetting curve
//
//	R(S, t) = (1 + DecayFactor * t / S) ^ DecayExponent
//
// The factor is chosen so that R(S, S) equals the default desired retention
// of 0.9: (1 + 19/81)^(-0.5) = (81/100)^(0.5) = 0.9.
const (
	DecayFactor   = 19.0 / 81.0
	DecayExponent = -0.5
)

// MinStability is the floor for stability values. Keeping stability strictly
// positive guarantees Retrievability never divides by zero.
const MinStability = 0.1

// NeutralDifficulty is the mean-reversion target for difficulty updates.
const NeutralDifficulty = 5.0

// Weights holds the tunable constants of the update rules.
type Weights struct {
	// RecallGrowth sets the base growth rate after a successful recall
	// (applied as exp(RecallGrowth)).
	RecallGrowth float64
	// RecallSaturation dampens growth as stability rises (S^-RecallSaturation).
	RecallSaturation float64
	// RecallDecayBonus scales the extra boost earned by recalling an item
	// after more decay (the testing effect).
	RecallDecayBonus float64
	// RecallFloor keeps a small positive boost even at retrievability 1,
	// so an immediate re-review is never a no-op.
	RecallFloor float64
	// HardPenalty multiplies the recall growth for a Hard rating.
	HardPenalty float64

	// ForgetScale, ForgetDifficulty, ForgetSpread and ForgetDecayBonus
	// shape the post-lapse stability.
	ForgetScale      float64
	ForgetDifficulty float64
	ForgetSpread     float64
	ForgetDecayBonus float64
	// LapseCap bounds post-lapse stability to S / exp(LapseCap), so a lapse
	// always shrinks stability regardless of the other terms.
	LapseCap float64

	// Per-rating difficulty deltas, applied with mean reversion toward
	// NeutralDifficulty.
	DifficultyAgain float64
	DifficultyHard  float64
	DifficultyGood  float64
	MeanReversion   float64
}

// DefaultWeights returns the stock parameter set. Any internally consistent
// set keeps the update-rule monotonicity; these values were tuned by hand
// against the default forgetting curve.
func DefaultWeights() Weights {
	return Weights{
		RecallGrowth:     1.2,
		RecallSaturation: 0.2,
		RecallDecayBonus: 1.5,
		RecallFloor:      0.05,
		HardPenalty:      0.3,

		ForgetScale:      1.8,
		ForgetDifficulty: 0.3,
		ForgetSpread:     0.25,
		ForgetDecayBonus: 0.3,
		LapseCap:         0.25,

		DifficultyAgain: 1.0,
		DifficultyHard:  0.3,
		DifficultyGood:  -0.25,
		MeanReversion:   0.06,
	}
}

// Validate checks that the weights are finite and preserve the model's
// ordering guarantees (Again shrinks, Good outgrows Hard).
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"recall_growth":     w.RecallGrowth,
		"recall_saturation": w.RecallSaturation,
		"recall_decay_bonus": w.RecallDecayBonus,
		"recall_floor":      w.RecallFloor,
		"hard_penalty":      w.HardPenalty,
		"forget_scale":      w.ForgetScale,
		"forget_difficulty": w.ForgetDifficulty,
		"forget_spread":     w.ForgetSpread,
		"forget_decay_bonus": w.ForgetDecayBonus,
		"lapse_cap":         w.LapseCap,
		"difficulty_again":  w.DifficultyAgain,
		"difficulty_hard":   w.DifficultyHard,
		"difficulty_good":   w.DifficultyGood,
		"mean_reversion":    w.MeanReversion,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s is invalid: %v", name, v)
		}
	}
	if w.RecallFloor < 0 {
		return fmt.Errorf("recall_floor must be >= 0")
	}
	if w.HardPenalty <= 0 || w.HardPenalty >= 1 {
		return fmt.Errorf("hard_penalty must be in (0, 1)")
	}
	if w.LapseCap <= 0 {
		return fmt.Errorf("lapse_cap must be positive")
	}
	if w.MeanReversion < 0 || w.MeanReversion >= 1 {
		return fmt.Errorf("mean_reversion must be in [0, 1)")
	}
	if w.DifficultyAgain <= 0 || w.DifficultyHard <= 0 || w.DifficultyGood >= 0 {
		return fmt.Errorf("difficulty deltas must raise on Again/Hard and lower on Good")
	}
	return nil
}

// Retrievability calculates the probability of recall after elapsedDays.
// Fails fast instead of extrapolating: negative elapsed time and
// non-positive stability are both invalid states.
func Retrievability(stability, elapsedDays float64) (float64, error) {
	if stability <= 0 {
		return 0, fmt.Errorf("%w: stability %v must be positive", domain.ErrInvalidState, stability)
	}
	if elapsedDays < 0 {
		return 0, fmt.Errorf("%w: elapsed days %v must be non-negative", domain.ErrInvalidState, elapsedDays)
	}
	return math.Pow(1+DecayFactor*elapsedDays/stability, DecayExponent), nil
}

// NextStability dispatches to the recall or forget update.
// r is the retrievability at review time.
func NextStability(w Weights, s, d, r float64, rating domain.ReviewRating) float64 {
	if rating == domain.ReviewRatingAgain {
		return stabilityAfterForgetting(w, s, d, r)
	}
	return stabilityAfterRecall(w, s, d, r, rating)
}

// stabilityAfterRecall grows stability after Hard or Good. The boost
// saturates with stability, rises with difficulty (harder items earn more
// from a successful recall) and with the amount of decay at review time.
//
//	S' = S * (1 + e^RecallGrowth * (1 + (D-1)/9) * S^(-RecallSaturation)
//	            * (e^(RecallDecayBonus*(1-R)) - 1 + RecallFloor) * penalty)
func stabilityAfterRecall(w Weights, s, d, r float64, rating domain.ReviewRating) float64 {
	penalty := 1.0
	if rating == domain.ReviewRatingHard {
		penalty = w.HardPenalty
	}
	growth := math.Exp(w.RecallGrowth) *
		(1 + (d-1)/9) *
		math.Pow(s, -w.RecallSaturation) *
		(math.Exp(w.RecallDecayBonus*(1-r)) - 1 + w.RecallFloor) *
		penalty
	return ClampStability(s * (1 + growth))
}

// stabilityAfterForgetting rebuilds stability after a lapse, capped at
// S / exp(LapseCap) so it always lands strictly below the pre-lapse value.
//
//	S' = min(ForgetScale * D^(-ForgetDifficulty) * ((S+1)^ForgetSpread - 1)
//	            * e^(ForgetDecayBonus*(1-R)),
//	         S / e^LapseCap)
func stabilityAfterForgetting(w Weights, s, d, r float64) float64 {
	rebuilt := w.ForgetScale *
		math.Pow(d, -w.ForgetDifficulty) *
		(math.Pow(s+1, w.ForgetSpread) - 1) *
		math.Exp(w.ForgetDecayBonus*(1-r))
	capped := s / math.Exp(w.LapseCap)
	return ClampStability(math.Min(rebuilt, capped))
}

// NextDifficulty applies the per-rating delta with mean reversion toward
// NeutralDifficulty, clamped to [1, 10].
func NextDifficulty(w Weights, d float64, rating domain.ReviewRating) float64 {
	var delta float64
	switch rating {
	case domain.ReviewRatingAgain:
		delta = w.DifficultyAgain
	case domain.ReviewRatingHard:
		delta = w.DifficultyHard
	case domain.ReviewRatingGood:
		delta = w.DifficultyGood
	}
	next := w.MeanReversion*NeutralDifficulty + (1-w.MeanReversion)*(d+delta)
	return ClampDifficulty(next)
}

// FirstExposure maps a first-exposure rating to the initial memory state.
// No retrievability is involved: elapsed time is undefined before the first
// rating.
func FirstExposure(rating domain.FirstRating) (stability, difficulty float64, intervalDays int, err error) {
	switch rating {
	case domain.FirstRatingEasy:
		return 7, 3, 7, nil
	case domain.FirstRatingMedium:
		return 3, 5, 3, nil
	case domain.FirstRatingHard:
		return 1, 7, 1, nil
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q is not a first-exposure rating", domain.ErrInvalidRating, rating)
	}
}

// IntervalDays converts stability to the next review interval in whole days,
// never below one day.
func IntervalDays(stability float64) int {
	d := int(math.Round(stability))
	if d < 1 {
		return 1
	}
	return d
}

// ClampStability constrains stability to [MinStability, +inf).
func ClampStability(s float64) float64 {
	return math.Max(s, MinStability)
}

// ClampDifficulty constrains difficulty to [1, 10].
func ClampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

package rules

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Rules are the business constants used by the scheduling engine.
type Rules struct {
	// HoursPerDay converts phase hours into working days.
	HoursPerDay int `json:"hours_per_day" yaml:"hours_per_day"`
	// MaterialLeadDays is the number of business days between ordering
	// material and starting millwork.
	MaterialLeadDays int `json:"material_lead_days" yaml:"material_lead_days"`
	// StainLacquerGapDays separates the lacquer day from install.
	StainLacquerGapDays int `json:"stain_lacquer_gap_days" yaml:"stain_lacquer_gap_days"`
	// MillingFillersGapDays separates milling fillers from stain start.
	MillingFillersGapDays int `json:"milling_fillers_gap_days" yaml:"milling_fillers_gap_days"`
	// BoxToekickGapDays separates toekick assembly from milling fillers.
	BoxToekickGapDays int `json:"box_toekick_gap_days" yaml:"box_toekick_gap_days"`
	// PerJobShare caps one project's share of a phase's daily capacity.
	PerJobShare float64 `json:"per_job_share" yaml:"per_job_share"`
	// PersonalDailyCap is the most hour blocks one worker takes per day
	// during auto-fill.
	PersonalDailyCap int `json:"personal_daily_cap" yaml:"personal_daily_cap"`
	// FirstHourBlock and LastHourBlock bound the bookable hour blocks
	// (inclusive, 24h clock).
	FirstHourBlock int `json:"first_hour_block" yaml:"first_hour_block"`
	LastHourBlock  int `json:"last_hour_block" yaml:"last_hour_block"`
	// ConfirmThresholdDays is the largest install move in calendar days that
	// does not need explicit confirmation.
	ConfirmThresholdDays int `json:"confirm_threshold_days" yaml:"confirm_threshold_days"`
	// RecomputeDebounceMS and DragRecomputeDebounceMS delay phase
	// recomputation after ordinary and drag-driven changes.
	RecomputeDebounceMS     int `json:"recompute_debounce_ms" yaml:"recompute_debounce_ms"`
	DragRecomputeDebounceMS int `json:"drag_recompute_debounce_ms" yaml:"drag_recompute_debounce_ms"`
}

// Default returns the production constants.
func Default() Rules {
	return Rules{
		HoursPerDay:             8,
		MaterialLeadDays:        10,
		StainLacquerGapDays:     1,
		MillingFillersGapDays:   1,
		BoxToekickGapDays:       1,
		PerJobShare:             0.5,
		PersonalDailyCap:        9,
		FirstHourBlock:          8,
		LastHourBlock:           16,
		ConfirmThresholdDays:    7,
		RecomputeDebounceMS:     300,
		DragRecomputeDebounceMS: 1000,
	}
}

// SetDefaults fills zero fields with the production constants.
func (r *Rules) SetDefaults() {
	d := Default()
	if r.HoursPerDay == 0 {
		r.HoursPerDay = d.HoursPerDay
	}
	if r.MaterialLeadDays == 0 {
		r.MaterialLeadDays = d.MaterialLeadDays
	}
	if r.StainLacquerGapDays == 0 {
		r.StainLacquerGapDays = d.StainLacquerGapDays
	}
	if r.MillingFillersGapDays == 0 {
		r.MillingFillersGapDays = d.MillingFillersGapDays
	}
	if r.BoxToekickGapDays == 0 {
		r.BoxToekickGapDays = d.BoxToekickGapDays
	}
	if r.PerJobShare == 0 {
		r.PerJobShare = d.PerJobShare
	}
	if r.PersonalDailyCap == 0 {
		r.PersonalDailyCap = d.PersonalDailyCap
	}
	if r.FirstHourBlock == 0 {
		r.FirstHourBlock = d.FirstHourBlock
	}
	if r.LastHourBlock == 0 {
		r.LastHourBlock = d.LastHourBlock
	}
	if r.ConfirmThresholdDays == 0 {
		r.ConfirmThresholdDays = d.ConfirmThresholdDays
	}
	if r.RecomputeDebounceMS == 0 {
		r.RecomputeDebounceMS = d.RecomputeDebounceMS
	}
	if r.DragRecomputeDebounceMS == 0 {
		r.DragRecomputeDebounceMS = d.DragRecomputeDebounceMS
	}
}

// Validate checks the constants are usable.
func (r Rules) Validate() error {
	if r.HoursPerDay <= 0 {
		return errors.New("hours_per_day must be positive")
	}
	if r.MaterialLeadDays < 0 || r.StainLacquerGapDays < 0 || r.MillingFillersGapDays < 0 || r.BoxToekickGapDays < 0 {
		return errors.New("day gaps must not be negative")
	}
	if r.PerJobShare <= 0 || r.PerJobShare > 1 {
		return fmt.Errorf("per_job_share must be in (0,1], got %v", r.PerJobShare)
	}
	if r.PersonalDailyCap <= 0 {
		return errors.New("personal_daily_cap must be positive")
	}
	if r.FirstHourBlock < 0 || r.LastHourBlock > 23 || r.FirstHourBlock > r.LastHourBlock {
		return fmt.Errorf("invalid hour block range %d..%d", r.FirstHourBlock, r.LastHourBlock)
	}
	if r.ConfirmThresholdDays < 0 {
		return errors.New("confirm_threshold_days must not be negative")
	}
	return nil
}

// DurationDays converts hours to working days: ceil(hours/HoursPerDay) with
// a floor of one day so every phase occupies a calendar slot.
func (r Rules) DurationDays(hours int) int {
	per := r.HoursPerDay
	if per <= 0 {
		per = Default().HoursPerDay
	}
	days := (hours + per - 1) / per
	if days < 1 {
		return 1
	}
	return days
}

// PerJobDailyCap is floor(capacity × PerJobShare).
func (r Rules) PerJobDailyCap(capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Floor(float64(capacity) * r.PerJobShare))
}

// HourBlocks lists the bookable hour blocks in ascending order.
func (r Rules) HourBlocks() []int {
	out := make([]int, 0, r.LastHourBlock-r.FirstHourBlock+1)
	for h := r.FirstHourBlock; h <= r.LastHourBlock; h++ {
		out = append(out, h)
	}
	return out
}

// ValidHourBlock reports whether h is bookable.
func (r Rules) ValidHourBlock(h int) bool {
	return h >= r.FirstHourBlock && h <= r.LastHourBlock
}

// RecomputeDebounce is the quiet period before a recompute after an
// ordinary change.
func (r Rules) RecomputeDebounce() time.Duration {
	return time.Duration(r.RecomputeDebounceMS) * time.Millisecond
}

// DragRecomputeDebounce is the quiet period used once a drag ends.
func (r Rules) DragRecomputeDebounce() time.Duration {
	return time.Duration(r.DragRecomputeDebounceMS) * time.Millisecond
}

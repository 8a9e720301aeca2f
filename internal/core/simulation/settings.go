package simulation

import (
	"fmt"
	"math"
	"time"
)

// MaxTicks bounds the length of a generated series. The largest preset,
// 24 hours at 15 seconds, is 5760 ticks.
const MaxTicks = 1 << 20

// Settings controls the length and resolution of a generated series
type Settings struct {
	// TotalDuration is the series length in minutes.
	TotalDuration int `json:"totalDuration" yaml:"totalDuration" mapstructure:"total_duration" msgpack:"totalDuration" validate:"min=1"`
	// Interval is the tick spacing in seconds.
	Interval      int `json:"interval" yaml:"interval" mapstructure:"interval" msgpack:"interval" validate:"min=1"`
}

// DefaultSettings are the settings of a fresh editor session.
func DefaultSettings() Settings {
	return Settings{TotalDuration: 60, Interval: 15}
}

// Validate rejects settings that would produce zero, negative, overflowing or
// oversized tick counts.
func (s Settings) Validate() error {
	if s.TotalDuration <= 0 {
		return fmt.Errorf("%w: total duration must be positive, got %d minutes", ErrInvalidConfiguration, s.TotalDuration)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d seconds", ErrInvalidConfiguration, s.Interval)
	}
	if s.TotalDuration > math.MaxInt/60 {
		return fmt.Errorf("%w: total duration of %d minutes overflows", ErrInvalidConfiguration, s.TotalDuration)
	}
	if ticks := s.TotalTicks(); ticks > MaxTicks {
		return fmt.Errorf("%w: %d ticks exceeds the limit of %d", ErrInvalidConfiguration, ticks, MaxTicks)
	}
	return nil
}

// TotalTicks is ceil(duration in seconds / interval). Settings must be valid.
func (s Settings) TotalTicks() int {
	seconds := s.TotalDuration * 60
	return (seconds-1)/s.Interval + 1
}

// IntervalDuration is the spacing between two ticks.
func (s Settings) IntervalDuration() time.Duration {
	return time.Duration(s.Interval) * time.Second
}

// Option is a labelled preset value offered by settings pickers.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// DurationOptions are the preset total durations, in minutes.
var DurationOptions = []Option{
	{15, "15 minutes"},
	{30, "30 minutes"},
	{60, "60 minutes (1 hour)"},
	{120, "120 minutes (2 hours)"},
	{240, "240 minutes (4 hours)"},
	{480, "480 minutes (8 hours)"},
	{720, "720 minutes (12 hours)"},
	{1440, "1440 minutes (24 hours)"},
}

// IntervalOptions are the preset tick intervals, in seconds.
var IntervalOptions = []Option{
	{15, "15 seconds"},
	{30, "30 seconds"},
	{60, "1 minute"},
	{300, "5 minutes"},
	{600, "10 minutes"},
}

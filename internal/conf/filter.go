package conf

import (
	"fmt"
	"regexp"
)

// FilterSpec is one entry in the configured filter chain. Exactly one of
// Capture or RateLimit must be set, matching the teacher's one-key-per-list-
// entry style for naming a variant (see forward.go's rule list).
type FilterSpec struct {
	Capture   *CaptureSpec   `yaml:"capture,omitempty"`
	RateLimit *RateLimitSpec `yaml:"rateLimit,omitempty"`
}

// CaptureSpec configures the Capture filter. Exactly one of Prefix, Suffix,
// or Regex must be set.
type CaptureSpec struct {
	MetadataKey string `yaml:"metadataKey,omitempty"`

	Prefix *SizeSpec  `yaml:"prefix,omitempty"`
	Suffix *SizeSpec  `yaml:"suffix,omitempty"`
	Regex  *RegexSpec `yaml:"regex,omitempty"`
}

// SizeSpec configures a Prefix or Suffix capture strategy.
type SizeSpec struct {
	Size   uint32 `yaml:"size"`
	Remove bool   `yaml:"remove"`
}

// RegexSpec configures a Regex capture strategy.
type RegexSpec struct {
	Pattern string `yaml:"pattern"`

	Compiled *regexp.Regexp `yaml:"-"`
}

// RateLimitSpec configures the RateLimit filter.
type RateLimitSpec struct {
	AveragePerSecond float64 `yaml:"averagePerSecond"`
	Burst            int     `yaml:"burst"`
	MetadataKey      string  `yaml:"metadataKey,omitempty"`
}

func (f *FilterSpec) setDefaults() {}

func (f *FilterSpec) validate() error {
	set := 0
	if f.Capture != nil {
		set++
	}
	if f.RateLimit != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of capture or rateLimit must be set, got %d", set)
	}

	if f.Capture != nil {
		return f.Capture.validate()
	}
	return f.RateLimit.validate()
}

func (c *CaptureSpec) validate() error {
	set := 0
	if c.Prefix != nil {
		set++
	}
	if c.Suffix != nil {
		set++
	}
	if c.Regex != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("capture: exactly one of prefix, suffix, or regex must be set, got %d", set)
	}

	if c.Regex != nil {
		compiled, err := regexp.Compile(c.Regex.Pattern)
		if err != nil {
			return fmt.Errorf("capture.regex.pattern: %w", err)
		}
		c.Regex.Compiled = compiled
	}
	return nil
}

func (r *RateLimitSpec) validate() error {
	if r.AveragePerSecond <= 0 {
		return fmt.Errorf("rateLimit.averagePerSecond must be positive")
	}
	if r.Burst <= 0 {
		return fmt.Errorf("rateLimit.burst must be positive")
	}
	return nil
}

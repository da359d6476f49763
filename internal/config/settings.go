package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Setting keys consumed from the host configuration store.
const (
	KeyDefaultFormat     = "default_format"
	KeyAllowFormatSwitch = "allow_format_switch"
	KeyAutoDetect        = "auto_detect_markdown"
	// KeyAutoConvert is the legacy spelling of the auto-detect toggle; the
	// two keys are OR'd so upgraded installs keep their behavior.
	KeyAutoConvert         = "auto_convert_to_markdown"
	KeyAutoDetectThreshold = "auto_detect_threshold"
)

const defaultThreshold = 5

// Settings is the plugin's effective configuration, resolved from the host
// store with defaults applied.
type Settings struct {
	DefaultFormat     string
	AllowFormatSwitch bool
	AutoDetect        bool
	Threshold         int
}

// LoadSettings reads every plugin setting from the store. Missing or
// malformed values resolve to defaults; only store failures are errors.
func LoadSettings(ctx context.Context, store Store) (Settings, error) {
	s := Settings{}

	var err error
	if s.DefaultFormat, err = store.Get(ctx, KeyDefaultFormat, "html"); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	allow, err := store.Get(ctx, KeyAllowFormatSwitch, "true")
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	s.AllowFormatSwitch = parseBool(allow)

	auto, err := store.Get(ctx, KeyAutoDetect, "false")
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	legacy, err := store.Get(ctx, KeyAutoConvert, "false")
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	s.AutoDetect = parseBool(auto) || parseBool(legacy)

	threshold, err := store.Get(ctx, KeyAutoDetectThreshold, strconv.Itoa(defaultThreshold))
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	s.Threshold = parseThreshold(threshold)

	return s, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseThreshold(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return defaultThreshold
	}
	return n
}

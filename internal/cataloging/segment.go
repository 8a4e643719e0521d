package cataloging

import (
	"strings"

	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
)

// Tiers are the three levels of catalog text produced for a lot
type Tiers struct {
	BaseCaption         string
	RefinedText         string
	EnhancedDescription string
}

// Segment takes the first three non-blank lines of text as caption, refined
// text and enhanced description. Missing tiers get their placeholder; extra
// lines are dropped.
func Segment(text string, p config.Placeholders) Tiers {
	lines := make([]string, 0, 3)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 {
			break
		}
	}

	tiers := Tiers{
		BaseCaption:         p.Caption,
		RefinedText:         p.Refined,
		EnhancedDescription: p.Enhanced,
	}
	if len(lines) > 0 {
		tiers.BaseCaption = lines[0]
	}
	if len(lines) > 1 {
		tiers.RefinedText = lines[1]
	}
	if len(lines) > 2 {
		tiers.EnhancedDescription = lines[2]
	}
	return tiers
}

// failedTiers sets every tier to the failure placeholder
func failedTiers(p config.Placeholders) Tiers {
	return Tiers{
		BaseCaption:         p.Failure,
		RefinedText:         p.Failure,
		EnhancedDescription: p.Failure,
	}
}

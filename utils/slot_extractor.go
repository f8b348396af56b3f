package utils

import (
	"regexp"

	"github.com/rashedsumon/ai-receptionist/models"
)

const unknownProperty = "unknown"

var (
	timePhrasePattern = regexp.MustCompile(`(?i)\b(\d{1,2}\s?(am|pm)|tomorrow|next \w+|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	propertyPattern   = regexp.MustCompile(`(?i)(property|apartment|flat|unit)\s*(?:ID)?\s*#?\s*(\d+)`)
)

// ExtractSlots pulls the first date/time phrase and property number out of
// a transcript. Both are naive regex matches.
func ExtractSlots(transcript string) models.ExtractedSlots {
	slots := models.ExtractedSlots{PropertyID: unknownProperty}

	if m := timePhrasePattern.FindString(transcript); m != "" {
		slots.ProposedTime = &m
	}
	if m := propertyPattern.FindStringSubmatch(transcript); m != nil {
		slots.PropertyID = m[2]
	}

	return slots
}

package extract

import (
	"regexp"
	"strings"
)

var (
	reDateish   = regexp.MustCompile(`\b\d{2}[/\-.]\d{2}[/\-.]\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	reAmountish = regexp.MustCompile(`(?i)\b\d{1,3}(?:[,.\s]\d{3})+\b|\b\d+[,.]\d{2}\b`)
	reRefish    = regexp.MustCompile(`\b[A-Z0-9]{6,}\b`)
)

// Confidence tiers per field source. Labeled captures beat bare pattern
// hits; machine-readable data beats both.
const (
	confMRZChecked   = 0.95 // MRZ field with matching check digit
	confMRZUnchecked = 0.80 // MRZ field, check digit failed or absent
	confLabeled      = 0.75 // value found behind its printed label
	confPattern      = 0.55 // value found by shape alone
	confDerived      = 0.60 // value computed from other fields
)

// crossConfirmBoost is added when independent sources (MRZ and the visual
// zone) agree on a value.
const crossConfirmBoost = 0.05

// naive heuristic quality score for a whole document's text, used to damp
// field confidences on very poor scans.
func textQuality(txt string) float32 {
	score := float32(0.2) // base
	if reDateish.MatchString(txt) {
		score += 0.2
	}
	if reAmountish.MatchString(txt) || reRefish.MatchString(strings.ToUpper(txt)) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.2
	}
	if len(txt) > 400 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// damp scales a field confidence by overall text quality. Applies to fields
// read from the visual text only; MRZ-sourced fields carry their own check
// digits and are never damped.
func damp(conf, quality float32) float32 {
	if quality >= 0.6 {
		return conf
	}
	out := conf * (0.7 + quality/2)
	if out > conf {
		return conf
	}
	return out
}

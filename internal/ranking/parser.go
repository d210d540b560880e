// Package ranking extracts peer-evaluation rankings from free-form model
// output and aggregates them into a consensus ordering.
package ranking

import (
	"regexp"

	"github.com/boardroom-ai/boardroom/internal/models"
)

var (
	markerRe   = regexp.MustCompile(`(?i)FINAL RANKING:`)
	numberedRe = regexp.MustCompile(`\d+\.\s*Response [A-Z]`)
	labelRe    = regexp.MustCompile(`Response [A-Z]`)
)

// Parse extracts an ordered sequence of anonymous labels from evaluation
// text. When a "FINAL RANKING:" marker is present (matched
// case-insensitively), only the text after it is considered; labels in the
// preceding commentary are not a ranking, so a marker with nothing after it
// yields an empty sequence. Without a marker the entire text is scanned.
// Within the chosen section, numbered-list entries ("1. Response C") win
// over bare label mentions. Only the first occurrence of each label is
// kept. Unparseable input yields an empty sequence, never an error.
func Parse(text string) []string {
	if text == "" {
		return nil
	}

	if loc := markerRe.FindStringIndex(text); loc != nil {
		return extract(text[loc[1]:])
	}

	return extract(text)
}

func extract(section string) []string {
	matches := numberedRe.FindAllString(section, -1)
	if len(matches) > 0 {
		labels := make([]string, 0, len(matches))
		for _, m := range matches {
			labels = append(labels, labelRe.FindString(m))
		}
		return dedupe(labels)
	}

	return dedupe(labelRe.FindAllString(section, -1))
}

// dedupe keeps the first occurrence of each label; a ranking must not list
// the same response twice.
func dedupe(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	out := labels[:0]
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// Filter drops labels absent from the anonymization map. Models sometimes
// hallucinate labels that were never assigned; those are discarded silently
// so callers only ever see labels that de-anonymize to a real member.
func Filter(labels []string, labelMap models.LabelMap) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := labelMap[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

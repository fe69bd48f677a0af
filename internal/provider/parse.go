// internal/provider/parse.go
//
// Decoding and sanitization of model responses. Models wrapped in JSON mode
// still occasionally fence their output in markdown, so decoding strips
// fences first. Sanitization enforces the two structural guarantees the
// state machines rely on: dissection targets reassemble into their word,
// and every question's answer is one of its options.

package provider

import (
	"encoding/json"
	"strings"

	"github.com/khanhngn/morpho/internal/content"
)

// decodeJSON unmarshals a model response into v, tolerating ```json fences
// and surrounding prose whitespace.
func decodeJSON(raw string, v any) error {
	return json.Unmarshal([]byte(stripFences(raw)), v)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// sanitizeTargets drops dissection targets whose parts do not concatenate
// back into the word. A target the learner can never solve must not reach
// the dissection lab.
func sanitizeTargets(targets []content.DissectionTarget) []content.DissectionTarget {
	kept := targets[:0]
	for _, t := range targets {
		if t.Word != "" && t.Reconstructs() {
			kept = append(kept, t)
		}
	}
	return kept
}

// sanitizeQuestions drops questions with no options or whose correct answer
// is not among the options, so grading by string equality is always sound.
func sanitizeQuestions(qs []content.DrillQuestion) []content.DrillQuestion {
	kept := qs[:0]
	for _, q := range qs {
		if q.Question == "" || len(q.Options) == 0 {
			continue
		}
		ok := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				ok = true
				break
			}
		}
		if ok {
			kept = append(kept, q)
		}
	}
	return kept
}

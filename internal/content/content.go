// internal/content/content.go
//
// Shared content types for the morphology curriculum. Everything here is
// plain data: the generative provider produces it, the lesson and assessment
// flows consume it. The JSON tags match the provider's response contract.

package content

import "strings"

// PartType classifies a morpheme tile.
type PartType string

const (
	PartPrefix PartType = "PREFIX"
	PartRoot   PartType = "ROOT"
	PartSuffix PartType = "SUFFIX"
)

// WordPart is a single morpheme tile. Immutable once produced.
type WordPart struct {
	Text      string   `json:"text"`
	Type      PartType `json:"type"`
	Meaning   string   `json:"meaning"`
	MeaningVI string   `json:"meaning_vi,omitempty"`
}

// DissectionTarget is a whole derived word together with its ordered
// morpheme decomposition. Order is semantic: the word reconstructs only
// from the exact positional sequence of parts.
type DissectionTarget struct {
	Word        string     `json:"word"`
	Translation string     `json:"translation"`
	Parts       []WordPart `json:"parts"`
}

// Reconstructs reports whether the parts, concatenated in order, spell the
// target word. Comparison ignores case and hyphens so that affix tiles
// written as "UN-" still reconstruct "unhappy".
func (t DissectionTarget) Reconstructs() bool {
	if len(t.Parts) == 0 {
		return false
	}
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(normalizeFragment(p.Text))
	}
	return b.String() == normalizeFragment(t.Word)
}

func normalizeFragment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "")
}

// RichDerivative is one derived word shown in the word-lab phase.
type RichDerivative struct {
	Word         string `json:"word"`
	Definition   string `json:"definition"`
	DefinitionVI string `json:"definition_vi,omitempty"`
	Example      string `json:"example"`
	ExampleVI    string `json:"example_vi,omitempty"`
}

// DrillQuestion is one multiple-choice question. CorrectAnswer must be a
// member of Options; the provider boundary enforces this before a question
// reaches a flow.
type DrillQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	ExplanationVI string   `json:"explanation_vi,omitempty"`
}

// RemediationPlan is the corrective review produced after a failed drill.
type RemediationPlan struct {
	Analysis     string   `json:"analysis"`
	ReviewPoints []string `json:"reviewPoints"`
}

// SandboxVerdict is the provider's judgement of a learner-submitted word.
type SandboxVerdict struct {
	IsValid   bool       `json:"isValid"`
	Analysis  string     `json:"analysis"`
	Meaning   string     `json:"meaning,omitempty"`
	MeaningVI string     `json:"meaning_vi,omitempty"`
	Parts     []WordPart `json:"parts,omitempty"`
}

// Derivative converts a valid sandbox verdict into a derivative card for
// display alongside the provider-authored ones.
func (v SandboxVerdict) Derivative(word string) RichDerivative {
	return RichDerivative{
		Word:         word,
		Definition:   v.Meaning,
		DefinitionVI: v.MeaningVI,
		Example:      "User submitted word",
		ExampleVI:    "Từ người dùng đóng góp",
	}
}

// Enrichment is the optional AI-generated sub-record attached to a lesson.
// It is fetched on first entry into a lesson and never persisted centrally.
type Enrichment struct {
	Meaning         string             `json:"meaning"`
	MeaningVI       string             `json:"meaning_vi,omitempty"`
	Phonetic        string             `json:"phonetic,omitempty"`
	Etymology       string             `json:"etymology,omitempty"`
	EtymologyVI     string             `json:"etymology_vi,omitempty"`
	FunFact         string             `json:"funFact,omitempty"`
	FunFactVI       string             `json:"funFact_vi,omitempty"`
	Metaphor        string             `json:"metaphor,omitempty"`
	MetaphorVI      string             `json:"metaphor_vi,omitempty"`
	DissectionPack  []DissectionTarget `json:"dissectionPack,omitempty"`
	RichDerivatives []RichDerivative   `json:"richDerivatives,omitempty"`
}

// IsZero reports whether no enrichment content is present at all.
func (e Enrichment) IsZero() bool {
	return e.Meaning == "" && len(e.DissectionPack) == 0 && len(e.RichDerivatives) == 0
}

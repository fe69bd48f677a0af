// internal/provider/gemini.go
//
// Gemini-backed Provider. All structured calls request JSON output and go
// through the decode/sanitize pipeline in parse.go. Failures are journaled
// and converted into the interface's fail-closed sentinels.

package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/journal"
)

// DefaultModel is the generation model used when the config names none.
const DefaultModel = "gemini-3-flash-preview"

// Gemini implements Provider on top of the Google GenAI SDK.
type Gemini struct {
	client  *genai.Client
	model   string
	journal *journal.Journal
}

// NewGemini builds a Gemini provider. The API key is required; model falls
// back to DefaultModel when empty.
func NewGemini(ctx context.Context, apiKey, model string, j *journal.Journal) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("provider: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("provider: create client: %w", err)
	}
	return &Gemini{client: client, model: model, journal: j}, nil
}

// generateJSON runs one JSON-mode completion and returns the raw text.
func (g *Gemini) generateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) Enrich(ctx context.Context, root, category string) content.Enrichment {
	prompt := fmt.Sprintf(`Create a deep, bilingual (English & Vietnamese) morphology lesson for the root/affix: %q (%s).

Requirements:
1. Meaning & Etymology in both languages.
2. "dissectionPack": Choose 3 distinct words derived from this root (1 easy, 1 medium, 1 hard) to be dissected into parts. The parts, concatenated in order, must spell the word exactly.
3. "richDerivatives": 5 common derived words with definitions and examples in both languages.

JSON Schema:
{
  "meaning": string,
  "meaning_vi": string,
  "phonetic": string,
  "etymology": string,
  "etymology_vi": string,
  "funFact": string,
  "funFact_vi": string,
  "metaphor": string,
  "metaphor_vi": string,
  "dissectionPack": [
    {
      "word": string,
      "translation": string,
      "parts": [{ "text": string, "type": "PREFIX"|"ROOT"|"SUFFIX", "meaning": string, "meaning_vi": string }]
    }
  ],
  "richDerivatives": [
    { "word": string, "definition": string, "definition_vi": string, "example": string, "example_vi": string }
  ]
}`, root, category)

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		g.journal.Error("enrich %q: %v", root, err)
		return content.Enrichment{Meaning: "Error loading content"}
	}
	var e content.Enrichment
	if err := decodeJSON(raw, &e); err != nil {
		g.journal.Error("enrich %q: decode: %v", root, err)
		return content.Enrichment{Meaning: "Error loading content"}
	}
	e.DissectionPack = sanitizeTargets(e.DissectionPack)
	g.journal.Info("enriched %q: %d targets, %d derivatives", root, len(e.DissectionPack), len(e.RichDerivatives))
	return e
}

func (g *Gemini) DrillQuestions(ctx context.Context, root, meaning string) []content.DrillQuestion {
	prompt := fmt.Sprintf(`Create 10 multiple-choice questions for the English root %q (%s).
Questions should test understanding of derived words and context.
Include Vietnamese explanations.

JSON Schema:
{
  "questions": [
    {
      "question": string,
      "options": string[],
      "correctAnswer": string,
      "explanation": string,
      "explanation_vi": string
    }
  ]
}`, root, meaning)

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		g.journal.Error("drill questions %q: %v", root, err)
		return nil
	}
	var parsed struct {
		Questions []content.DrillQuestion `json:"questions"`
	}
	if err := decodeJSON(raw, &parsed); err != nil {
		g.journal.Error("drill questions %q: decode: %v", root, err)
		return nil
	}
	return sanitizeQuestions(parsed.Questions)
}

func (g *Gemini) VerifySandboxWord(ctx context.Context, root, word string) content.SandboxVerdict {
	prompt := fmt.Sprintf(`The user suggests the word %q contains the root %q.
1. Is this etymologically correct? (isValid: boolean)
2. If yes, break it down and explain the meaning in English and Vietnamese.
3. If no, explain why briefly.

JSON Schema:
{
  "isValid": boolean,
  "analysis": string,
  "meaning": string,
  "meaning_vi": string,
  "parts": [{ "text": string, "type": "PREFIX"|"ROOT"|"SUFFIX", "meaning": string }]
}`, word, root)

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		g.journal.Error("verify %q against %q: %v", word, root, err)
		return content.SandboxVerdict{Analysis: "AI analysis failed."}
	}
	var v content.SandboxVerdict
	if err := decodeJSON(raw, &v); err != nil {
		g.journal.Error("verify %q: decode: %v", word, err)
		return content.SandboxVerdict{Analysis: "AI analysis failed."}
	}
	return v
}

func (g *Gemini) RemediationPlan(ctx context.Context, root string, missed []string) content.RemediationPlan {
	prompt := fmt.Sprintf(`A student failed the quiz on root %q.
They missed questions about: %s.

Provide a remediation plan:
1. "analysis": encouraging feedback on what they misunderstood.
2. "reviewPoints": 3 bullet points (bilingual En/Vi) explaining the concepts they missed.

JSON Schema:
{ "analysis": string, "reviewPoints": string[] }`, root, strings.Join(missed, "; "))

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		g.journal.Error("remediation %q: %v", root, err)
		return fallbackRemediation()
	}
	var plan content.RemediationPlan
	if err := decodeJSON(raw, &plan); err != nil {
		g.journal.Error("remediation %q: decode: %v", root, err)
		return fallbackRemediation()
	}
	if plan.Analysis == "" {
		return fallbackRemediation()
	}
	return plan
}

func fallbackRemediation() content.RemediationPlan {
	return content.RemediationPlan{
		Analysis:     "Review the definitions again.",
		ReviewPoints: []string{"Check definitions"},
	}
}

func (g *Gemini) TierAssessment(ctx context.Context, tierID int, roots []string) []content.DrillQuestion {
	prompt := fmt.Sprintf(`Create a challenge assessment for Tier %d covering these English roots: %s.
10 multiple-choice questions mixing all the roots. Include Vietnamese explanations.

JSON Schema:
{
  "questions": [
    {
      "question": string,
      "options": string[],
      "correctAnswer": string,
      "explanation": string,
      "explanation_vi": string
    }
  ]
}`, tierID, strings.Join(roots, ", "))

	raw, err := g.generateJSON(ctx, prompt)
	if err != nil {
		g.journal.Error("tier %d assessment: %v", tierID, err)
		return nil
	}
	var parsed struct {
		Questions []content.DrillQuestion `json:"questions"`
	}
	if err := decodeJSON(raw, &parsed); err != nil {
		g.journal.Error("tier %d assessment: decode: %v", tierID, err)
		return nil
	}
	return sanitizeQuestions(parsed.Questions)
}

func (g *Gemini) EvaluateAssessment(ctx context.Context, tierID, correct, total int, missed []string, elapsedSeconds int) string {
	prompt := fmt.Sprintf("Tier %d Exam Result: %d/%d in %d seconds. Missed concepts: %s. Give short, encouraging feedback to the learner.",
		tierID, correct, total, elapsedSeconds, strings.Join(missed, ", "))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.journal.Error("tier %d evaluation: %v", tierID, err)
		return "Done."
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "Done."
	}
	return text
}

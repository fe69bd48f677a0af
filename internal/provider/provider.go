// internal/provider/provider.go

// Package provider generates lesson content, drill questions, and feedback.
// Every method is fail-closed: on any transport or decode error it returns
// a usable sentinel value instead of an error, so the interface never
// surfaces a failure the UI would have to branch on.
package provider

import (
	"context"

	"github.com/khanhngn/morpho/internal/content"
)

// Provider produces all generated content the app consumes. Implementations
// must honor ctx cancellation and must never return malformed content:
// dissection targets that do not reassemble into their word and questions
// whose answer is not among the options are dropped before returning.
type Provider interface {
	// Enrich builds the full bilingual lesson payload for a root. On
	// failure the Enrichment carries Meaning "Error loading content" and an
	// empty dissection pack.
	Enrich(ctx context.Context, root, category string) content.Enrichment

	// DrillQuestions returns up to ten multiple-choice questions for the
	// root, or an empty slice on failure.
	DrillQuestions(ctx context.Context, root, meaning string) []content.DrillQuestion

	// VerifySandboxWord judges whether a learner-proposed word genuinely
	// derives from the root. On failure the verdict is invalid with
	// analysis "AI analysis failed."
	VerifySandboxWord(ctx context.Context, root, word string) content.SandboxVerdict

	// RemediationPlan explains the concepts behind the missed questions.
	// On failure it returns a generic review suggestion.
	RemediationPlan(ctx context.Context, root string, missed []string) content.RemediationPlan

	// TierAssessment returns exam questions covering the given roots, or an
	// empty slice on failure.
	TierAssessment(ctx context.Context, tierID int, roots []string) []content.DrillQuestion

	// EvaluateAssessment returns short prose feedback on an exam result,
	// including how long the learner took. On failure it returns "Done."
	EvaluateAssessment(ctx context.Context, tierID, correct, total int, missed []string, elapsedSeconds int) string
}

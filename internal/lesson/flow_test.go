package lesson

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/curriculum"
	"github.com/khanhngn/morpho/internal/dissect"
)

func testLesson() curriculum.Lesson {
	les, ok := curriculum.FindLesson("l1_un")
	if !ok {
		panic("l1_un missing from curriculum")
	}
	return les
}

func testEnrichment() content.Enrichment {
	return content.Enrichment{
		Meaning:   "Not / reverse",
		MeaningVI: "Không / đảo ngược",
		DissectionPack: []content.DissectionTarget{
			{
				Word: "unhappy",
				Parts: []content.WordPart{
					{Text: "un", Type: content.PartPrefix},
					{Text: "happy", Type: content.PartRoot},
				},
			},
		},
		RichDerivatives: []content.RichDerivative{
			{Word: "undo", Definition: "reverse an action"},
		},
	}
}

func testQuestions(n int) []content.DrillQuestion {
	qs := make([]content.DrillQuestion, n)
	for i := range qs {
		qs[i] = content.DrillQuestion{
			Question:      fmt.Sprintf("question %d", i),
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
		}
	}
	return qs
}

func newTestFlow(t *testing.T) *Flow {
	t.Helper()
	return NewFlow(testLesson(), rand.New(rand.NewSource(11)))
}

// solveLab drives the dissection lab through every target.
func solveLab(t *testing.T, f *Flow) {
	t.Helper()
	for f.Phase() == PhaseDissection {
		lab := f.Lab()
		target, ok := lab.Target()
		if !ok {
			t.Fatalf("dissection phase without a target")
		}
		for slot, part := range target.Parts {
			idx := -1
			for i, b := range lab.Bank() {
				if b.Text == part.Text {
					idx = i
					break
				}
			}
			if idx < 0 {
				t.Fatalf("tile %q missing from bank", part.Text)
			}
			if _, err := lab.Place(dissect.FromBank, idx, slot); err != nil {
				t.Fatalf("place: %v", err)
			}
		}
		if !lab.Matched() {
			t.Fatalf("solution order should match")
		}
		f.AdvanceDissection()
	}
}

// answerDrill answers every question, getting the first `correct` ones right.
func answerDrill(t *testing.T, f *Flow, correct int) {
	t.Helper()
	_, total, _ := f.DrillProgress()
	for i := 0; i < total; i++ {
		q, ok := f.DrillQuestion()
		if !ok {
			t.Fatalf("expected question %d", i)
		}
		answer := q.CorrectAnswer
		if i >= correct {
			answer = "definitely wrong"
		}
		f.AnswerDrill(answer)
		if !f.DrillLocked() {
			t.Fatalf("answer should lock the question")
		}
		graded := f.NextDrillQuestion()
		if graded != (i == total-1) {
			t.Fatalf("question %d graded=%v", i, graded)
		}
	}
}

func TestFlowHappyPath(t *testing.T) {
	f := newTestFlow(t)
	if f.Phase() != PhasePreparing {
		t.Fatalf("flow starts in PREPARING, got %s", f.Phase())
	}
	if !f.NeedsEnrichment() {
		t.Fatalf("un-enriched lesson needs enrichment")
	}

	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	if f.Phase() != PhaseDiscovery {
		t.Fatalf("enrichment moves to DISCOVERY, got %s", f.Phase())
	}

	f.BeginDissection()
	if f.Phase() != PhaseDissection {
		t.Fatalf("expected DISSECTION, got %s", f.Phase())
	}
	solveLab(t, f)
	if f.Phase() != PhaseDerivation {
		t.Fatalf("finished pack moves to the word lab, got %s", f.Phase())
	}

	if !f.BeginDrill() {
		t.Fatalf("first drill entry must request questions")
	}
	f.ApplyDrillQuestions(f.Epoch(), testQuestions(10))
	if !f.DrillReady() {
		t.Fatalf("questions should be installed")
	}

	answerDrill(t, f, 7)
	if f.Phase() != PhaseComplete {
		t.Fatalf("7 of 10 passes, got %s", f.Phase())
	}
}

func TestFlowFailAtSixAndRetry(t *testing.T) {
	f := newTestFlow(t)
	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	f.BeginDissection()
	solveLab(t, f)
	f.BeginDrill()
	f.ApplyDrillQuestions(f.Epoch(), testQuestions(10))

	answerDrill(t, f, 6)
	if f.Phase() != PhaseRemediation {
		t.Fatalf("6 of 10 fails the drill, got %s", f.Phase())
	}
	if got := len(f.MissedQuestions()); got != 4 {
		t.Fatalf("expected 4 missed questions, got %d", got)
	}

	f.ApplyRemediation(f.Epoch(), content.RemediationPlan{Analysis: "keep going", ReviewPoints: []string{"a"}})
	if f.Remediation() == nil {
		t.Fatalf("remediation plan should be stored")
	}

	f.RetryDrill()
	if f.Phase() != PhaseDrill {
		t.Fatalf("retry re-enters the drill, got %s", f.Phase())
	}
	if !f.DrillReady() {
		t.Fatalf("retry reuses the same questions without refetching")
	}
	index, total, correct := f.DrillProgress()
	if index != 0 || correct != 0 || total != 10 {
		t.Fatalf("retry must reset counters: index=%d correct=%d total=%d", index, correct, total)
	}
	if f.Remediation() != nil {
		t.Fatalf("retry clears the old plan")
	}
	if len(f.MissedQuestions()) != 0 {
		t.Fatalf("retry clears the missed list")
	}

	answerDrill(t, f, 10)
	if f.Phase() != PhaseComplete {
		t.Fatalf("perfect retry completes the lesson, got %s", f.Phase())
	}
}

func TestFlowStaleResponsesIgnored(t *testing.T) {
	f := newTestFlow(t)
	stale := f.Epoch() - 1
	f.ApplyEnrichment(stale, testEnrichment())
	if f.Phase() != PhasePreparing {
		t.Fatalf("stale enrichment must be dropped")
	}

	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	f.BeginDissection()
	solveLab(t, f)
	f.BeginDrill()
	f.ApplyDrillQuestions(f.Epoch()-1, testQuestions(10))
	if f.DrillReady() {
		t.Fatalf("stale questions must be dropped")
	}
	f.ApplyDrillQuestions(f.Epoch(), testQuestions(10))

	answerDrill(t, f, 0)
	if f.Phase() != PhaseRemediation {
		t.Fatalf("expected REMEDIATION, got %s", f.Phase())
	}
	// The epoch advanced on entering remediation; a plan generated for the
	// drill's epoch is stale now.
	f.ApplyRemediation(f.Epoch()-1, content.RemediationPlan{Analysis: "stale"})
	if f.Remediation() != nil {
		t.Fatalf("stale remediation must be dropped")
	}
}

func TestFlowEmptyDissectionPackSkipsToLab(t *testing.T) {
	f := newTestFlow(t)
	f.ApplyEnrichment(f.Epoch(), content.Enrichment{Meaning: "Error loading content"})
	if f.Phase() != PhaseDiscovery {
		t.Fatalf("a failure sentinel still leaves PREPARING, got %s", f.Phase())
	}
	f.BeginDissection()
	if f.Phase() != PhaseDerivation {
		t.Fatalf("an empty pack falls through to the word lab, got %s", f.Phase())
	}
}

func TestFlowZeroQuestionsCompletesLesson(t *testing.T) {
	f := newTestFlow(t)
	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	f.BeginDissection()
	solveLab(t, f)
	f.BeginDrill()
	f.ApplyDrillQuestions(f.Epoch(), nil)
	if f.Phase() != PhaseComplete {
		t.Fatalf("zero questions must not strand the learner, got %s", f.Phase())
	}
}

func TestFlowCapsQuestionSetAtDrillSize(t *testing.T) {
	f := newTestFlow(t)
	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	f.BeginDissection()
	solveLab(t, f)
	f.BeginDrill()
	f.ApplyDrillQuestions(f.Epoch(), testQuestions(DrillSize+5))
	_, total, _ := f.DrillProgress()
	if total != DrillSize {
		t.Fatalf("an overlong set is capped: total = %d, want %d", total, DrillSize)
	}
}

func TestFlowSandboxVerdict(t *testing.T) {
	f := newTestFlow(t)
	f.ApplyEnrichment(f.Epoch(), testEnrichment())
	f.BeginDissection()
	solveLab(t, f)

	f.RecordSandbox(f.Epoch(), "undoable", content.SandboxVerdict{IsValid: true, Analysis: "real word"})
	word, verdict := f.Sandbox()
	if word != "undoable" || verdict == nil || !verdict.IsValid {
		t.Fatalf("sandbox verdict not stored: %q %+v", word, verdict)
	}

	// Wrong epoch is discarded, the previous verdict stays.
	f.RecordSandbox(f.Epoch()+1, "other", content.SandboxVerdict{})
	word, _ = f.Sandbox()
	if word != "undoable" {
		t.Fatalf("stale sandbox verdict must be dropped, got %q", word)
	}
}

func TestFlowEnrichedLessonSkipsPreparation(t *testing.T) {
	base := testLesson()
	enriched := curriculum.MergeEnrichment(base, testEnrichment())
	f := NewFlow(enriched, rand.New(rand.NewSource(5)))
	if f.NeedsEnrichment() {
		t.Fatalf("already-enriched lesson needs no fetch")
	}
	f.SkipPreparation()
	if f.Phase() != PhaseDiscovery {
		t.Fatalf("skip moves straight to DISCOVERY, got %s", f.Phase())
	}
}

func TestFlowGuardsOutOfPhaseCalls(t *testing.T) {
	f := newTestFlow(t)
	f.BeginDissection() // still PREPARING
	if f.Phase() != PhasePreparing {
		t.Fatalf("BeginDissection outside DISCOVERY must be a no-op")
	}
	if f.BeginDrill() {
		t.Fatalf("BeginDrill outside DERIVATION must be a no-op")
	}
	f.RetryDrill()
	if f.Phase() != PhasePreparing {
		t.Fatalf("RetryDrill outside REMEDIATION must be a no-op")
	}
}

package assessment

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/khanhngn/morpho/internal/content"
)

func examQuestions(n int) []content.DrillQuestion {
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

func newTestExam(t *testing.T, roots []string) *Exam {
	t.Helper()
	return New(2, roots, rand.New(rand.NewSource(9)))
}

// answerAll selects the correct option for the first `correct` questions.
func answerAll(e *Exam, correct int) {
	for i := range e.Questions() {
		if i < correct {
			e.Select(i, "right")
		} else {
			e.Select(i, "wrong")
		}
	}
}

func TestExamSamplesAtMostFiveRoots(t *testing.T) {
	roots := []string{"A", "B", "C", "D", "E", "F", "G"}
	e := newTestExam(t, roots)
	if got := len(e.SampledRoots()); got != MaxSampledRoots {
		t.Fatalf("sampled %d roots, want %d", got, MaxSampledRoots)
	}
	seen := map[string]bool{}
	for _, r := range e.SampledRoots() {
		if seen[r] {
			t.Fatalf("root %s sampled twice", r)
		}
		seen[r] = true
	}

	small := newTestExam(t, []string{"A", "B"})
	if got := len(small.SampledRoots()); got != 2 {
		t.Fatalf("small tiers keep all roots, got %d", got)
	}
}

func TestExamPassAtSeventy(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), examQuestions(10))
	if e.State() != StateReady {
		t.Fatalf("questions move the exam to READY, got %s", e.State())
	}

	answerAll(e, 7)
	if !e.CanSubmit() {
		t.Fatalf("fully answered paper should submit")
	}
	correct, total, missed, _, ok := e.Submit()
	if !ok || correct != 7 || total != 10 {
		t.Fatalf("submit = %d/%d ok=%v", correct, total, ok)
	}
	if len(missed) != 3 {
		t.Fatalf("expected 3 missed questions, got %d", len(missed))
	}
	if e.ScorePercent() != 70 {
		t.Fatalf("7/10 = 70%%, got %d", e.ScorePercent())
	}
	if !e.Passed() {
		t.Fatalf("70 meets the threshold")
	}
}

func TestExamFailAtSixty(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), examQuestions(10))
	answerAll(e, 6)
	if _, _, _, _, ok := e.Submit(); !ok {
		t.Fatalf("submit should succeed")
	}
	if e.ScorePercent() != 60 {
		t.Fatalf("6/10 = 60%%, got %d", e.ScorePercent())
	}
	if e.Passed() {
		t.Fatalf("60 fails the threshold")
	}
}

func TestExamPartialSubmissionRejected(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), examQuestions(3))
	e.Select(0, "right")
	if e.CanSubmit() {
		t.Fatalf("partial paper must not submit")
	}
	if _, _, _, _, ok := e.Submit(); ok {
		t.Fatalf("submit must refuse a partial paper")
	}
	// Answers are freely changeable until submission.
	e.Select(0, "wrong")
	if a, _ := e.Answer(0); a != "wrong" {
		t.Fatalf("re-selection should replace the answer, got %q", a)
	}
}

func TestExamTimerOnlyRunsWhileReady(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.Tick()
	if e.ElapsedSeconds() != 0 {
		t.Fatalf("timer must not run while LOADING")
	}
	e.SetQuestions(e.Epoch(), examQuestions(2))
	e.Tick()
	e.Tick()
	if e.ElapsedSeconds() != 2 {
		t.Fatalf("elapsed = %d, want 2", e.ElapsedSeconds())
	}
	answerAll(e, 2)
	e.Submit()
	e.Tick()
	if e.ElapsedSeconds() != 2 {
		t.Fatalf("timer must halt on submission")
	}
}

func TestExamZeroQuestionsIsError(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), nil)
	if e.State() != StateError {
		t.Fatalf("zero questions enter ERROR, got %s", e.State())
	}

	before := e.Epoch()
	e.Retry()
	if e.State() != StateLoading {
		t.Fatalf("retry re-enters LOADING, got %s", e.State())
	}
	if e.Epoch() != before+1 {
		t.Fatalf("retry must advance the epoch")
	}
	// The original request's late arrival is stale now.
	e.SetQuestions(before, examQuestions(10))
	if e.State() != StateLoading {
		t.Fatalf("stale questions must be dropped")
	}
	e.SetQuestions(e.Epoch(), examQuestions(10))
	if e.State() != StateReady {
		t.Fatalf("fresh questions should install")
	}
	if e.ElapsedSeconds() != 0 {
		t.Fatalf("retry zeroes the timer")
	}
}

func TestExamFeedbackEpochGuard(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), examQuestions(2))
	answerAll(e, 2)
	preSubmit := e.Epoch()
	e.Submit()

	e.SetFeedback(preSubmit, "stale feedback")
	if _, ok := e.Feedback(); ok {
		t.Fatalf("feedback from before submission must be dropped")
	}
	e.SetFeedback(e.Epoch(), "Great work")
	feedback, ok := e.Feedback()
	if !ok || feedback != "Great work" {
		t.Fatalf("feedback = %q ok=%v", feedback, ok)
	}
}

func TestExamResultRecord(t *testing.T) {
	e := newTestExam(t, []string{"A"})
	e.SetQuestions(e.Epoch(), examQuestions(10))
	answerAll(e, 8)
	e.Submit()
	e.SetFeedback(e.Epoch(), "Solid grasp of the roots.")

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	r := e.Result(now)
	if r.TierID != 2 || r.Score != 80 || !r.Passed {
		t.Fatalf("result = %+v", r)
	}
	if r.Feedback != "Solid grasp of the roots." {
		t.Fatalf("result feedback = %q", r.Feedback)
	}
	if r.Date != "2026-09-01T12:00:00Z" {
		t.Fatalf("result date = %q", r.Date)
	}
}

// internal/assessment/exam.go
//
// The tier assessment state machine. Unlike the lesson drill, the exam
// presents all questions at once, runs a continuous seconds timer, and
// cannot proceed with zero questions: a failed or empty generation lands in
// an explicit error state offering retry or cancel.

package assessment

import (
	"math"
	"math/rand"
	"time"

	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/progress"
)

// State is the exam lifecycle stage.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "submitted"
	}
}

// PassPercent is the minimum rounded score percentage that masters a tier.
const PassPercent = 70

// MaxSampledRoots bounds how many of the tier's roots seed the generator.
const MaxSampledRoots = 5

// Exam holds one tier assessment attempt.
type Exam struct {
	tierID  int
	roots   []string
	epoch   int
	state   State
	elapsed int // whole seconds since questions arrived

	questions []content.DrillQuestion
	answers   map[int]string

	correct  int
	missed   []string
	feedback string
	hasFeed  bool
}

// New creates an exam in LOADING for the given tier. The caller issues the
// generation request with SampledRoots and the current Epoch.
func New(tierID int, roots []string, rng *rand.Rand) *Exam {
	return &Exam{
		tierID:  tierID,
		roots:   sampleRoots(roots, rng),
		answers: map[int]string{},
	}
}

// sampleRoots picks at most MaxSampledRoots roots uniformly at random.
func sampleRoots(roots []string, rng *rand.Rand) []string {
	out := make([]string, len(roots))
	copy(out, roots)
	rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
	if len(out) > MaxSampledRoots {
		out = out[:MaxSampledRoots]
	}
	return out
}

// TierID returns the tier under assessment.
func (e *Exam) TierID() int { return e.tierID }

// SampledRoots returns the roots the generation request covers.
func (e *Exam) SampledRoots() []string { return e.roots }

// State returns the current lifecycle stage.
func (e *Exam) State() State { return e.state }

// Epoch returns the token async results must carry.
func (e *Exam) Epoch() int { return e.epoch }

// SetQuestions resolves the LOADING request. Zero questions is a failure:
// an exam cannot be meaningfully taken, so the exam enters ERROR instead of
// presenting an empty paper. Stale epochs are dropped.
func (e *Exam) SetQuestions(epoch int, qs []content.DrillQuestion) {
	if epoch != e.epoch || e.state != StateLoading {
		return
	}
	if len(qs) == 0 {
		e.state = StateError
		return
	}
	e.questions = qs
	e.state = StateReady
}

// Retry re-issues generation from ERROR: new epoch, zeroed timer, cleared
// answers. The caller must issue a fresh request with the new epoch.
func (e *Exam) Retry() {
	if e.state != StateError {
		return
	}
	e.epoch++
	e.elapsed = 0
	e.questions = nil
	e.answers = map[int]string{}
	e.state = StateLoading
}

// Tick advances the elapsed-seconds counter. Only READY ticks: the timer
// starts when loading succeeds and stops the instant the exam leaves READY.
func (e *Exam) Tick() {
	if e.state == StateReady {
		e.elapsed++
	}
}

// ElapsedSeconds returns the running exam duration.
func (e *Exam) ElapsedSeconds() int { return e.elapsed }

// Questions returns the full paper for simultaneous display.
func (e *Exam) Questions() []content.DrillQuestion { return e.questions }

// Select records an answer for a question. Selection is idempotent and
// freely changeable until submission.
func (e *Exam) Select(question int, option string) {
	if e.state != StateReady || question < 0 || question >= len(e.questions) {
		return
	}
	e.answers[question] = option
}

// Answer returns the current selection for a question.
func (e *Exam) Answer(question int) (string, bool) {
	a, ok := e.answers[question]
	return a, ok
}

// CanSubmit reports whether every question has a selected answer. Partial
// submission is never allowed.
func (e *Exam) CanSubmit() bool {
	if e.state != StateReady || len(e.questions) == 0 {
		return false
	}
	return len(e.answers) == len(e.questions)
}

// Submit grades the paper and enters SUBMITTED. The timer halts here. The
// returned values key the feedback request: (tier, correct, total, missed
// question texts, elapsed seconds).
func (e *Exam) Submit() (correct, total int, missed []string, elapsed int, ok bool) {
	if !e.CanSubmit() {
		return 0, 0, nil, 0, false
	}
	for i, q := range e.questions {
		if e.answers[i] == q.CorrectAnswer {
			e.correct++
		} else {
			e.missed = append(e.missed, q.Question)
		}
	}
	e.state = StateSubmitted
	e.epoch++
	return e.correct, len(e.questions), append([]string(nil), e.missed...), e.elapsed, true
}

// SetFeedback stores the provider's verdict text for display.
func (e *Exam) SetFeedback(epoch int, text string) {
	if epoch != e.epoch || e.state != StateSubmitted {
		return
	}
	e.feedback = text
	e.hasFeed = true
}

// Feedback returns the stored feedback and whether it has arrived.
func (e *Exam) Feedback() (string, bool) { return e.feedback, e.hasFeed }

// ScorePercent computes round(correct/total*100) for the graded paper.
func (e *Exam) ScorePercent() int {
	if len(e.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(e.correct) / float64(len(e.questions)) * 100))
}

// CorrectCount returns the number of exact-match answers after grading.
func (e *Exam) CorrectCount() int { return e.correct }

// Passed reports whether the graded score meets the mastery threshold.
func (e *Exam) Passed() bool { return e.ScorePercent() >= PassPercent }

// Result assembles the immutable assessment record appended to the
// learner's history.
func (e *Exam) Result(now time.Time) progress.TierAssessmentResult {
	return progress.TierAssessmentResult{
		TierID:   e.tierID,
		Score:    e.ScorePercent(),
		Passed:   e.Passed(),
		Feedback: e.feedback,
		Date:     now.UTC().Format(time.RFC3339),
	}
}

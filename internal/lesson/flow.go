// internal/lesson/flow.go
//
// The lesson phase state machine. A Flow walks one lesson through its
// ordered phases; the only backward edge is the remediation retry loop into
// the drill. The flow never talks to the provider itself: the TUI issues
// provider calls as commands and hands results back through Apply* methods,
// each stamped with the epoch the request was issued under. Results from an
// abandoned phase or a previous lesson carry a stale epoch and are dropped.

package lesson

import (
	"math/rand"

	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/curriculum"
	"github.com/khanhngn/morpho/internal/dissect"
)

// Phase is a stage in the lesson traversal.
type Phase int

const (
	PhasePreparing Phase = iota
	PhaseDiscovery
	PhaseDissection
	PhaseDerivation
	PhaseDrill
	PhaseRemediation
	PhaseComplete
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhasePreparing:
		return "Preparing"
	case PhaseDiscovery:
		return "Discovery"
	case PhaseDissection:
		return "Dissection"
	case PhaseDerivation:
		return "Word Lab"
	case PhaseDrill:
		return "Deep Drill"
	case PhaseRemediation:
		return "Remediation"
	case PhaseComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// DrillPassCount is the number of correct answers (out of DrillSize) that
// completes a lesson.
const (
	DrillSize      = 10
	DrillPassCount = 7
)

type drillState struct {
	questions []content.DrillQuestion
	index     int
	correct   int
	missed    []string
	selected  string
	locked    bool
	loaded    bool
}

// Flow holds one lesson's progression state.
type Flow struct {
	lesson curriculum.Lesson
	phase  Phase
	epoch  int
	rng    *rand.Rand

	lab   *dissect.Lab
	drill drillState

	remediation *content.RemediationPlan

	sandboxVerdict *content.SandboxVerdict
	sandboxWord    string
}

// NewFlow enters a lesson in PREPARING. The caller checks NeedsEnrichment
// and either requests enrichment or advances immediately.
func NewFlow(l curriculum.Lesson, rng *rand.Rand) *Flow {
	return &Flow{lesson: l, phase: PhasePreparing, rng: rng}
}

// Lesson returns the lesson under study, including any merged enrichment.
func (f *Flow) Lesson() curriculum.Lesson { return f.lesson }

// Phase returns the current phase.
func (f *Flow) Phase() Phase { return f.phase }

// Epoch returns the token a suspending request must carry to have its
// result accepted.
func (f *Flow) Epoch() int { return f.epoch }

// NeedsEnrichment reports whether entry must fetch content first.
func (f *Flow) NeedsEnrichment() bool {
	return f.phase == PhasePreparing && !f.lesson.Enriched()
}

// ApplyEnrichment merges provider content and leaves PREPARING. It is
// called for failure sentinels too: the lesson proceeds with degraded
// content rather than blocking. Stale epochs are ignored.
func (f *Flow) ApplyEnrichment(epoch int, e content.Enrichment) {
	if epoch != f.epoch || f.phase != PhasePreparing {
		return
	}
	f.lesson = curriculum.MergeEnrichment(f.lesson, e)
	f.phase = PhaseDiscovery
}

// SkipPreparation moves straight to DISCOVERY when the lesson was already
// enriched this session.
func (f *Flow) SkipPreparation() {
	if f.phase == PhasePreparing {
		f.phase = PhaseDiscovery
	}
}

// BeginDissection leaves DISCOVERY on explicit learner action. An empty
// dissection pack is "nothing to do here": the lab reports pack-complete
// at once and AdvanceDissection falls through to the word lab.
func (f *Flow) BeginDissection() {
	if f.phase != PhaseDiscovery {
		return
	}
	f.lab = dissect.NewLab(f.lesson.DissectionPack(), f.rng)
	f.phase = PhaseDissection
	if f.lab.PackComplete() {
		f.phase = PhaseDerivation
	}
}

// Lab exposes the dissection engine while in DISSECTION.
func (f *Flow) Lab() *dissect.Lab { return f.lab }

// AdvanceDissection moves past the current matched word; once the pack is
// done the flow enters DERIVATION.
func (f *Flow) AdvanceDissection() {
	if f.phase != PhaseDissection || f.lab == nil {
		return
	}
	if f.lab.Advance() {
		f.phase = PhaseDerivation
	}
}

// RecordSandbox stores a sandbox verdict for display. Only the result of
// the current epoch's request is kept.
func (f *Flow) RecordSandbox(epoch int, word string, v content.SandboxVerdict) {
	if epoch != f.epoch || f.phase != PhaseDerivation {
		return
	}
	f.sandboxWord = word
	f.sandboxVerdict = &v
}

// Sandbox returns the last recorded verdict and the word it judged.
func (f *Flow) Sandbox() (string, *content.SandboxVerdict) {
	return f.sandboxWord, f.sandboxVerdict
}

// BeginDrill leaves DERIVATION on explicit learner action, independent of
// sandbox usage. Returns true when drill questions still need fetching;
// questions survive a remediation retry, so re-entry does not refetch.
func (f *Flow) BeginDrill() bool {
	if f.phase != PhaseDerivation {
		return false
	}
	f.phase = PhaseDrill
	return !f.drill.loaded
}

// ApplyDrillQuestions installs the fetched question set, capped at
// DrillSize. A zero-question set makes the drill pass trivially: there is
// nothing to answer, and degraded content must never strand the learner.
func (f *Flow) ApplyDrillQuestions(epoch int, qs []content.DrillQuestion) {
	if epoch != f.epoch || f.phase != PhaseDrill || f.drill.loaded {
		return
	}
	if len(qs) > DrillSize {
		qs = qs[:DrillSize]
	}
	f.drill.questions = qs
	f.drill.loaded = true
	if len(qs) == 0 {
		f.phase = PhaseComplete
	}
}

// DrillReady reports whether questions have arrived.
func (f *Flow) DrillReady() bool { return f.drill.loaded }

// DrillQuestion returns the question currently presented.
func (f *Flow) DrillQuestion() (content.DrillQuestion, bool) {
	if !f.drill.loaded || f.drill.index >= len(f.drill.questions) {
		return content.DrillQuestion{}, false
	}
	return f.drill.questions[f.drill.index], true
}

// DrillProgress reports (current question index, total, correct so far).
func (f *Flow) DrillProgress() (int, int, int) {
	return f.drill.index, len(f.drill.questions), f.drill.correct
}

// DrillLocked reports whether the current question has been answered.
func (f *Flow) DrillLocked() bool { return f.drill.locked }

// DrillSelected returns the locked-in option for the current question.
func (f *Flow) DrillSelected() string { return f.drill.selected }

// AnswerDrill locks in one option for the current question. Exactly one
// selection is accepted; later calls while locked are ignored. Correctness
// is exact string equality with the question's answer.
func (f *Flow) AnswerDrill(option string) {
	if f.phase != PhaseDrill || f.drill.locked {
		return
	}
	q, ok := f.DrillQuestion()
	if !ok {
		return
	}
	f.drill.selected = option
	f.drill.locked = true
	if option == q.CorrectAnswer {
		f.drill.correct++
	} else {
		f.drill.missed = append(f.drill.missed, q.Question)
	}
}

// NextDrillQuestion advances past a locked question. After the last one the
// drill is graded: pass goes to COMPLETE, fail to REMEDIATION. Returns true
// when the drill just finished.
func (f *Flow) NextDrillQuestion() bool {
	if f.phase != PhaseDrill || !f.drill.locked {
		return false
	}
	f.drill.locked = false
	f.drill.selected = ""
	if f.drill.index < len(f.drill.questions)-1 {
		f.drill.index++
		return false
	}
	if f.drill.correct >= DrillPassCount {
		f.phase = PhaseComplete
	} else {
		f.phase = PhaseRemediation
		f.epoch++
	}
	return true
}

// MissedQuestions returns the texts of the questions answered wrong, in
// the order they were missed.
func (f *Flow) MissedQuestions() []string {
	out := make([]string, len(f.drill.missed))
	copy(out, f.drill.missed)
	return out
}

// ApplyRemediation installs the corrective plan for display.
func (f *Flow) ApplyRemediation(epoch int, plan content.RemediationPlan) {
	if epoch != f.epoch || f.phase != PhaseRemediation {
		return
	}
	f.remediation = &plan
}

// Remediation returns the plan once fetched.
func (f *Flow) Remediation() *content.RemediationPlan { return f.remediation }

// RetryDrill is the only exit from REMEDIATION: the same question set is
// permuted, counters reset, and the drill re-entered. Questions are not
// regenerated.
func (f *Flow) RetryDrill() {
	if f.phase != PhaseRemediation {
		return
	}
	qs := make([]content.DrillQuestion, len(f.drill.questions))
	copy(qs, f.drill.questions)
	f.rng.Shuffle(len(qs), func(a, b int) { qs[a], qs[b] = qs[b], qs[a] })
	f.drill = drillState{questions: qs, loaded: true}
	f.remediation = nil
	f.phase = PhaseDrill
	f.epoch++
}

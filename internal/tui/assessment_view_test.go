package tui

import (
	"testing"

	"github.com/khanhngn/morpho/internal/assessment"
	"github.com/khanhngn/morpho/internal/progress"
)

// startTestExam opens a tier exam and delivers the generated questions.
func startTestExam(t *testing.T, app *App, tierID int) *examView {
	t.Helper()
	model, cmd := app.startAssessment(tierID)
	if model.(*App).state != stateAssessment {
		t.Fatalf("startAssessment should enter the exam state")
	}
	if cmd == nil {
		t.Fatalf("the exam must fetch questions")
	}
	app.Update(cmd())
	ev := app.exam
	if ev == nil {
		t.Fatalf("exam view missing")
	}
	return ev
}

// submitExam answers every question (wrongCount of them incorrectly), submits,
// and delivers the feedback, leaving the exam on the result card.
func submitExam(t *testing.T, app *App, ev *examView, wrongCount int) {
	t.Helper()
	total := len(ev.exam.Questions())
	for i := 0; i < total; i++ {
		if i < wrongCount {
			app.Update(keyMsg("down")) // options are [right, wrong]
		}
		app.Update(keyMsg("enter"))
		app.Update(keyMsg("n"))
	}
	if !ev.exam.CanSubmit() {
		t.Fatalf("all questions answered, submit should be allowed")
	}
	_, cmd := app.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatalf("submission should fetch feedback")
	}
	app.Update(cmd())
	if ev.exam.State() != assessment.StateSubmitted {
		t.Fatalf("exam state = %v", ev.exam.State())
	}
	if _, ok := ev.exam.Feedback(); !ok {
		t.Fatalf("feedback not applied")
	}
}

func TestExamPassEndToEnd(t *testing.T) {
	app := loggedInApp(t, fullProvider())
	ev := startTestExam(t, app, 1)
	if ev.exam.State() != assessment.StateReady {
		t.Fatalf("state = %v", ev.exam.State())
	}

	submitExam(t, app, ev, 0)

	// The save message fires after the feedback card delay.
	model, cmd := app.Update(examSaveMsg{tierID: 1})
	app = model.(*App)
	if cmd == nil {
		t.Fatalf("saving should emit the finish message")
	}
	model, _ = app.Update(cmd())
	app = model.(*App)

	if app.state != stateDashboard {
		t.Fatalf("finished exam should return to the dashboard, state = %d", app.state)
	}
	if !app.progress.TierUnlocked(2) {
		t.Fatalf("perfect score should unlock tier 2")
	}
	if app.progress.XP != progress.AssessmentXP {
		t.Fatalf("XP = %d", app.progress.XP)
	}
	if len(app.progress.Assessments) != 1 || !app.progress.Assessments[0].Passed {
		t.Fatalf("assessments = %+v", app.progress.Assessments)
	}
}

func TestExamFailureRecordedWithoutUnlock(t *testing.T) {
	app := loggedInApp(t, fullProvider())
	ev := startTestExam(t, app, 1)

	submitExam(t, app, ev, 4) // 6/10 is below the pass mark

	model, cmd := app.Update(examSaveMsg{tierID: 1})
	app = model.(*App)
	model, _ = app.Update(cmd())
	app = model.(*App)

	if app.progress.TierUnlocked(2) {
		t.Fatalf("a failed exam must not unlock the next tier")
	}
	if app.progress.XP != 0 {
		t.Fatalf("a failed exam awards no XP, got %d", app.progress.XP)
	}
	if len(app.progress.Assessments) != 1 || app.progress.Assessments[0].Passed {
		t.Fatalf("the attempt should still be recorded: %+v", app.progress.Assessments)
	}
}

func TestExamErrorStateRetries(t *testing.T) {
	prov := fullProvider()
	prov.examQuestions = nil
	app := loggedInApp(t, prov)
	ev := startTestExam(t, app, 1)
	if ev.exam.State() != assessment.StateError {
		t.Fatalf("no questions should error, state = %v", ev.exam.State())
	}

	prov.examQuestions = testDrillQuestions(10)
	_, retryCmd := app.Update(keyMsg("r"))
	if retryCmd == nil {
		t.Fatalf("retry should refetch questions")
	}
	app.Update(retryCmd())
	if ev.exam.State() != assessment.StateReady {
		t.Fatalf("retry should recover, state = %v", ev.exam.State())
	}
}

func TestExamFeedbackRequestCarriesElapsedTime(t *testing.T) {
	prov := fullProvider()
	app := loggedInApp(t, prov)
	ev := startTestExam(t, app, 1)

	epoch := ev.exam.Epoch()
	app.Update(examTickMsg{tierID: 1, epoch: epoch})
	app.Update(examTickMsg{tierID: 1, epoch: epoch})
	app.Update(examTickMsg{tierID: 1, epoch: epoch})

	submitExam(t, app, ev, 2)

	if prov.evalCorrect != 8 || prov.evalTotal != 10 {
		t.Fatalf("feedback asked about %d/%d", prov.evalCorrect, prov.evalTotal)
	}
	if prov.evalElapsed != 3 {
		t.Fatalf("feedback should carry the elapsed seconds, got %d", prov.evalElapsed)
	}
}

func TestExamStaleTickIgnored(t *testing.T) {
	app := loggedInApp(t, fullProvider())
	ev := startTestExam(t, app, 1)

	epoch := ev.exam.Epoch()
	app.Update(examTickMsg{tierID: 1, epoch: epoch})
	if ev.exam.ElapsedSeconds() != 1 {
		t.Fatalf("elapsed = %d", ev.exam.ElapsedSeconds())
	}

	submitExam(t, app, ev, 0)

	// A tick scheduled before submission carries the old epoch.
	app.Update(examTickMsg{tierID: 1, epoch: epoch})
	if ev.exam.ElapsedSeconds() != 1 {
		t.Fatalf("the timer must stop at submission, elapsed = %d", ev.exam.ElapsedSeconds())
	}
}

func TestExamCancelRecordsNothing(t *testing.T) {
	app := loggedInApp(t, fullProvider())
	startTestExam(t, app, 1)

	_, cmd := app.Update(keyMsg("esc"))
	if cmd == nil {
		t.Fatalf("esc should cancel the exam")
	}
	model, _ := app.Update(cmd())
	app = model.(*App)

	if app.state != stateDashboard {
		t.Fatalf("cancel should return to the dashboard")
	}
	if len(app.progress.Assessments) != 0 || app.progress.XP != 0 {
		t.Fatalf("cancelled exam must not touch progress: %+v", app.progress)
	}
}

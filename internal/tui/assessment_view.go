// internal/tui/assessment_view.go
//
// The tier exam screen. It drives an assessment.Exam: loading, answering,
// submission, and the feedback card. A one-second tick runs the exam timer
// while answering; ticks carry the exam epoch so a timer from a retried or
// finished attempt dies silently instead of counting on.

package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/khanhngn/morpho/internal/assessment"
	"github.com/khanhngn/morpho/internal/content"
)

type examQuestionsMsg struct {
	tierID    int
	epoch     int
	questions []content.DrillQuestion
}

type examFeedbackMsg struct {
	tierID   int
	epoch    int
	feedback string
}

type examTickMsg struct {
	tierID int
	epoch  int
}

// examSaveMsg fires after the feedback card has been shown long enough to
// read; it carries nothing because the view holds the graded exam.
type examSaveMsg struct {
	tierID int
}

type examView struct {
	app  *App
	exam *assessment.Exam

	cursor       int // question being viewed
	optionCursor int
}

func newExamView(app *App, tierID int, roots []string) *examView {
	return &examView{
		app:  app,
		exam: assessment.New(tierID, roots, app.rng),
	}
}

func (v *examView) Init() tea.Cmd {
	return v.fetchQuestions()
}

func (v *examView) fetchQuestions() tea.Cmd {
	tierID := v.exam.TierID()
	epoch := v.exam.Epoch()
	roots := v.exam.SampledRoots()
	prov := v.app.provider
	return func() tea.Msg {
		qs := prov.TierAssessment(context.Background(), tierID, roots)
		return examQuestionsMsg{tierID: tierID, epoch: epoch, questions: qs}
	}
}

func (v *examView) fetchFeedback(correct, total int, missed []string, elapsed int) tea.Cmd {
	tierID := v.exam.TierID()
	epoch := v.exam.Epoch()
	prov := v.app.provider
	return func() tea.Msg {
		feedback := prov.EvaluateAssessment(context.Background(), tierID, correct, total, missed, elapsed)
		return examFeedbackMsg{tierID: tierID, epoch: epoch, feedback: feedback}
	}
}

func (v *examView) scheduleTick() tea.Cmd {
	tierID := v.exam.TierID()
	epoch := v.exam.Epoch()
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return examTickMsg{tierID: tierID, epoch: epoch}
	})
}

func (v *examView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case examQuestionsMsg:
		if msg.tierID != v.exam.TierID() || msg.epoch != v.exam.Epoch() {
			return nil
		}
		v.exam.SetQuestions(msg.epoch, msg.questions)
		if v.exam.State() == assessment.StateError {
			v.app.logWarn("Tier %d exam: no questions generated", msg.tierID)
			return nil
		}
		v.cursor = 0
		v.optionCursor = 0
		return v.scheduleTick()

	case examTickMsg:
		if msg.tierID != v.exam.TierID() || msg.epoch != v.exam.Epoch() {
			return nil
		}
		v.exam.Tick()
		if v.exam.State() != assessment.StateReady {
			return nil
		}
		return v.scheduleTick()

	case examFeedbackMsg:
		if msg.tierID != v.exam.TierID() || msg.epoch != v.exam.Epoch() {
			return nil
		}
		v.exam.SetFeedback(msg.epoch, msg.feedback)
		// Give the learner a moment with the card before returning.
		tierID := msg.tierID
		return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
			return examSaveMsg{tierID: tierID}
		})

	case examSaveMsg:
		if msg.tierID != v.exam.TierID() || v.exam.State() != assessment.StateSubmitted {
			return nil
		}
		result := v.exam.Result(time.Now())
		return func() tea.Msg { return examFinishedMsg{result: result} }

	case tea.KeyMsg:
		return v.handleKey(msg.String())
	}
	return nil
}

func (v *examView) handleKey(key string) tea.Cmd {
	if key == "esc" && v.exam.State() != assessment.StateSubmitted {
		v.app.logInfo("Tier %d exam cancelled", v.exam.TierID())
		return func() tea.Msg { return examCancelMsg{} }
	}

	switch v.exam.State() {
	case assessment.StateError:
		if key == "r" {
			v.exam.Retry()
			return v.fetchQuestions()
		}
	case assessment.StateReady:
		return v.handleReadyKey(key)
	}
	return nil
}

func (v *examView) handleReadyKey(key string) tea.Cmd {
	qs := v.exam.Questions()
	if len(qs) == 0 {
		return nil
	}
	q := qs[v.cursor]

	switch key {
	case "left", "p":
		if v.cursor > 0 {
			v.cursor--
			v.optionCursor = v.answerIndex()
		}
	case "right", "n":
		if v.cursor < len(qs)-1 {
			v.cursor++
			v.optionCursor = v.answerIndex()
		}
	case "up", "k":
		if v.optionCursor > 0 {
			v.optionCursor--
		}
	case "down", "j":
		if v.optionCursor < len(q.Options)-1 {
			v.optionCursor++
		}
	case "enter", " ":
		if v.optionCursor < len(q.Options) {
			v.exam.Select(v.cursor, q.Options[v.optionCursor])
		}
	case "s":
		if !v.exam.CanSubmit() {
			return nil
		}
		correct, total, missed, elapsed, ok := v.exam.Submit()
		if !ok {
			return nil
		}
		v.app.logInfo("Tier %d exam submitted · %d/%d in %ds", v.exam.TierID(), correct, total, elapsed)
		return v.fetchFeedback(correct, total, missed, elapsed)
	}
	return nil
}

// answerIndex positions the option cursor on the already-chosen option when
// revisiting a question.
func (v *examView) answerIndex() int {
	chosen, ok := v.exam.Answer(v.cursor)
	if !ok {
		return 0
	}
	for i, opt := range v.exam.Questions()[v.cursor].Options {
		if opt == chosen {
			return i
		}
	}
	return 0
}

func (v *examView) View(width int) string {
	title := lessonTitleStyle.Render(fmt.Sprintf("Tier %d Assessment", v.exam.TierID()))

	switch v.exam.State() {
	case assessment.StateLoading:
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			fmt.Sprintf("Generating Tier %d exam...", v.exam.TierID()),
			"Consulting the AI for challenging questions.",
			"", hintStyle.Render("Esc → cancel"))

	case assessment.StateError:
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			wrongStyle.Render("The exam could not be generated."),
			"", hintStyle.Render("r → try again    Esc → back to dashboard"))

	case assessment.StateSubmitted:
		return v.renderResult()
	}
	return v.renderQuestions(title)
}

func (v *examView) renderQuestions(title string) string {
	qs := v.exam.Questions()
	q := qs[v.cursor]
	answered := 0
	for i := range qs {
		if _, ok := v.exam.Answer(i); ok {
			answered++
		}
	}

	elapsed := v.exam.ElapsedSeconds()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		title, "  ",
		phaseTagStyle.Render(fmt.Sprintf("%02d:%02d", elapsed/60, elapsed%60)),
	)

	lines := []string{
		header,
		fmt.Sprintf("Question %d of %d · %d answered", v.cursor+1, len(qs), answered),
		"",
		q.Question,
		"",
	}
	chosen, _ := v.exam.Answer(v.cursor)
	for i, opt := range q.Options {
		marker := "  "
		if i == v.optionCursor {
			marker = "▸ "
		}
		label := opt
		if opt == chosen {
			label = correctStyle.Render("● " + opt)
		}
		lines = append(lines, marker+label)
	}
	lines = append(lines, "", hintStyle.Render("↑/↓ choose    Enter → select    ←/→ question    s → submit    Esc → cancel"))
	if v.exam.CanSubmit() {
		lines = append(lines, correctStyle.Render("All questions answered — press s to submit."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *examView) renderResult() string {
	var headline string
	if v.exam.Passed() {
		headline = correctStyle.Render("🏆 Tier Mastered!")
	} else {
		headline = wrongStyle.Render("Keep Practicing")
	}
	elapsed := v.exam.ElapsedSeconds()
	lines := []string{
		headline,
		"",
		fmt.Sprintf("%d / %d · %d%% · %02d:%02d",
			v.exam.CorrectCount(), len(v.exam.Questions()), v.exam.ScorePercent(), elapsed/60, elapsed%60),
		"",
	}
	if feedback, ok := v.exam.Feedback(); ok {
		lines = append(lines, "AI Assessment:", "“"+feedback+"”", "", hintStyle.Render("Saving results and returning..."))
	} else {
		lines = append(lines, "Evaluating your answers...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

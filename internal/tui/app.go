// internal/tui/app.go
//
// This is the main TUI for Morpho. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// The App is the single writer of learner progress: lesson and assessment
// views report outcomes as messages, and only the handlers here mutate and
// persist the record.

package tui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/khanhngn/morpho/internal/config"
	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/curriculum"
	"github.com/khanhngn/morpho/internal/journal"
	"github.com/khanhngn/morpho/internal/progress"
	"github.com/khanhngn/morpho/internal/provider"
)

// appState represents which "screen" we're on
type appState int

const (
	stateLogin      appState = iota // Username prompt
	stateDashboard                  // Tier and lesson browser
	stateLesson                     // Running a lesson flow
	stateAssessment                 // Running a tier exam
	stateGarden                     // The word garden
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRand overrides the random source used for shuffling and sampling.
func WithRand(rng *rand.Rand) AppOption {
	return func(a *App) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// lessonCompletedMsg fires the moment a lesson flow reaches its completion
// phase, so the learner's credit is recorded before any navigation away
// from the celebration screen.
type lessonCompletedMsg struct {
	lessonID string
}

// lessonClosedMsg leaves the lesson screen. toGarden shows the garden after
// a completed lesson; otherwise the dashboard.
type lessonClosedMsg struct {
	toGarden bool
}

// examFinishedMsg carries a graded, feedback-annotated exam attempt.
type examFinishedMsg struct {
	result progress.TierAssessmentResult
}

// examCancelMsg reports that the learner left the exam without submitting.
type examCancelMsg struct{}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state    appState
	config   *config.Config
	store    *progress.Store
	provider provider.Provider
	journal  *journal.Journal
	rng      *rand.Rand

	username string
	progress progress.Progress

	// Lessons enriched this session, so replays skip the fetch.
	enriched map[string]content.Enrichment

	loginInput textinput.Model
	loginErr   string

	dashboard list.Model
	bilingual bool

	lesson *lessonView
	exam   *examView

	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance. An existing session in the store is
// resumed straight to the dashboard.
func NewApp(cfg *config.Config, store *progress.Store, prov provider.Provider, j *journal.Journal, opts ...AppOption) *App {
	input := textinput.New()
	input.Placeholder = "username"
	input.CharLimit = 32
	input.Focus()

	dash := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	dash.Title = "❀ MORPHO"
	dash.SetShowStatusBar(false)
	dash.SetFilteringEnabled(false)

	bilingual := true
	if cfg != nil {
		bilingual = cfg.Settings.Bilingual
	}

	app := &App{
		state:      stateLogin,
		config:     cfg,
		store:      store,
		provider:   prov,
		journal:    j,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		loginInput: input,
		dashboard:  dash,
		bilingual:  bilingual,
		enriched:   map[string]content.Enrichment{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	if store != nil {
		if username, prog, err := store.CurrentSession(); err == nil {
			app.username = username
			app.progress = prog
			app.state = stateDashboard
			app.logInfo("Session resumed for %s", username)
		}
	}
	app.refreshDashboard()
	return app
}

// Progress exposes the current learner record.
func (a *App) Progress() progress.Progress {
	return a.progress
}

func (a *App) logInfo(format string, args ...any) {
	a.journal.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	a.journal.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	a.journal.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case lessonCompletedMsg:
		a.completeLesson(msg.lessonID)
		return a, nil

	case lessonClosedMsg:
		a.lesson = nil
		if msg.toGarden {
			a.state = stateGarden
		} else {
			a.state = stateDashboard
			a.refreshDashboard()
		}
		return a, nil

	case examFinishedMsg:
		a.applyExamResult(msg.result)
		a.exam = nil
		a.state = stateDashboard
		a.refreshDashboard()
		return a, nil

	case examCancelMsg:
		a.exam = nil
		a.state = stateDashboard
		a.refreshDashboard()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateDashboard {
				return a, tea.Quit
			}
		case "esc":
			if a.state == stateGarden {
				a.state = stateDashboard
				a.refreshDashboard()
				return a, nil
			}
		case "enter":
			switch a.state {
			case stateLogin:
				return a, a.submitLogin()
			case stateDashboard:
				return a.handleDashboardSelection()
			case stateGarden:
				a.state = stateDashboard
				a.refreshDashboard()
				return a, nil
			}
		case "v":
			if a.state == stateDashboard || a.state == stateGarden {
				a.toggleBilingual()
				return a, nil
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateLogin:
		var cmd tea.Cmd
		a.loginInput, cmd = a.loginInput.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	case stateDashboard:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	case stateLesson:
		if a.lesson != nil {
			if cmd := a.lesson.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	case stateAssessment:
		if a.exam != nil {
			if cmd := a.exam.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) submitLogin() tea.Cmd {
	username := strings.TrimSpace(a.loginInput.Value())
	if username == "" {
		a.loginErr = "Enter a username to begin."
		return nil
	}
	if a.store != nil {
		prog, err := a.store.Login(username)
		if err != nil {
			a.loginErr = err.Error()
			a.logError("Login failed for %s: %v", username, err)
			return nil
		}
		a.progress = prog
	} else {
		a.progress = progress.Default()
	}
	a.username = username
	a.loginErr = ""
	a.state = stateDashboard
	a.logInfo("Logged in as %s (%d XP)", username, a.progress.XP)
	a.refreshDashboard()
	return nil
}

func (a *App) logout() (tea.Model, tea.Cmd) {
	a.logInfo("Logged out %s", a.username)
	if a.store != nil {
		if err := a.store.Logout(); err != nil {
			a.logError("Logout: %v", err)
		}
	}
	a.username = ""
	a.progress = progress.Progress{}
	a.loginInput.SetValue("")
	a.loginInput.Focus()
	a.state = stateLogin
	return a, textinput.Blink
}

func (a *App) toggleBilingual() {
	a.bilingual = !a.bilingual
	if a.config != nil {
		if err := a.config.SetBilingual(a.bilingual); err != nil {
			a.logWarn("Persist bilingual setting: %v", err)
		}
	}
	if a.bilingual {
		a.statusMsg = "Bilingual mode on (EN + VI)"
	} else {
		a.statusMsg = "Bilingual mode off"
	}
}

func (a *App) startLesson(lessonID string) (tea.Model, tea.Cmd) {
	les, ok := curriculum.FindLesson(lessonID)
	if !ok {
		a.statusMsg = fmt.Sprintf("Unknown lesson %s", lessonID)
		return a, nil
	}
	if e, cached := a.enriched[lessonID]; cached {
		les = curriculum.MergeEnrichment(les, e)
	}
	a.logInfo("Lesson started · %s (%s)", les.Title, les.Root)
	a.lesson = newLessonView(a, les)
	a.state = stateLesson
	return a, a.lesson.Init()
}

func (a *App) startAssessment(tierID int) (tea.Model, tea.Cmd) {
	roots := curriculum.TierRoots(tierID)
	if len(roots) == 0 {
		a.statusMsg = fmt.Sprintf("No roots found for tier %d", tierID)
		return a, nil
	}
	a.logInfo("Tier %d exam started", tierID)
	a.exam = newExamView(a, tierID, roots)
	a.state = stateAssessment
	return a, a.exam.Init()
}

// completeLesson is the single place lesson completion touches the record.
func (a *App) completeLesson(lessonID string) {
	updated, first := progress.CompleteLesson(a.progress, lessonID)
	a.progress = updated
	if first {
		a.persist()
		a.statusMsg = fmt.Sprintf("Lesson complete · +%d XP", progress.LessonXP)
		a.logInfo("Lesson complete · %s · +%d XP", lessonID, progress.LessonXP)
	} else {
		a.statusMsg = "Lesson replayed · already mastered"
		a.logInfo("Lesson replayed · %s", lessonID)
	}
}

// applyExamResult is the single place assessment outcomes touch the record.
func (a *App) applyExamResult(r progress.TierAssessmentResult) {
	a.progress = progress.ApplyAssessment(a.progress, r)
	a.persist()
	if r.Passed {
		a.statusMsg = fmt.Sprintf("Tier %d mastered · +%d XP", r.TierID, progress.AssessmentXP)
		a.logInfo("Tier %d exam passed · score %d%%", r.TierID, r.Score)
	} else {
		a.statusMsg = fmt.Sprintf("Tier %d exam · %d%% · keep practicing", r.TierID, r.Score)
		a.logInfo("Tier %d exam failed · score %d%%", r.TierID, r.Score)
	}
}

func (a *App) persist() {
	if a.store == nil || a.username == "" {
		return
	}
	if err := a.store.SaveProgress(a.username, a.progress); err != nil {
		a.statusMsg = "Warning: progress could not be saved"
		a.logError("Save progress for %s: %v", a.username, err)
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(30, width/4)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}

	var content string
	switch a.state {
	case stateLogin:
		content = a.renderLogin()
	case stateDashboard:
		content = a.dashboard.View()
	case stateLesson:
		if a.lesson != nil {
			content = a.lesson.View(leftWidth - 4)
		}
	case stateAssessment:
		if a.exam != nil {
			content = a.exam.View(leftWidth - 4)
		}
	case stateGarden:
		content = a.renderGarden(leftWidth - 4)
	}
	return a.renderFrame(content, leftWidth, rightWidth)
}

func (a *App) renderLogin() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#E8871E")).
		Render("Welcome to Morpho")
	sub := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render("Learn English word roots, one dissection at a time.")
	lines := []string{title, sub, "", a.loginInput.View()}
	if a.loginErr != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render(a.loginErr))
	}
	lines = append(lines, "", hintStyle.Render("Enter → log in    Ctrl+C → quit"))
	return strings.Join(lines, "\n")
}

func (a *App) renderFrame(content string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#E8871E")).
		MarginBottom(1).
		Render("❀ MORPHO · The Word Garden")
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(lipgloss.NewStyle().Width(max(20, leftWidth-4)).Render(content))

	var body string
	if rightWidth > 0 && a.state != stateLogin {
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(a.renderStatsPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}

	sections := []string{header, body}
	if logPanel := a.renderJournalPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderStatsPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4CAF50")).
		Render(fmt.Sprintf("Gardener · %s", a.username))
	lines := []string{
		fmt.Sprintf("XP: %d", a.progress.XP),
		fmt.Sprintf("Trees: %d", a.progress.Garden.Trees),
		fmt.Sprintf("Lessons: %d", len(a.progress.CompletedLessons)),
	}
	for _, tier := range curriculum.Tiers() {
		switch {
		case a.progress.TierMastered(tier.ID):
			lines = append(lines, fmt.Sprintf("Tier %d: mastered", tier.ID))
		case a.progress.TierUnlocked(tier.ID):
			lines = append(lines, fmt.Sprintf("Tier %d: open", tier.ID))
		default:
			lines = append(lines, fmt.Sprintf("Tier %d: locked", tier.ID))
		}
	}
	lang := "EN"
	if a.bilingual {
		lang = "EN + VI"
	}
	lines = append(lines, fmt.Sprintf("Language: %s", lang))
	body := lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (a *App) renderJournalPanel() string {
	lines := a.journal.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("JOURNAL")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderGarden(width int) string {
	trees := a.progress.Garden.Trees
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4CAF50")).
		Render("The Word Garden")
	sub := "Every lesson learned plants a seed of knowledge."
	if a.bilingual {
		sub += "\nMỗi bài học là một hạt giống tri thức."
	}
	count := fmt.Sprintf("%d Roots Planted", trees)

	// One tree glyph per completed lesson, sprouts for the unearned rest.
	var row strings.Builder
	for i := 0; i < trees; i++ {
		if i%2 == 0 {
			row.WriteString("🌳 ")
		} else {
			row.WriteString("🌲 ")
		}
	}
	for i := trees; i < 20; i++ {
		row.WriteString("🌱 ")
	}
	garden := lipgloss.NewStyle().Width(max(20, width)).Render(row.String())
	hint := hintStyle.Render("Enter/Esc → dashboard    v → toggle language")
	return lipgloss.JoinVertical(lipgloss.Left, title, sub, "", count, "", garden, "", hint)
}

var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

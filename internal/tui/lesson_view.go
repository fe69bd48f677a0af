// internal/tui/lesson_view.go
//
// The lesson screen. It drives a lesson.Flow through its phases and owns
// only presentation state (cursors, the sandbox input); every rule lives in
// the flow. Async provider results come back as messages stamped with the
// lesson id and the flow epoch, so a response for an abandoned or retried
// lesson is discarded instead of corrupting the current one.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/khanhngn/morpho/internal/content"
	"github.com/khanhngn/morpho/internal/curriculum"
	"github.com/khanhngn/morpho/internal/dissect"
	"github.com/khanhngn/morpho/internal/lesson"
)

type enrichmentMsg struct {
	lessonID   string
	epoch      int
	enrichment content.Enrichment
}

type drillQuestionsMsg struct {
	lessonID  string
	epoch     int
	questions []content.DrillQuestion
}

type sandboxVerdictMsg struct {
	lessonID string
	epoch    int
	word     string
	verdict  content.SandboxVerdict
}

type remediationMsg struct {
	lessonID string
	epoch    int
	plan     content.RemediationPlan
}

// dissectFocus tracks which row of tiles the cursor is on.
type dissectFocus int

const (
	focusBank dissectFocus = iota
	focusSlots
)

type lessonView struct {
	app  *App
	flow *lesson.Flow

	// Dissection cursor state.
	focus  dissectFocus
	cursor int

	// Word lab state.
	derivCursor  int
	sandboxInput textinput.Model
	sandboxBusy  bool

	// Drill cursor state.
	optionCursor int

	remediationBusy bool
}

func newLessonView(app *App, les curriculum.Lesson) *lessonView {
	input := textinput.New()
	input.Placeholder = "try a word with this root"
	input.CharLimit = 40
	return &lessonView{
		app:          app,
		flow:         lesson.NewFlow(les, app.rng),
		sandboxInput: input,
	}
}

// Init kicks off enrichment, or skips straight to discovery when the lesson
// was already enriched this session.
func (v *lessonView) Init() tea.Cmd {
	if !v.flow.NeedsEnrichment() {
		v.flow.SkipPreparation()
		return nil
	}
	return v.fetchEnrichment()
}

func (v *lessonView) lessonID() string { return v.flow.Lesson().ID }

func (v *lessonView) fetchEnrichment() tea.Cmd {
	les := v.flow.Lesson()
	epoch := v.flow.Epoch()
	prov := v.app.provider
	return func() tea.Msg {
		e := prov.Enrich(context.Background(), les.Root, les.Category)
		return enrichmentMsg{lessonID: les.ID, epoch: epoch, enrichment: e}
	}
}

func (v *lessonView) fetchDrillQuestions() tea.Cmd {
	les := v.flow.Lesson()
	epoch := v.flow.Epoch()
	prov := v.app.provider
	meaning := les.EffectiveMeaning()
	return func() tea.Msg {
		qs := prov.DrillQuestions(context.Background(), les.Root, meaning)
		return drillQuestionsMsg{lessonID: les.ID, epoch: epoch, questions: qs}
	}
}

func (v *lessonView) verifySandboxWord(word string) tea.Cmd {
	les := v.flow.Lesson()
	epoch := v.flow.Epoch()
	prov := v.app.provider
	return func() tea.Msg {
		verdict := prov.VerifySandboxWord(context.Background(), les.Root, word)
		return sandboxVerdictMsg{lessonID: les.ID, epoch: epoch, word: word, verdict: verdict}
	}
}

func (v *lessonView) fetchRemediation() tea.Cmd {
	les := v.flow.Lesson()
	epoch := v.flow.Epoch()
	prov := v.app.provider
	missed := v.flow.MissedQuestions()
	return func() tea.Msg {
		plan := prov.RemediationPlan(context.Background(), les.Root, missed)
		return remediationMsg{lessonID: les.ID, epoch: epoch, plan: plan}
	}
}

func (v *lessonView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case enrichmentMsg:
		if msg.lessonID != v.lessonID() {
			return nil
		}
		if len(msg.enrichment.DissectionPack) == 0 {
			v.app.logWarn("Enrichment degraded for %s", v.flow.Lesson().Root)
		} else {
			v.app.enriched[msg.lessonID] = msg.enrichment
		}
		v.flow.ApplyEnrichment(msg.epoch, msg.enrichment)
		return nil

	case drillQuestionsMsg:
		if msg.lessonID != v.lessonID() {
			return nil
		}
		v.flow.ApplyDrillQuestions(msg.epoch, msg.questions)
		if v.flow.Phase() == lesson.PhaseComplete {
			v.app.logWarn("Drill skipped for %s: no questions generated", v.flow.Lesson().Root)
			return v.completionCmd()
		}
		return nil

	case sandboxVerdictMsg:
		if msg.lessonID != v.lessonID() {
			return nil
		}
		v.sandboxBusy = false
		v.flow.RecordSandbox(msg.epoch, msg.word, msg.verdict)
		return nil

	case remediationMsg:
		if msg.lessonID != v.lessonID() {
			return nil
		}
		v.remediationBusy = false
		v.flow.ApplyRemediation(msg.epoch, msg.plan)
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	if v.flow.Phase() == lesson.PhaseDerivation && v.sandboxInput.Focused() {
		var cmd tea.Cmd
		v.sandboxInput, cmd = v.sandboxInput.Update(msg)
		return cmd
	}
	return nil
}

// completionCmd reports the lesson done. It fires as soon as the flow
// reaches its completion phase: credit must not depend on which key the
// learner presses on the celebration screen.
func (v *lessonView) completionCmd() tea.Cmd {
	id := v.lessonID()
	return func() tea.Msg { return lessonCompletedMsg{lessonID: id} }
}

func (v *lessonView) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	// Global lesson keys.
	switch key {
	case "esc":
		if v.sandboxInput.Focused() {
			v.sandboxInput.Blur()
			return nil
		}
		if v.flow.Phase() != lesson.PhaseComplete {
			v.app.logInfo("Lesson exited early · %s (%s)", v.lessonID(), v.flow.Phase())
		}
		return func() tea.Msg { return lessonClosedMsg{} }
	case "v":
		if !v.sandboxInput.Focused() {
			v.app.toggleBilingual()
			return nil
		}
	}

	switch v.flow.Phase() {
	case lesson.PhaseDiscovery:
		if key == "enter" {
			v.flow.BeginDissection()
			v.focus = focusBank
			v.cursor = 0
		}
	case lesson.PhaseDissection:
		return v.handleDissectKey(key)
	case lesson.PhaseDerivation:
		return v.handleLabKey(msg)
	case lesson.PhaseDrill:
		return v.handleDrillKey(key)
	case lesson.PhaseRemediation:
		if key == "r" && v.flow.Remediation() != nil {
			v.flow.RetryDrill()
			v.optionCursor = 0
		}
	case lesson.PhaseComplete:
		if key == "enter" {
			return func() tea.Msg { return lessonClosedMsg{toGarden: true} }
		}
	}
	return nil
}

func (v *lessonView) handleDissectKey(key string) tea.Cmd {
	lab := v.flow.Lab()
	if lab == nil {
		return nil
	}

	if lab.Matched() {
		if key == "enter" {
			v.flow.AdvanceDissection()
			v.focus = focusBank
			v.cursor = 0
		}
		return nil
	}

	switch key {
	case "tab":
		if v.focus == focusBank {
			v.focus = focusSlots
		} else {
			v.focus = focusBank
		}
		v.cursor = 0
	case "left", "h":
		if v.cursor > 0 {
			v.cursor--
		}
	case "right", "l":
		limit := len(lab.Bank())
		if v.focus == focusSlots {
			limit = len(lab.Slots())
		}
		if v.cursor < limit-1 {
			v.cursor++
		}
	case "r":
		lab.Reset()
		v.focus = focusBank
		v.cursor = 0
	case "enter", " ":
		v.placeCursorTile(lab)
	}
	return nil
}

// placeCursorTile moves the tile under the cursor: a bank tile goes into
// the first empty slot, a slot tile goes back to the bank.
func (v *lessonView) placeCursorTile(lab *dissect.Lab) {
	if v.focus == focusBank {
		if v.cursor >= len(lab.Bank()) {
			return
		}
		slot := -1
		for i, s := range lab.Slots() {
			if s == nil {
				slot = i
				break
			}
		}
		if slot < 0 {
			return
		}
		if _, err := lab.Place(dissect.FromBank, v.cursor, slot); err != nil {
			v.app.logWarn("Dissection place: %v", err)
		}
		if v.cursor >= len(lab.Bank()) && v.cursor > 0 {
			v.cursor--
		}
		return
	}
	if v.cursor >= len(lab.Slots()) || lab.Slots()[v.cursor] == nil {
		return
	}
	if _, err := lab.Place(dissect.FromSlot, v.cursor, -1); err != nil {
		v.app.logWarn("Dissection return: %v", err)
	}
}

func (v *lessonView) handleLabKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if v.sandboxInput.Focused() {
		switch key {
		case "enter":
			word := strings.TrimSpace(v.sandboxInput.Value())
			if word == "" || v.sandboxBusy {
				return nil
			}
			v.sandboxBusy = true
			v.sandboxInput.SetValue("")
			v.sandboxInput.Blur()
			return v.verifySandboxWord(word)
		case "tab":
			v.sandboxInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		v.sandboxInput, cmd = v.sandboxInput.Update(msg)
		return cmd
	}

	switch key {
	case "up", "k":
		if v.derivCursor > 0 {
			v.derivCursor--
		}
	case "down", "j":
		if v.derivCursor < len(v.labDerivatives())-1 {
			v.derivCursor++
		}
	case "tab", "i":
		v.sandboxInput.Focus()
		return textinput.Blink
	case "enter", "c":
		if v.flow.BeginDrill() {
			return v.fetchDrillQuestions()
		}
	}
	return nil
}

// labDerivatives merges the provider-authored cards with a card for a
// validated sandbox word, so the learner's own discovery joins the list.
func (v *lessonView) labDerivatives() []content.RichDerivative {
	derivs := v.flow.Lesson().RichDerivatives()
	word, verdict := v.flow.Sandbox()
	if verdict != nil && verdict.IsValid {
		derivs = append(append([]content.RichDerivative(nil), derivs...), verdict.Derivative(word))
	}
	return derivs
}

func (v *lessonView) handleDrillKey(key string) tea.Cmd {
	if !v.flow.DrillReady() {
		return nil
	}
	q, ok := v.flow.DrillQuestion()
	if !ok {
		return nil
	}

	if v.flow.DrillLocked() {
		if key == "enter" {
			v.optionCursor = 0
			if graded := v.flow.NextDrillQuestion(); graded {
				switch v.flow.Phase() {
				case lesson.PhaseRemediation:
					v.remediationBusy = true
					return v.fetchRemediation()
				case lesson.PhaseComplete:
					return v.completionCmd()
				}
			}
		}
		return nil
	}

	switch key {
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
			v.flow.AnswerDrill(q.Options[v.optionCursor])
		}
	}
	return nil
}

// --- rendering ---

var (
	lessonTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E8871E"))
	phaseTagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	tileStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	tileCursorStyle  = tileStyle.BorderForeground(lipgloss.Color("#E8871E")).Bold(true)
	emptySlotStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#555555")).Padding(0, 1).Foreground(lipgloss.Color("#555555"))
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	wrongStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	viTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9C8ADE")).Italic(true)
)

func (v *lessonView) View(width int) string {
	les := v.flow.Lesson()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		lessonTitleStyle.Render(les.Title),
		"  ",
		phaseTagStyle.Render(fmt.Sprintf("[%s]", v.flow.Phase())),
	)

	var body string
	switch v.flow.Phase() {
	case lesson.PhasePreparing:
		body = "Consulting AI...\nGenerating your bilingual lesson."
	case lesson.PhaseDiscovery:
		body = v.renderDiscovery()
	case lesson.PhaseDissection:
		body = v.renderDissection(width)
	case lesson.PhaseDerivation:
		body = v.renderWordLab()
	case lesson.PhaseDrill:
		body = v.renderDrill()
	case lesson.PhaseRemediation:
		body = v.renderRemediation()
	case lesson.PhaseComplete:
		body = v.renderComplete()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

// bi appends the Vietnamese line under the English one when bilingual mode
// is on and the translation exists.
func (v *lessonView) bi(en, vi string) string {
	if v.app.bilingual && strings.TrimSpace(vi) != "" {
		return en + "\n" + viTextStyle.Render(vi)
	}
	return en
}

func (v *lessonView) renderDiscovery() string {
	les := v.flow.Lesson()
	e := les.Enrichment
	lines := []string{
		"THE ROOT",
		lessonTitleStyle.Render(les.Root),
	}
	if les.Phonetic != "" {
		lines = append(lines, les.Phonetic)
	} else if e != nil && e.Phonetic != "" {
		lines = append(lines, e.Phonetic)
	}
	if e != nil {
		lines = append(lines, "", v.bi(e.Meaning, e.MeaningVI))
		if e.Etymology != "" {
			lines = append(lines, "", "Etymology: "+v.bi(e.Etymology, e.EtymologyVI))
		}
		if e.Metaphor != "" {
			lines = append(lines, "", "Think of it as: "+v.bi(e.Metaphor, e.MetaphorVI))
		}
		if e.FunFact != "" {
			lines = append(lines, "", "Fun fact: "+v.bi(e.FunFact, e.FunFactVI))
		}
	} else {
		lines = append(lines, "", les.EffectiveMeaning())
	}
	lines = append(lines, "", hintStyle.Render("Enter → dissect words    v → toggle language    Esc → exit"))
	return strings.Join(lines, "\n")
}

func (v *lessonView) renderDissection(width int) string {
	lab := v.flow.Lab()
	target, ok := lab.Target()
	if !ok {
		return "Nothing left to dissect."
	}
	pos, total := lab.Position()

	lines := []string{
		fmt.Sprintf("Word %d of %d", pos+1, total),
		lessonTitleStyle.Render(target.Word),
	}
	if v.app.bilingual && target.Translation != "" {
		lines = append(lines, viTextStyle.Render(target.Translation))
	}

	// Slots row.
	var slots []string
	for i, s := range lab.Slots() {
		label := "____"
		style := emptySlotStyle
		if s != nil {
			label = s.Text
			style = tileStyle
		}
		if v.focus == focusSlots && i == v.cursor && !lab.Matched() {
			style = tileCursorStyle
		}
		slots = append(slots, style.Render(label))
	}
	lines = append(lines, "", "Build it:", lipgloss.JoinHorizontal(lipgloss.Top, slots...))

	// Bank row.
	var bank []string
	for i, p := range lab.Bank() {
		style := tileStyle
		if v.focus == focusBank && i == v.cursor && !lab.Matched() {
			style = tileCursorStyle
		}
		bank = append(bank, style.Render(fmt.Sprintf("%s %s", p.Text, strings.ToLower(string(p.Type)))))
	}
	if len(bank) > 0 {
		lines = append(lines, "", "Tiles:", lipgloss.JoinHorizontal(lipgloss.Top, bank...))
	}

	switch {
	case lab.Matched():
		lines = append(lines, "", correctStyle.Render("✓ Correct!"))
		for _, p := range target.Parts {
			lines = append(lines, fmt.Sprintf("  %s · %s", p.Text, v.bi(p.Meaning, p.MeaningVI)))
		}
		lines = append(lines, "", hintStyle.Render("Enter → next word"))
	case lab.Evaluate() == dissect.Mismatch:
		lines = append(lines, "", wrongStyle.Render("Not quite — the order matters."), hintStyle.Render("r → reset tiles"))
	default:
		lines = append(lines, "", hintStyle.Render("←/→ move    Enter → place/return tile    Tab → switch row    r → reset"))
	}
	return strings.Join(lines, "\n")
}

func (v *lessonView) renderWordLab() string {
	lines := []string{"Words grown from this root:"}
	derivs := v.labDerivatives()
	if len(derivs) == 0 {
		lines = append(lines, hintStyle.Render("No derivative cards available."))
	}
	for i, d := range derivs {
		marker := "  "
		if i == v.derivCursor {
			marker = "▸ "
		}
		lines = append(lines, marker+lessonTitleStyle.Render(d.Word))
		if i == v.derivCursor {
			lines = append(lines, "    "+v.bi(d.Definition, d.DefinitionVI))
			if d.Example != "" {
				lines = append(lines, "    "+v.bi("“"+d.Example+"”", d.ExampleVI))
			}
		}
	}

	lines = append(lines, "", "Sandbox — invent or recall a word with this root:")
	lines = append(lines, v.sandboxInput.View())
	if v.sandboxBusy {
		lines = append(lines, hintStyle.Render("Checking with the AI..."))
	} else if word, verdict := v.flow.Sandbox(); verdict != nil {
		if verdict.IsValid {
			lines = append(lines, correctStyle.Render(fmt.Sprintf("✓ %s is real!", word)), v.bi(verdict.Analysis, verdict.MeaningVI))
		} else {
			lines = append(lines, wrongStyle.Render(fmt.Sprintf("✗ %s", word)), verdict.Analysis)
		}
	}
	lines = append(lines, "", hintStyle.Render("↑/↓ browse    Tab → sandbox    Enter → start the drill"))
	return strings.Join(lines, "\n")
}

func (v *lessonView) renderDrill() string {
	if !v.flow.DrillReady() {
		return "Writing your questions..."
	}
	q, ok := v.flow.DrillQuestion()
	if !ok {
		return "No questions available."
	}
	index, total, correct := v.flow.DrillProgress()

	lines := []string{
		fmt.Sprintf("Question %d of %d · %d correct · score %d", index+1, total, correct, correct*10),
		"",
		q.Question,
		"",
	}
	locked := v.flow.DrillLocked()
	selected := v.flow.DrillSelected()
	for i, opt := range q.Options {
		marker := "  "
		if !locked && i == v.optionCursor {
			marker = "▸ "
		}
		label := opt
		if locked {
			switch {
			case opt == q.CorrectAnswer:
				label = correctStyle.Render(opt + " ✓")
			case opt == selected:
				label = wrongStyle.Render(opt + " ✗")
			}
		}
		lines = append(lines, marker+label)
	}
	if locked {
		lines = append(lines, "", v.bi(q.Explanation, q.ExplanationVI))
		if index == total-1 {
			lines = append(lines, "", hintStyle.Render("Enter → finish & grade"))
		} else {
			lines = append(lines, "", hintStyle.Render("Enter → next question"))
		}
	} else {
		lines = append(lines, "", hintStyle.Render("↑/↓ choose    Enter → answer"))
	}
	return strings.Join(lines, "\n")
}

func (v *lessonView) renderRemediation() string {
	_, total, correct := v.flow.DrillProgress()
	lines := []string{
		wrongStyle.Render("Not quite there yet"),
		fmt.Sprintf("You scored %d of %d. %d correct answers pass the drill.", correct, total, lesson.DrillPassCount),
		"",
	}
	if v.remediationBusy {
		lines = append(lines, "Preparing your review plan...")
		return strings.Join(lines, "\n")
	}
	if plan := v.flow.Remediation(); plan != nil {
		lines = append(lines, plan.Analysis, "")
		for _, point := range plan.ReviewPoints {
			lines = append(lines, "  • "+point)
		}
		lines = append(lines, "", hintStyle.Render("r → retry the drill"))
	}
	return strings.Join(lines, "\n")
}

func (v *lessonView) renderComplete() string {
	_, total, correct := v.flow.DrillProgress()
	lines := []string{
		correctStyle.Render("Lesson complete!"),
	}
	if total > 0 {
		lines = append(lines, fmt.Sprintf("Drill score: %d / %d", correct, total))
	}
	if v.app.bilingual {
		lines = append(lines, viTextStyle.Render("Hoàn thành bài học!"))
	}
	lines = append(lines, "", hintStyle.Render("Enter → plant your tree in the garden"))
	return strings.Join(lines, "\n")
}

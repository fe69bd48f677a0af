// internal/tui/dashboard.go
//
// Dashboard list construction and selection handling. The dashboard is a
// flat list: each tier contributes an exam entry followed by its lessons,
// then the garden, logout, and quit entries. Locked tiers still show their
// exam entry as "Skip to this Tier" so a learner can test out of earlier
// material; their lessons stay visible but cannot be entered.

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khanhngn/morpho/internal/curriculum"
)

type dashKind int

const (
	dashLesson dashKind = iota
	dashExam
	dashGarden
	dashLogout
	dashQuit
)

type dashItem struct {
	kind     dashKind
	lessonID string
	tierID   int
	locked   bool
	title    string
	desc     string
}

func (i dashItem) Title() string       { return i.title }
func (i dashItem) Description() string { return i.desc }
func (i dashItem) FilterValue() string { return i.title }

// refreshDashboard rebuilds the list from the current learner record.
// Called after every progress mutation so unlock state is always derived
// fresh, never cached.
func (a *App) refreshDashboard() {
	items := []list.Item{}
	for _, tier := range curriculum.Tiers() {
		unlocked := a.progress.TierUnlocked(tier.ID)
		items = append(items, a.buildExamItem(tier, unlocked))
		for _, mod := range tier.Modules {
			for _, les := range mod.Lessons {
				items = append(items, a.buildLessonItem(tier, mod, les, unlocked))
			}
		}
	}
	items = append(items,
		dashItem{kind: dashGarden, title: "The Word Garden", desc: fmt.Sprintf("%d roots planted", a.progress.Garden.Trees)},
		dashItem{kind: dashLogout, title: "Logout", desc: fmt.Sprintf("End session for %s", a.username)},
		dashItem{kind: dashQuit, title: "Quit", desc: "Leave Morpho"},
	)

	selected := a.dashboard.Index()
	a.dashboard.SetItems(items)
	if selected < len(items) {
		a.dashboard.Select(selected)
	}
}

func (a *App) buildExamItem(tier curriculum.Tier, unlocked bool) dashItem {
	item := dashItem{kind: dashExam, tierID: tier.ID}
	switch {
	case a.progress.TierMastered(tier.ID):
		item.title = fmt.Sprintf("✓ Tier %d Mastered", tier.ID)
		item.desc = tier.Title
	case unlocked:
		item.title = fmt.Sprintf("Tier %d · Take Final Exam", tier.ID)
		item.desc = fmt.Sprintf("%s · pass to unlock tier %d", tier.Title, tier.ID+1)
	default:
		item.title = fmt.Sprintf("Tier %d · Skip to this Tier", tier.ID)
		item.desc = fmt.Sprintf("%s · pass the exam to unlock early", tier.Title)
	}
	return item
}

func (a *App) buildLessonItem(tier curriculum.Tier, mod curriculum.Module, les curriculum.Lesson, unlocked bool) dashItem {
	mastered := a.progress.TierMastered(tier.ID)
	done := a.progress.LessonCompleted(les.ID) || mastered

	title := les.Title
	if done {
		title = "✓ " + title
	}
	if !unlocked {
		title = "🔒 " + title
	}
	desc := fmt.Sprintf("%s · root %s", mod.Title, les.Root)
	return dashItem{
		kind:     dashLesson,
		lessonID: les.ID,
		tierID:   tier.ID,
		locked:   !unlocked,
		title:    title,
		desc:     desc,
	}
}

func (a *App) handleDashboardSelection() (tea.Model, tea.Cmd) {
	item, ok := a.dashboard.SelectedItem().(dashItem)
	if !ok {
		return a, nil
	}
	switch item.kind {
	case dashLesson:
		if item.locked {
			a.statusMsg = fmt.Sprintf("Tier %d is locked. Pass the previous exam or skip ahead.", item.tierID)
			return a, nil
		}
		return a.startLesson(item.lessonID)
	case dashExam:
		if a.progress.TierMastered(item.tierID) {
			a.statusMsg = fmt.Sprintf("Tier %d is already mastered.", item.tierID)
			return a, nil
		}
		return a.startAssessment(item.tierID)
	case dashGarden:
		a.state = stateGarden
		return a, nil
	case dashLogout:
		return a.logout()
	case dashQuit:
		return a, tea.Quit
	}
	return a, nil
}

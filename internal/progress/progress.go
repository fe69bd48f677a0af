// internal/progress/progress.go
//
// The durable learner record and the pure progression rules over it. The
// rules never mutate in place: they take a Progress value and return the
// updated value, so the application stays the single writer and the state
// machines never touch the record directly.

package progress

// XP awards. Lesson completion and tier mastery are the only XP sources.
const (
	LessonXP     = 100
	AssessmentXP = 500
)

// TierAssessmentResult is one attempt at a tier exam. Immutable once
// created; the history is append-only.
type TierAssessmentResult struct {
	TierID   int    `json:"tierId"`
	Score    int    `json:"score"` // rounded percentage 0-100
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
	Date     string `json:"date"` // RFC 3339
}

// Garden is the gamification counter: one tree per distinct lesson done.
type Garden struct {
	Trees int `json:"trees"`
	Level int `json:"level"`
}

// Progress is the full durable state for one learner.
type Progress struct {
	XP               int                    `json:"xp"`
	CompletedLessons []string               `json:"completedLessons"`
	UnlockedTiers    []int                  `json:"unlockedTiers"`
	Garden           Garden                 `json:"garden"`
	Assessments      []TierAssessmentResult `json:"assessments"`
}

// Default is the record a new learner starts with.
func Default() Progress {
	return Progress{
		CompletedLessons: []string{},
		UnlockedTiers:    []int{1},
		Garden:           Garden{Trees: 0, Level: 1},
		Assessments:      []TierAssessmentResult{},
	}
}

// LessonCompleted reports whether the lesson id is already in the record.
func (p Progress) LessonCompleted(id string) bool {
	for _, done := range p.CompletedLessons {
		if done == id {
			return true
		}
	}
	return false
}

// TierUnlocked derives tier availability from the full record. Tier 1 is
// always open; a later tier is open when explicitly unlocked or when any
// assessment on the prior tier passed. Derived on every read, never cached,
// so it cannot drift from the assessment history.
func (p Progress) TierUnlocked(tierID int) bool {
	if tierID == 1 {
		return true
	}
	for _, t := range p.UnlockedTiers {
		if t == tierID {
			return true
		}
	}
	for _, a := range p.Assessments {
		if a.TierID == tierID-1 && a.Passed {
			return true
		}
	}
	return false
}

// TierMastered reports whether any passed assessment exists for the tier.
// The dashboard shows a mastered tier's lessons as done.
func (p Progress) TierMastered(tierID int) bool {
	for _, a := range p.Assessments {
		if a.TierID == tierID && a.Passed {
			return true
		}
	}
	return false
}

// CompleteLesson records a finished lesson. Idempotent: replaying a lesson
// neither duplicates the id nor re-awards XP or garden growth. The second
// return value reports whether this completion was the first.
func CompleteLesson(p Progress, lessonID string) (Progress, bool) {
	if p.LessonCompleted(lessonID) {
		return p, false
	}
	p.CompletedLessons = append(append([]string(nil), p.CompletedLessons...), lessonID)
	p.XP += LessonXP
	p.Garden.Trees++
	return p, true
}

// ApplyAssessment appends an attempt to the history unconditionally. A
// passed attempt idempotently unlocks the assessed tier and the next one
// (the assessed tier matters when the learner skipped into it) and grants
// the mastery XP bonus.
func ApplyAssessment(p Progress, r TierAssessmentResult) Progress {
	p.Assessments = append(append([]TierAssessmentResult(nil), p.Assessments...), r)
	if !r.Passed {
		return p
	}
	p.UnlockedTiers = unlockTier(p.UnlockedTiers, r.TierID)
	p.UnlockedTiers = unlockTier(p.UnlockedTiers, r.TierID+1)
	p.XP += AssessmentXP
	return p
}

func unlockTier(tiers []int, id int) []int {
	for _, t := range tiers {
		if t == id {
			return tiers
		}
	}
	return append(append([]int(nil), tiers...), id)
}

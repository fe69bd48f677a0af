// internal/curriculum/curriculum.go
//
// Static curriculum tables and the Lesson entity. Lessons carry identity and
// tier placement; the detailed teaching content (meaning, etymology,
// dissection pack, derivatives) arrives later as an Enrichment record fetched
// from the content provider on first entry.

package curriculum

import (
	"strings"

	"github.com/khanhngn/morpho/internal/content"
)

// Lesson is one root/affix unit inside a module.
type Lesson struct {
	ID       string
	Title    string
	Root     string
	Tier     int
	Category string

	// Seeded hints; AI enrichment overrides the empty ones.
	Meaning  string
	Phonetic string
	Metaphor string

	Enrichment *content.Enrichment
}

// Enriched reports whether the lesson already carries usable AI content.
// A lesson needs enrichment until its dissection pack is populated.
func (l Lesson) Enriched() bool {
	return l.Enrichment != nil && len(l.Enrichment.DissectionPack) > 0
}

// DissectionPack returns the enriched pack, or nil when not yet fetched.
func (l Lesson) DissectionPack() []content.DissectionTarget {
	if l.Enrichment == nil {
		return nil
	}
	return l.Enrichment.DissectionPack
}

// RichDerivatives returns the enriched derivative cards, or nil.
func (l Lesson) RichDerivatives() []content.RichDerivative {
	if l.Enrichment == nil {
		return nil
	}
	return l.Enrichment.RichDerivatives
}

// EffectiveMeaning prefers the enriched meaning over the seeded one.
func (l Lesson) EffectiveMeaning() string {
	if l.Enrichment != nil && l.Enrichment.Meaning != "" {
		return l.Enrichment.Meaning
	}
	return l.Meaning
}

// MergeEnrichment attaches an enrichment record to a lesson. The merge is
// total: the base lesson's identity fields are never touched, seeded hints
// survive when the patch leaves the matching field empty, and the patch is
// stored whole so later phases see a consistent snapshot.
func MergeEnrichment(base Lesson, patch content.Enrichment) Lesson {
	merged := patch
	if merged.Meaning == "" {
		merged.Meaning = base.Meaning
	}
	if merged.Phonetic == "" {
		merged.Phonetic = base.Phonetic
	}
	if merged.Metaphor == "" {
		merged.Metaphor = base.Metaphor
	}
	base.Enrichment = &merged
	return base
}

// Module groups lessons inside a tier.
type Module struct {
	ID          string
	Title       string
	Description string
	Lessons     []Lesson
}

// Tier is one of the four curriculum stages. Progression past a tier is
// gated by its mastery assessment.
type Tier struct {
	ID          int
	Title       string
	Description string
	Modules     []Module
}

// lesson builds a stub lesson the way most table entries are declared.
func lesson(root, meaning, category string, tier int) Lesson {
	id := "l_" + strings.ToLower(root)
	return Lesson{
		ID:       id,
		Title:    root + " (" + meaning + ")",
		Root:     root,
		Tier:     tier,
		Category: category,
		Meaning:  meaning,
	}
}

var tier1Modules = []Module{
	{
		ID:          "m1_neg",
		Title:       "Negative Prefixes (The 'Not' Squad)",
		Description: "Learn how to say NO in fancy ways.",
		Lessons: []Lesson{
			{
				ID:       "l1_un",
				Title:    "UN- (Not/Reverse)",
				Root:     "UN-",
				Meaning:  "Not / Reverse action",
				Category: "Negative",
				Tier:     1,
				Phonetic: "/ʌn/",
				Metaphor: "A rewind button or a crossed-out sign.",
			},
			lesson("DIS-", "Apart/Away/Not", "Negative", 1),
			lesson("IN-/IM-", "Not/In", "Negative", 1),
			lesson("NON-", "Not", "Negative", 1),
			lesson("MIS-", "Wrong/Bad", "Negative", 1),
		},
	},
	{
		ID:          "m1_dir",
		Title:       "Direction & Time",
		Description: "Navigation through space and time.",
		Lessons: []Lesson{
			lesson("PRE-", "Before", "Time", 1),
			lesson("POST-", "After", "Time", 1),
			lesson("RE-", "Again/Back", "Direction", 1),
			lesson("EX-", "Out", "Direction", 1),
			lesson("INTER-", "Between", "Position", 1),
			lesson("TRANS-", "Across", "Position", 1),
			lesson("SUB-", "Under", "Position", 1),
			lesson("SUPER-", "Above", "Position", 1),
		},
	},
	{
		ID:          "m1_num",
		Title:       "Numbers & Quantity",
		Description: "Counting with ancient words.",
		Lessons: []Lesson{
			lesson("UNI-/MONO-", "One", "Numbers", 1),
			lesson("BI-/DU-", "Two", "Numbers", 1),
			lesson("TRI-", "Three", "Numbers", 1),
			lesson("MULTI-/POLY-", "Many", "Numbers", 1),
			lesson("SEMI-/HEMI-", "Half", "Numbers", 1),
		},
	},
	{
		ID:          "m1_shape",
		Title:       "Suffix Shape Shifters",
		Description: "Changing the grammar function.",
		Lessons: []Lesson{
			lesson("-ER/-OR", "Person who does", "Noun Maker", 1),
			lesson("-TION/-SION", "Action/State", "Noun Maker", 1),
			lesson("-ABLE/-IBLE", "Able to be", "Adjective Maker", 1),
			lesson("-IZE/-ATE", "To make/cause", "Verb Maker", 1),
			lesson("-OUS/-FUL", "Full of", "Adjective Maker", 1),
		},
	},
}

var tier2Modules = []Module{
	{
		ID:          "m2_body",
		Title:       "Hand, Foot & Body",
		Description: "Physical actions and body parts.",
		Lessons: []Lesson{
			lesson("MAN", "Hand", "Body", 2),
			lesson("PED/POD", "Foot", "Body", 2),
			lesson("FAC/FIC", "Make/Do", "Action", 2),
			lesson("CORP", "Body", "Body", 2),
			lesson("CAP/CAPIT", "Head", "Body", 2),
			lesson("DENT/DONT", "Tooth", "Body", 2),
			lesson("CARD/CORD", "Heart", "Body", 2),
		},
	},
	{
		ID:          "m2_senses",
		Title:       "See, Say & Sense",
		Description: "Perception and communication.",
		Lessons: []Lesson{
			lesson("SPEC/SPIC", "Look", "Senses", 2),
			lesson("VID/VIS", "See", "Senses", 2),
			lesson("AUD", "Hear", "Senses", 2),
			lesson("DIC/DICT", "Speak", "Communication", 2),
			lesson("VOC/VOK", "Voice/Call", "Communication", 2),
			lesson("SCRIB/SCRIPT", "Write", "Communication", 2),
			lesson("SENS/SENT", "Feel", "Senses", 2),
		},
	},
	{
		ID:          "m2_move",
		Title:       "Movement & Action",
		Description: "Roots that move things around.",
		Lessons: []Lesson{
			lesson("PORT", "Carry", "Movement", 2),
			lesson("JECT", "Throw", "Movement", 2),
			lesson("TRACT", "Pull/Drag", "Movement", 2),
			lesson("MIT/MISS", "Send", "Movement", 2),
			lesson("DUC/DUCT", "Lead", "Movement", 2),
			lesson("PEL/PULS", "Drive/Push", "Movement", 2),
			lesson("VEN/VENT", "Come", "Movement", 2),
		},
	},
	{
		ID:          "m2_elem",
		Title:       "Elemental Roots",
		Description: "Earth, Water, Life, and Death.",
		Lessons: []Lesson{
			lesson("AQUA/HYDR", "Water", "Nature", 2),
			lesson("TERR/GEO", "Earth", "Nature", 2),
			lesson("BIO", "Life", "Nature", 2),
			lesson("VIV/VIT", "Life/Live", "Nature", 2),
			lesson("MORT", "Death", "Nature", 2),
			lesson("LUM/LUC", "Light", "Nature", 2),
			lesson("THERM", "Heat", "Nature", 2),
		},
	},
}

var (
	structureRoots = []string{"STRUCT", "FORM", "MORPH", "RUPT", "PON/POS", "FIG", "HAB", "JOIN/JUNCT"}
	timeSpaceRoots = []string{"CHRON", "TEMP", "LOC", "MEDI", "SURG", "VAC", "MIGR", "CED/CESS"}
	peopleRoots    = []string{"DEMO", "POP", "ETHN", "ANTHROP", "GEN", "NAT", "PATR", "MATR"}
	mindRoots      = []string{"PSYCH", "PATH", "PHIL", "PHOB", "MEM", "COG", "SCI", "PUT"}
)

func rootLessons(roots []string, meaning, category string, tier int) []Lesson {
	lessons := make([]Lesson, 0, len(roots))
	for _, r := range roots {
		lessons = append(lessons, lesson(r, meaning, category, tier))
	}
	return lessons
}

var tier3Modules = []Module{
	{
		ID:          "m3_struct",
		Title:       "Structure & Form",
		Description: "Building blocks of reality.",
		Lessons:     rootLessons(structureRoots, "Shape/Build", "Structure", 3),
	},
	{
		ID:          "m3_time",
		Title:       "Time & Space II",
		Description: "Advanced spatial concepts.",
		Lessons:     rootLessons(timeSpaceRoots, "Time/Place", "Space", 3),
	},
	{
		ID:          "m3_people",
		Title:       "People & Society",
		Description: "Understanding humanity.",
		Lessons:     rootLessons(peopleRoots, "People", "Society", 3),
	},
	{
		ID:          "m3_mind",
		Title:       "Mind & Feeling",
		Description: "Psychology and emotion.",
		Lessons:     rootLessons(mindRoots, "Mind/Feeling", "Psychology", 3),
	},
}

// Advanced academic roots for C1/C2 level usage.
var advancedRoots = []string{
	"VER/VERI", "FID", "GREG", "SEQ/SEC", "AMB", "BELL", "BENE", "MAL",
	"CID/CIS", "CLAM", "CLAUS/CLUD", "CRED", "CUR/CURS", "DOM", "DUR",
	"EQU", "FER", "FLOR", "FLU", "FORT", "FRACT/FRAG", "GRAD/GRESS",
	"GRAV", "HERB", "HOSP", "JUR/JUS", "LAB", "LEG/LECT", "LIBER",
	"LOG/LOGU", "MAR", "MICRO", "MEGA", "MIN", "NAV", "NOV",
	"OMNI", "OPER", "PAC", "PAN", "PEL", "PEND", "PHON", "PLAC",
	"PRIM", "PROTO", "QUER/QUIS", "RAD", "RECT", "REG", "RID/RIS",
	"SANCT", "SAT", "SCOP", "SIMIL", "SOL", "SON", "SOPH", "STRIN/STRICT",
	"TACT/TANG", "TELE", "TEN/TAIN", "TERM", "TORT", "TOX", "TURB",
	"URB", "VAC", "VAL", "VERB", "VERT/VERS", "VIA", "VINC/VICT", "VOL",
}

var tier4Modules = []Module{
	{
		ID:          "m4_adv",
		Title:       "Academic Mastery A-M",
		Description: "Advanced roots for C1/C2 level usage.",
		Lessons:     rootLessons(advancedRoots[:40], "Advanced", "Academic", 4),
	},
	{
		ID:          "m4_adv2",
		Title:       "Academic Mastery N-Z",
		Description: "Completing the 200+ root collection.",
		Lessons:     rootLessons(advancedRoots[40:], "Advanced", "Academic", 4),
	},
}

var tiers = []Tier{
	{ID: 1, Title: "TIER 1: THE FOUNDATION", Description: "Master the toolkit: Prefixes and Suffixes.", Modules: tier1Modules},
	{ID: 2, Title: "TIER 2: THE CORE 50", Description: "High-frequency roots for survival.", Modules: tier2Modules},
	{ID: 3, Title: "TIER 3: EXPANSION 100", Description: "Academic and Business vocabulary.", Modules: tier3Modules},
	{ID: 4, Title: "TIER 4: MASTER 200", Description: "Complete etymological mastery.", Modules: tier4Modules},
}

// Tiers returns the full four-tier curriculum, ordered by tier id.
func Tiers() []Tier {
	return tiers
}

// FindTier returns the tier with the given id.
func FindTier(id int) (Tier, bool) {
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// FindLesson locates a lesson by id across the whole curriculum.
func FindLesson(id string) (Lesson, bool) {
	for _, t := range tiers {
		for _, m := range t.Modules {
			for _, l := range m.Lessons {
				if l.ID == id {
					return l, true
				}
			}
		}
	}
	return Lesson{}, false
}

// TierRoots gathers every root taught in a tier, in table order. The
// assessment generator samples from this set.
func TierRoots(tierID int) []string {
	t, ok := FindTier(tierID)
	if !ok {
		return nil
	}
	var roots []string
	for _, m := range t.Modules {
		for _, l := range m.Lessons {
			roots = append(roots, l.Root)
		}
	}
	return roots
}

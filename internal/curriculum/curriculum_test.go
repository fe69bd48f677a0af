package curriculum

import (
	"testing"

	"github.com/khanhngn/morpho/internal/content"
)

func TestCurriculumShape(t *testing.T) {
	ts := Tiers()
	if len(ts) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(ts))
	}
	seen := map[string]bool{}
	for _, tier := range ts {
		if len(tier.Modules) == 0 {
			t.Fatalf("tier %d has no modules", tier.ID)
		}
		for _, mod := range tier.Modules {
			for _, les := range mod.Lessons {
				if les.ID == "" || les.Root == "" {
					t.Fatalf("lesson in %s missing id or root: %+v", mod.ID, les)
				}
				if les.Tier != tier.ID {
					t.Fatalf("lesson %s carries tier %d inside tier %d", les.ID, les.Tier, tier.ID)
				}
				if seen[les.ID] {
					t.Fatalf("duplicate lesson id %s", les.ID)
				}
				seen[les.ID] = true
			}
		}
	}
}

func TestSeededUnLesson(t *testing.T) {
	les, ok := FindLesson("l1_un")
	if !ok {
		t.Fatalf("l1_un must exist")
	}
	if les.Root != "UN-" || les.Phonetic == "" || les.Metaphor == "" {
		t.Fatalf("l1_un should carry seeded hints, got %+v", les)
	}
}

func TestFindTierAndRoots(t *testing.T) {
	if _, ok := FindTier(5); ok {
		t.Fatalf("tier 5 must not exist")
	}
	roots := TierRoots(1)
	if len(roots) == 0 {
		t.Fatalf("tier 1 should expose roots for its assessment")
	}
	found := false
	for _, r := range roots {
		if r == "UN-" {
			found = true
		}
	}
	if !found {
		t.Fatalf("tier 1 roots should include UN-, got %v", roots)
	}
}

func TestMergeEnrichmentKeepsSeededHints(t *testing.T) {
	base, _ := FindLesson("l1_un")
	merged := MergeEnrichment(base, content.Enrichment{
		Meaning: "Not, or the reversal of an action",
		DissectionPack: []content.DissectionTarget{
			{Word: "unhappy", Parts: []content.WordPart{{Text: "un"}, {Text: "happy"}}},
		},
	})
	if merged.Enrichment == nil {
		t.Fatalf("merge must attach the enrichment")
	}
	if merged.Enrichment.Phonetic != base.Phonetic {
		t.Fatalf("seeded phonetic should survive an empty patch field")
	}
	if merged.Enrichment.Metaphor != base.Metaphor {
		t.Fatalf("seeded metaphor should survive an empty patch field")
	}
	if merged.EffectiveMeaning() != "Not, or the reversal of an action" {
		t.Fatalf("enriched meaning should win, got %q", merged.EffectiveMeaning())
	}
	if !merged.Enriched() {
		t.Fatalf("lesson with a pack is enriched")
	}
	if merged.ID != base.ID || merged.Root != base.Root {
		t.Fatalf("merge must not touch identity fields")
	}
}

func TestMergeEnrichmentWithSentinel(t *testing.T) {
	base, _ := FindLesson("l1_un")
	merged := MergeEnrichment(base, content.Enrichment{Meaning: "Error loading content"})
	if merged.Enriched() {
		t.Fatalf("a packless sentinel must not mark the lesson enriched")
	}
	if merged.EffectiveMeaning() == "" {
		t.Fatalf("lesson should still show some meaning")
	}
}

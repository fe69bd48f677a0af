// internal/dissect/lab.go
//
// The word-dissection matching engine. A Lab works through a pack of target
// words; for each word the learner moves morpheme tiles from an unordered
// bank into ordered slots until the arrangement matches the target's
// decomposition exactly. The engine is pure state + rules; rendering and
// input mapping live in the TUI.

package dissect

import (
	"fmt"
	"math/rand"

	"github.com/khanhngn/morpho/internal/content"
)

// Outcome is the result of evaluating the current arrangement.
type Outcome int

const (
	// Incomplete means at least one slot is still empty.
	Incomplete Outcome = iota
	// Match means every slot holds the right part in the right position.
	Match
	// Mismatch means all slots are filled but the order is wrong. This is a
	// normal learner state, recovered by Reset, not an error.
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "incomplete"
	}
}

// Source says where a tile is being picked up from.
type Source int

const (
	FromBank Source = iota
	FromSlot
)

// Lab holds the state of a dissection round over one pack of targets.
type Lab struct {
	pack    []content.DissectionTarget
	index   int
	bank    []content.WordPart
	slots   []*content.WordPart
	matched bool
	rng     *rand.Rand
}

// NewLab starts a lab over the given pack. An empty pack is legal: the lab
// reports PackComplete immediately so a degraded lesson can still proceed.
func NewLab(pack []content.DissectionTarget, rng *rand.Rand) *Lab {
	l := &Lab{pack: pack, rng: rng}
	if len(pack) > 0 {
		l.setupRound()
	}
	return l
}

// setupRound shuffles the bank and clears the slots for the current target.
func (l *Lab) setupRound() {
	target := l.pack[l.index]
	l.bank = shuffleParts(target.Parts, l.rng)
	l.slots = make([]*content.WordPart, len(target.Parts))
	l.matched = false
}

// shuffleParts returns a shuffled copy. For packs of more than one part the
// result is guaranteed to differ from the original order so the learner
// never sees the answer pre-assembled.
func shuffleParts(parts []content.WordPart, rng *rand.Rand) []content.WordPart {
	out := make([]content.WordPart, len(parts))
	copy(out, parts)
	if len(out) < 2 {
		return out
	}
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
		if !samePartOrder(out, parts) {
			return out
		}
	}
	// Identical texts in every position; any order is equivalent.
	return out
}

func samePartOrder(a, b []content.WordPart) bool {
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

// Target returns the word currently being reconstructed.
func (l *Lab) Target() (content.DissectionTarget, bool) {
	if l.index >= len(l.pack) {
		return content.DissectionTarget{}, false
	}
	return l.pack[l.index], true
}

// Position reports the 0-based index of the current target and pack size.
func (l *Lab) Position() (int, int) { return l.index, len(l.pack) }

// Bank returns the unplaced tiles in their current (shuffled) order.
func (l *Lab) Bank() []content.WordPart { return l.bank }

// Slots returns the ordered slot contents; nil entries are empty slots.
func (l *Lab) Slots() []*content.WordPart { return l.slots }

// Matched reports whether the current word has been assembled correctly.
func (l *Lab) Matched() bool { return l.matched }

// PackComplete reports whether every target in the pack has been matched
// and advanced past.
func (l *Lab) PackComplete() bool { return l.index >= len(l.pack) }

// Place moves one tile. From the bank into a slot (a displaced occupant
// returns to the bank), between two slots (swap), or from a slot back to
// the bank when slot < 0. Returns the evaluation outcome after the move.
func (l *Lab) Place(from Source, fromIndex, slot int) (Outcome, error) {
	if l.PackComplete() || l.matched {
		return Incomplete, fmt.Errorf("dissect: round already settled")
	}
	switch from {
	case FromBank:
		if fromIndex < 0 || fromIndex >= len(l.bank) {
			return Incomplete, fmt.Errorf("dissect: bank index %d out of range", fromIndex)
		}
		if slot < 0 || slot >= len(l.slots) {
			return Incomplete, fmt.Errorf("dissect: slot %d out of range", slot)
		}
		item := l.bank[fromIndex]
		l.bank = append(l.bank[:fromIndex], l.bank[fromIndex+1:]...)
		if existing := l.slots[slot]; existing != nil {
			l.bank = append(l.bank, *existing)
		}
		l.slots[slot] = &item
	case FromSlot:
		if fromIndex < 0 || fromIndex >= len(l.slots) || l.slots[fromIndex] == nil {
			return Incomplete, fmt.Errorf("dissect: no tile in slot %d", fromIndex)
		}
		item := l.slots[fromIndex]
		if slot < 0 {
			// Back to the bank.
			l.slots[fromIndex] = nil
			l.bank = append(l.bank, *item)
		} else {
			if slot >= len(l.slots) {
				return Incomplete, fmt.Errorf("dissect: slot %d out of range", slot)
			}
			l.slots[fromIndex] = l.slots[slot]
			l.slots[slot] = item
		}
	default:
		return Incomplete, fmt.Errorf("dissect: unknown source %d", from)
	}
	outcome := l.Evaluate()
	if outcome == Match {
		l.matched = true
	}
	return outcome, nil
}

// Evaluate compares the arrangement to the target. Match requires every
// slot occupied and strict positional text equality; duplicate-text parts
// are therefore distinguished by the slot they sit in, not by identity.
func (l *Lab) Evaluate() Outcome {
	target, ok := l.Target()
	if !ok {
		return Incomplete
	}
	for _, s := range l.slots {
		if s == nil {
			return Incomplete
		}
	}
	for i, s := range l.slots {
		if s.Text != target.Parts[i].Text {
			return Mismatch
		}
	}
	return Match
}

// Reset reshuffles the bank and empties the slots for another attempt at
// the current word.
func (l *Lab) Reset() {
	if l.PackComplete() {
		return
	}
	l.setupRound()
}

// Advance moves to the next target after a match. The learner triggers
// this explicitly; it is a no-op until the current word is matched.
// Returns true when the whole pack is finished.
func (l *Lab) Advance() bool {
	if l.PackComplete() {
		return true
	}
	if !l.matched {
		return false
	}
	l.index++
	if l.PackComplete() {
		return true
	}
	l.setupRound()
	return false
}

// TileCount reports bank plus occupied slots. It always equals the size
// of the current target's decomposition; tests assert this invariant after
// every operation.
func (l *Lab) TileCount() int {
	n := len(l.bank)
	for _, s := range l.slots {
		if s != nil {
			n++
		}
	}
	return n
}

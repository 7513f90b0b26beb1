package caption

import (
	"regexp"
	"strconv"
)

// PhraseRegisters is the number of phrase registers; register 0 collects every phrase
const PhraseRegisters = 10

var registerPrefixRegex = regexp.MustCompile(`^\$(\d)\s`)

// PhraseStore holds the phrases stored by storephrase commands
type PhraseStore struct {
	registers map[int][]string
}

// NewPhraseStore creates an empty phrase store
func NewPhraseStore() *PhraseStore {
	return &PhraseStore{registers: make(map[int][]string)}
}

// Store adds a phrase. A leading "$N " (N != 0) also files the phrase under register N.
// Every phrase lands in register 0. The stored text is returned.
func (ps *PhraseStore) Store(value string) string {
	if m := registerPrefixRegex.FindStringSubmatch(value); m != nil {
		register, _ := strconv.Atoi(m[1])
		if register != 0 {
			value = value[len(m[0]):]
			ps.registers[register] = append(ps.registers[register], value)
		}
	}
	ps.registers[0] = append(ps.registers[0], value)
	return value
}

// Has reports whether register n holds at least one phrase
func (ps *PhraseStore) Has(n int) bool {
	return len(ps.registers[n]) > 0
}

// Phrases returns a copy of the phrases in register n
func (ps *PhraseStore) Phrases(n int) []string {
	return append([]string(nil), ps.registers[n]...)
}

// Random returns a uniformly chosen phrase from register n, or "" when it is empty
func (ps *PhraseStore) Random(n int, rng Rand) string {
	return randomItem(ps.registers[n], rng)
}

// Counts returns the number of phrases held by each non-empty register
func (ps *PhraseStore) Counts() map[int]int {
	out := make(map[int]int, len(ps.registers))
	for n, phrases := range ps.registers {
		if len(phrases) > 0 {
			out[n] = len(phrases)
		}
	}
	return out
}

// Reset empties every register
func (ps *PhraseStore) Reset() {
	ps.registers = make(map[int][]string)
}

func randomItem(items []string, rng Rand) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	if rng == nil {
		return items[0]
	}
	return items[rng.IntN(len(items))]
}

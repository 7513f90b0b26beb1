package caption

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jeeftor/captionctl/internal/logging"
)

const (
	randomPhraseToken = "$RANDOM_PHRASE"
	tagPhraseToken    = "$TAG_PHRASE"
)

var registerRefRegex = regexp.MustCompile(`^\$(\d)$`)

// registerRef reports which phrase register a token refers to
func registerRef(token string) (int, bool) {
	if token == randomPhraseToken {
		return 0, true
	}
	if m := registerRefRegex.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

// referencedRegisters lists the phrase registers a command value refers to.
// Blink words may also be separated by '/'.
func referencedRegisters(value string, blink bool) []int {
	split := unicode.IsSpace
	if blink {
		split = func(r rune) bool { return r == '/' || unicode.IsSpace(r) }
	}

	var refs []int
	for _, token := range strings.FieldsFunc(value, split) {
		if n, ok := registerRef(token); ok {
			refs = append(refs, n)
		}
	}
	return refs
}

// substituter resolves phrase references at execution time
type substituter struct {
	phrases *PhraseStore
	host    *Host
	rng     Rand
	logger  *logging.ContextualLogger
}

// phrase resolves a value that is exactly one reference, returning anything else unchanged
func (s *substituter) phrase(value string) string {
	if n, ok := registerRef(value); ok {
		return s.phrases.Random(n, s.rng)
	}
	if value == tagPhraseToken {
		return s.tagPhrase()
	}
	return value
}

// text resolves a whole value, then every whitespace-delimited reference inside it
func (s *substituter) text(value string) string {
	if resolved := s.phrase(value); resolved != value {
		return resolved
	}
	if !strings.Contains(value, "$") {
		return value
	}

	fields := strings.Fields(value)
	for i, field := range fields {
		fields[i] = s.phrase(field)
	}
	return strings.Join(fields, " ")
}

// words splits a blink value into its '/'-separated words, resolving each
func (s *substituter) words(value string) []string {
	parts := strings.Split(s.phrase(value), "/")
	words := make([]string, len(parts))
	for i, part := range parts {
		words[i] = s.text(strings.TrimSpace(part))
	}
	return words
}

// tagPhrase picks a random line from a random phrase-bearing tag of the current content
func (s *substituter) tagPhrase() string {
	if s.host == nil || s.host.Tags == nil || s.host.Content == nil {
		return ""
	}
	content, ok := s.host.Content()
	if !ok {
		return ""
	}

	tags, err := s.host.Tags.Tags(content.Source, content.ClipID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("Tag lookup failed", "source", content.Source, "error", err)
		}
		return ""
	}

	var phrased []string
	for _, tag := range tags {
		if tag.PhraseString != "" {
			phrased = append(phrased, tag.PhraseString)
		}
	}
	chosen := randomItem(phrased, s.rng)
	if chosen == "" {
		return ""
	}
	return randomItem(SplitPhrases(chosen), s.rng)
}

// SplitPhrases splits a tag's newline-separated phrase string
func SplitPhrases(phraseString string) []string {
	if phraseString == "" {
		return nil
	}
	return strings.Split(phraseString, "\n")
}

package caption

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrEmptyProgram is returned for scripts that compile to no actions
var ErrEmptyProgram = errors.New("script contains no actions")

// Argument validation patterns
var (
	// Single non-negative integer: wait 500
	singleNumberRegex = regexp.MustCompile(`^\d+\s*$`)

	// One or two non-negative integers: setBlinkDuration 200 500
	rangeNumbersRegex = regexp.MustCompile(`^\d+\s*\d*\s*$`)
)

// ParseError reports the first invalid line of a script
type ParseError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error: {%d} '%s' - %s", e.Line, e.Text, e.Reason)
}

// Program is a compiled script
type Program struct {
	Sequential []Action         `json:"sequential"`
	Timed      map[int64]Action `json:"timed"`
	Order      []int64          `json:"order"` // Timed keys, ascending
}

// HasSequential reports whether the program drives the sequential loop
func (p *Program) HasSequential() bool {
	return len(p.Sequential) > 0
}

// HasTimed reports whether the program drives the timestamp loop
func (p *Program) HasTimed() bool {
	return len(p.Order) > 0
}

// Compile parses script text into a Program. storephrase lines are applied to
// phrases as they are met and stay applied when a later line fails.
func Compile(text string, phrases *PhraseStore) (*Program, error) {
	prog := &Program{Timed: make(map[int64]Action)}

	for i, raw := range strings.Split(text, "\n") {
		lineNumber := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || line[0] == '#' {
			continue
		}

		action, timestamp, timed, err := compileLine(line, lineNumber, phrases)
		if err != nil {
			return nil, err
		}
		if action == nil {
			continue
		}

		if timed {
			if _, exists := prog.Timed[timestamp]; exists {
				return nil, &ParseError{Line: lineNumber, Text: line, Reason: "duplicate timestamps"}
			}
			action.Timestamped = true
			prog.Timed[timestamp] = *action
			continue
		}
		prog.Sequential = append(prog.Sequential, *action)
	}

	if !prog.HasSequential() && len(prog.Timed) == 0 {
		return nil, ErrEmptyProgram
	}

	prog.Order = make([]int64, 0, len(prog.Timed))
	for ts := range prog.Timed {
		prog.Order = append(prog.Order, ts)
	}
	sort.Slice(prog.Order, func(i, j int) bool { return prog.Order[i] < prog.Order[j] })

	return prog, nil
}

// compileLine compiles one trimmed, non-comment line. A nil action with a nil
// error means the line was consumed at compile time.
func compileLine(line string, lineNumber int, phrases *PhraseStore) (*Action, int64, bool, error) {
	fail := func(reason string) (*Action, int64, bool, error) {
		return nil, 0, false, &ParseError{Line: lineNumber, Text: line, Reason: reason}
	}

	name, value := splitFirstWord(line)
	timestamp, timed := ParseTimestamp(name)
	if timed {
		if value == "" {
			timed = false
		} else {
			name, value = splitFirstWord(value)
		}
	}

	def, ok := lookupCommand(name)
	if !ok {
		return fail("unknown command")
	}

	action := &Action{Kind: def.kind, Key: def.key, Line: lineNumber, Text: line}

	switch def.kind {
	case CmdCount:
		if value == "" {
			return fail("missing parameters")
		}
		parts := strings.Split(value, " ")
		if len(parts) < 2 {
			return fail("missing second parameter")
		}
		if len(parts) > 2 {
			return fail("extra parameter(s)")
		}
		start, errStart := parseCount(parts[0])
		end, errEnd := parseCount(parts[1])
		if errStart != nil || errEnd != nil {
			return fail("invalid count command")
		}
		action.Start, action.End = start, end

	case CmdBlink, CmdCaption, CmdBigCaption:
		if value == "" {
			return fail("missing parameter")
		}
		for _, register := range referencedRegisters(value, def.kind == CmdBlink) {
			if !phrases.Has(register) {
				if register == 0 {
					return fail("no phrases stored")
				}
				return fail(fmt.Sprintf("no phrases stored in group %d", register))
			}
		}
		action.Value = value

	case CmdStorePhrase:
		if value == "" {
			return fail("missing parameter")
		}
		phrases.Store(value)
		return nil, 0, false, nil

	case CmdSetRange:
		if value == "" {
			return fail("missing parameters")
		}
		if len(strings.Split(value, " ")) > 2 {
			return fail("extra parameter(s)")
		}
		if !rangeNumbersRegex.MatchString(value) {
			return fail("invalid command")
		}
		for _, field := range strings.Fields(value) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return fail("invalid command")
			}
			action.Numbers = append(action.Numbers, n)
		}

	case CmdSetWaveRate, CmdSetBPMMulti, CmdWait:
		if value == "" {
			return fail("missing parameter")
		}
		if strings.Contains(value, " ") {
			return fail("extra parameter(s)")
		}
		if !singleNumberRegex.MatchString(value) {
			return fail("invalid command")
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fail("invalid command")
		}
		action.Number = n

	case CmdSetTF:
		if value == "" {
			return fail("missing parameter")
		}
		tf, ok := ParseTimingFunction(value)
		if !ok {
			return fail("invalid timing function")
		}
		action.Func = tf
	}

	return action, timestamp, timed, nil
}

// splitFirstWord splits a line into its first word and the (trimmed) remainder
func splitFirstWord(s string) (string, string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx <= 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func parseCount(s string) (int, error) {
	if !singleNumberRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid count value %q", s)
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// EffectiveParams applies the timing setters of a script, in line order, to the
// default parameters without executing anything else.
func EffectiveParams(text string) (Params, error) {
	prog, err := Compile(text, NewPhraseStore())
	if err != nil {
		return Params{}, err
	}

	var setters []Action
	setters = append(setters, prog.Sequential...)
	for _, ts := range prog.Order {
		setters = append(setters, prog.Timed[ts])
	}
	sort.SliceStable(setters, func(i, j int) bool { return setters[i].Line < setters[j].Line })

	params := DefaultParams()
	for _, action := range setters {
		applySetter(&params, action)
	}
	return params, nil
}

// applySetter applies a timing setter action; other actions are ignored
func applySetter(p *Params, action Action) {
	switch action.Kind {
	case CmdSetRange:
		p.SetRange(action.Key, action.Numbers)
	case CmdSetWaveRate:
		p.SetWaveRate(action.Key, action.Number)
	case CmdSetBPMMulti:
		p.SetBPMMulti(action.Key, action.Number)
	case CmdSetTF:
		p.SetFunc(action.Key, action.Func)
	}
}

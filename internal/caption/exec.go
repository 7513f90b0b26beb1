package caption

import (
	"html"
	"strconv"
	"time"

	"github.com/jeeftor/captionctl/internal/constants"
	"github.com/jeeftor/captionctl/internal/logging"
)

type stepKind int

const (
	stepStyle  stepKind = iota // apply the category style
	stepShow                   // make the display visible with text
	stepHide                   // hide the display
	stepWait                   // suspend on a timer
	stepScene                  // suspend until the next scene signal
	stepMutate                 // apply a timing setter
)

// step is one primitive of an expanded action
type step struct {
	kind     stepKind
	category Category
	text     string
	key      TimingKey     // stepWait: resolved when the step runs
	useKey   bool          // stepWait: resolve key instead of using fixed
	fixed    time.Duration // stepWait
	line     int
	action   Action // stepMutate
}

func waitKey(key TimingKey) step {
	return step{kind: stepWait, key: key, useKey: true}
}

func waitFixed(d time.Duration) step {
	return step{kind: stepWait, fixed: d}
}

// showFor shows text for the duration of key, then hides it
func showFor(text string, key TimingKey) []step {
	return []step{{kind: stepShow, text: text}, waitKey(key), {kind: stepHide}}
}

// stepSource yields the steps of one action in order
type stepSource interface {
	next() (step, bool)
}

// stepList is a fixed sequence of steps
type stepList struct {
	steps []step
}

func (l *stepList) next() (step, bool) {
	if len(l.steps) == 0 {
		return step{}, false
	}
	st := l.steps[0]
	l.steps = l.steps[1:]
	return st, true
}

// itemIter yields the items of a blink or count one at a time. last marks the final item.
type itemIter func() (text string, last bool, ok bool)

func wordItems(words []string) itemIter {
	i := 0
	return func() (string, bool, bool) {
		if i >= len(words) {
			return "", false, false
		}
		i++
		return words[i-1], i == len(words), true
	}
}

// countItems runs from start to end inclusive in steps of one without
// materialising the run, so huge counts cost nothing until they play
func countItems(start, end int) itemIter {
	v, done := start, false
	return func() (string, bool, bool) {
		if done {
			return "", false, false
		}
		cur := v
		switch {
		case cur == end:
			done = true
		case start < end:
			v++
		default:
			v--
		}
		return strconv.Itoa(cur), done, true
	}
}

// itemChain expands each blink word or count value into its show/wait steps
// when the runner reaches it
type itemChain struct {
	pending    []step
	items      itemIter
	duration   TimingKey
	delay      TimingKey
	delayScene bool
	groupScene bool
	timed      bool
	groupDelay time.Duration
	line       int
}

func (c *itemChain) next() (step, bool) {
	if len(c.pending) == 0 {
		text, last, ok := c.items()
		if !ok {
			return step{}, false
		}
		c.pending = append(c.pending, showFor(text, c.duration)...)
		switch {
		case last && (c.delayScene || c.groupScene || c.timed):
		case last:
			c.pending = append(c.pending, waitFixed(c.groupDelay))
		case c.delayScene:
			c.pending = append(c.pending, step{kind: stepScene, line: c.line})
		case !c.timed:
			c.pending = append(c.pending, waitKey(c.delay))
		}
	}
	st := c.pending[0]
	c.pending = c.pending[1:]
	return st, true
}

// expand turns an action into the steps that carry out its effect. Substitution and
// group delays are resolved here, when the action starts; item durations are
// resolved lazily by the runner.
func (e *Engine) expand(a Action) stepSource {
	switch a.Kind {
	case CmdCaption, CmdBigCaption:
		return &stepList{steps: e.expandCaption(a)}
	case CmdBlink:
		return e.expandItems(a, CategoryBlink, wordItems(e.subst.words(a.Value)), BlinkDuration, BlinkDelay, BlinkGroupDelay)
	case CmdCount:
		return e.expandItems(a, CategoryCount, countItems(a.Start, a.End), CountDuration, CountDelay, CountGroupDelay)
	case CmdWait:
		return &stepList{steps: []step{waitFixed(time.Duration(a.Number) * time.Millisecond)}}
	default:
		if a.Kind.IsSetter() {
			return &stepList{steps: []step{{kind: stepMutate, action: a}}}
		}
		return &stepList{}
	}
}

func (e *Engine) expandCaption(a Action) []step {
	category := CategoryCaption
	if a.Kind == CmdBigCaption {
		category = CategoryBigCaption
	}
	text := e.subst.text(a.Value)

	steps := []step{{kind: stepStyle, category: category}}
	if e.params.Get(CaptionDelay).Func == Scene && !a.Timestamped {
		steps = append(steps, step{kind: stepScene, line: a.Line})
		return append(steps, showFor(text, CaptionDuration)...)
	}

	steps = append(steps, showFor(text, CaptionDuration)...)
	if !a.Timestamped {
		steps = append(steps, waitKey(CaptionDelay))
	}
	return steps
}

// expandItems builds the per-item chain shared by blink and count
func (e *Engine) expandItems(a Action, category Category, items itemIter, duration, delay, group TimingKey) stepSource {
	c := &itemChain{
		items:      items,
		duration:   duration,
		delay:      delay,
		delayScene: e.params.Get(delay).Func == Scene,
		groupScene: e.params.Get(group).Func == Scene,
		timed:      a.Timestamped,
		line:       a.Line,
	}

	c.pending = []step{{kind: stepStyle, category: category}}
	if (c.delayScene || c.groupScene) && !c.timed {
		c.pending = append(c.pending, step{kind: stepScene, line: a.Line})
	}
	if !c.delayScene && !c.groupScene && !c.timed {
		c.groupDelay = e.resolve(group)
	}
	return c
}

// resolve computes the current duration for key
func (e *Engine) resolve(key TimingKey) time.Duration {
	t := e.params.Get(key)
	in := TimingInput{
		Func:     t.Func,
		Min:      t.Min,
		Max:      t.Max,
		WaveRate: t.WaveRate,
		BPMMulti: t.BPMMulti,
		Now:      e.clock.Now(),
		Rand:     e.rng,
		Fallback: int(constants.DefaultTimeToNextFrame / time.Millisecond),
	}
	if e.host.BPM != nil {
		in.BPM = e.host.BPM()
	}
	if e.host.NextFrame != nil {
		in.Fallback = int(e.host.NextFrame() / time.Millisecond)
	}
	return Resolve(in)
}

// runner executes the steps of one action. Suspending steps park the runner on a
// timer or the scene slot; resumption starts from a fresh stack.
type runner struct {
	e        *Engine
	steps    stepSource
	category string // of the most recent style step
	done     func()
}

// execute starts an action. It reports true when every step completed inline, in
// which case done is not called; otherwise done runs once the action completes.
func (e *Engine) execute(a Action, done func()) bool {
	r := &runner{e: e, steps: e.expand(a), done: done}
	return r.advance()
}

func (r *runner) advance() bool {
	e := r.e
	for {
		st, ok := r.steps.next()
		if !ok {
			return true
		}

		switch st.kind {
		case stepStyle:
			r.category = st.category.String()
			e.display.ApplyStyle(e.styles[st.category])

		case stepShow:
			logging.ShowText(r.category, st.text)
			e.display.SetVisible(true)
			e.display.SetText(html.EscapeString(st.text))

		case stepHide:
			e.display.SetVisible(false)

		case stepMutate:
			applySetter(&e.params, st.action)
			e.logger.Debug("Timing parameter updated", "line", st.action.Line, "key", st.action.Key.String())

		case stepWait:
			d := st.fixed
			if st.useKey {
				d = e.resolve(st.key)
			}
			if d <= 0 {
				continue
			}
			logging.WaitFor(d.String())
			e.after(d, r.resume)
			return false

		case stepScene:
			if e.session == nil {
				return false
			}
			logging.SceneWait(st.line)
			e.session.scene = r.resume
			return false
		}
	}
}

// resume continues after a suspension and hands over to the continuation on completion
func (r *runner) resume() {
	if r.advance() && r.done != nil {
		r.done()
	}
}

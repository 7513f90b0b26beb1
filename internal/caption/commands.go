package caption

// CommandKind is the closed set of caption script commands
type CommandKind int

const (
	CmdCount       CommandKind = iota // count A B
	CmdBlink                          // blink word/word/...
	CmdCaption                        // cap text
	CmdBigCaption                     // bigcap text
	CmdStorePhrase                    // storephrase [$N] text
	CmdWait                           // wait ms
	CmdSetRange                       // set<Key> min [max]
	CmdSetWaveRate                    // set<Key>WaveRate n
	CmdSetBPMMulti                    // set<Key>BPMMulti n
	CmdSetTF                          // set<Key>TF keyword
)

// String returns a human-readable representation of the CommandKind
func (k CommandKind) String() string {
	switch k {
	case CmdCount:
		return "count"
	case CmdBlink:
		return "blink"
	case CmdCaption:
		return "cap"
	case CmdBigCaption:
		return "bigcap"
	case CmdStorePhrase:
		return "storephrase"
	case CmdWait:
		return "wait"
	case CmdSetRange:
		return "set_range"
	case CmdSetWaveRate:
		return "set_wave_rate"
	case CmdSetBPMMulti:
		return "set_bpm_multi"
	case CmdSetTF:
		return "set_tf"
	default:
		return "unknown"
	}
}

// IsSetter reports whether the command only mutates timing parameters
func (k CommandKind) IsSetter() bool {
	return k == CmdSetRange || k == CmdSetWaveRate || k == CmdSetBPMMulti || k == CmdSetTF
}

type commandSpec struct {
	kind CommandKind
	key  TimingKey
}

var commandTable = buildCommandTable()

func buildCommandTable() map[string]commandSpec {
	table := map[string]commandSpec{
		"count":       {kind: CmdCount},
		"blink":       {kind: CmdBlink},
		"cap":         {kind: CmdCaption},
		"bigcap":      {kind: CmdBigCaption},
		"storephrase": {kind: CmdStorePhrase},
		"storePhrase": {kind: CmdStorePhrase},
		"wait":        {kind: CmdWait},
	}

	for key := TimingKey(0); key < timingKeyCount; key++ {
		stem := key.String()
		rangeName := "set" + stem
		switch key {
		case BlinkDuration, CaptionDuration, CountDuration:
			rangeName += "Duration"
		}
		table[rangeName] = commandSpec{kind: CmdSetRange, key: key}
		table["set"+stem+"WaveRate"] = commandSpec{kind: CmdSetWaveRate, key: key}
		table["set"+stem+"BPMMulti"] = commandSpec{kind: CmdSetBPMMulti, key: key}
		table["set"+stem+"TF"] = commandSpec{kind: CmdSetTF, key: key}
	}
	return table
}

// lookupCommand resolves a command keyword
func lookupCommand(name string) (commandSpec, bool) {
	def, ok := commandTable[name]
	return def, ok
}

// Action is one compiled script line
type Action struct {
	Kind        CommandKind    `json:"kind"`
	Line        int            `json:"line"`
	Text        string         `json:"text"`            // trimmed source line
	Value       string         `json:"value,omitempty"` // blink/cap/bigcap payload
	Start       int            `json:"start"`           // count run, generated as it plays
	End         int            `json:"end"`
	Key         TimingKey      `json:"key"`
	Numbers     []int          `json:"numbers,omitempty"` // set range values
	Number      int            `json:"number"`            // wait ms, wave rate, bpm multi
	Func        TimingFunction `json:"tf"`
	Timestamped bool           `json:"timestamped"`
}

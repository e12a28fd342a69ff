package terminal

// Key represents a parsed input key.
type Key uint16

const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete

	KeyCtrlC
	KeyCtrlD
	KeyCtrlL
	KeyCtrlQ
)

// escapeSequence maps the bytes after ESC [ (or ESC O) to a key.
type escapeSequence struct {
	seq string
	key Key
}

var csiSequences = []escapeSequence{
	{"A", KeyUp},
	{"B", KeyDown},
	{"C", KeyRight},
	{"D", KeyLeft},
	{"H", KeyHome},
	{"F", KeyEnd},
	{"1~", KeyHome},
	{"3~", KeyDelete},
	{"4~", KeyEnd},
	{"5~", KeyPageUp},
	{"6~", KeyPageDown},
}

var ss3Sequences = []escapeSequence{
	{"A", KeyUp},
	{"B", KeyDown},
	{"C", KeyRight},
	{"D", KeyLeft},
	{"H", KeyHome},
	{"F", KeyEnd},
}

var csiMap = buildSequenceMap(csiSequences)
var ss3Map = buildSequenceMap(ss3Sequences)

func buildSequenceMap(seqs []escapeSequence) map[string]Key {
	m := make(map[string]Key, len(seqs))
	for _, s := range seqs {
		m[s.seq] = s.key
	}
	return m
}

// lookupCSI performs zero-alloc map lookup; the string([]byte) conversion
// inline in map access does not allocate.
func lookupCSI(seq []byte) (Key, bool) {
	k, ok := csiMap[string(seq)]
	return k, ok
}

func lookupSS3(seq []byte) (Key, bool) {
	k, ok := ss3Map[string(seq)]
	return k, ok
}

// parseControl maps control characters to keys.
func parseControl(b byte) Event {
	switch b {
	case 0x03:
		return Event{Type: EventKey, Key: KeyCtrlC}
	case 0x04:
		return Event{Type: EventKey, Key: KeyCtrlD}
	case 0x08:
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x0c:
		return Event{Type: EventKey, Key: KeyCtrlL}
	case 0x11:
		return Event{Type: EventKey, Key: KeyCtrlQ}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	}
	return Event{Type: EventKey, Key: KeyNone}
}

package input

import "strings"

// Key names produced by Decode.
const (
	KeyF5    = "F5"
	KeyCtrlC = "Ctrl+C"
	KeyCtrlD = "Ctrl+D"
	KeyEnter = "Enter"
	KeyEsc   = "Esc"
)

// escape sequences emitted by common terminals for function keys.
var sequences = map[string]string{
	"\x1bOP":   "F1",
	"\x1bOQ":   "F2",
	"\x1bOR":   "F3",
	"\x1bOS":   "F4",
	"\x1b[15~": KeyF5,
	"\x1b[[E":  KeyF5, // linux console
	"\x1b[17~": "F6",
	"\x1b[18~": "F7",
	"\x1b[19~": "F8",
	"\x1b[20~": "F9",
	"\x1b[21~": "F10",
}

// Decode splits raw terminal input into key names. Printable bytes map to
// themselves; unknown escape sequences are dropped.
func Decode(buf []byte) []string {
	var keys []string
	s := string(buf)
	for len(s) > 0 {
		switch c := s[0]; {
		case c == 0x1b:
			key, n := matchSequence(s)
			if key != "" {
				keys = append(keys, key)
			}
			s = s[n:]
			continue
		case c == 0x03:
			keys = append(keys, KeyCtrlC)
		case c == 0x04:
			keys = append(keys, KeyCtrlD)
		case c == '\r' || c == '\n':
			keys = append(keys, KeyEnter)
		case c >= 0x20 && c < 0x7f:
			keys = append(keys, string(c))
		}
		s = s[1:]
	}
	return keys
}

// matchSequence returns the key for the escape sequence at the start of s and its length.
func matchSequence(s string) (string, int) {
	for seq, key := range sequences {
		if strings.HasPrefix(s, seq) {
			return key, len(seq)
		}
	}
	if len(s) == 1 {
		return KeyEsc, 1
	}
	// Skip an unknown CSI/SS3 sequence up to its final byte.
	if s[1] == '[' || s[1] == 'O' {
		for i := 2; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return "", i + 1
			}
		}
		return "", len(s)
	}
	return KeyEsc, 1
}

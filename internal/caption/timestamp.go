package caption

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Plain millisecond offset: 1500
	millisRegex = regexp.MustCompile(`^\d+$`)

	// Clock offset: MM:SS, HH:MM:SS, each with an optional .mmm fraction
	clockRegex = regexp.MustCompile(`^(?:(\d{1,2}):)?(\d{1,2}):(\d{1,2})(?:\.(\d{1,3}))?$`)
)

// ParseTimestamp parses a timestamp marker into milliseconds
func ParseTimestamp(token string) (int64, bool) {
	token = strings.TrimSpace(token)

	if millisRegex.MatchString(token) {
		ms, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return 0, false
		}
		return ms, true
	}

	m := clockRegex.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}

	hours := atoiOrZero(m[1])
	minutes := atoiOrZero(m[2])
	seconds := atoiOrZero(m[3])
	if minutes > 59 || seconds > 59 {
		return 0, false
	}

	var millis int64
	if frac := m[4]; frac != "" {
		// ".5" is half a second, ".05" fifty milliseconds
		millis = int64(atoiOrZero(frac + strings.Repeat("0", 3-len(frac))))
	}

	return int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + millis, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// Package tapdetector classifies a rolling bit history of a button GPIO
// into single/double/long tap gestures.
package tapdetector

import "strings"

// Classification is the result of examining a tap history.
type Classification int

const (
	// None means no recognized pattern is present yet.
	None Classification = iota
	Single
	Double
	Long
)

func (c Classification) String() string {
	switch c {
	case Single:
		return "single"
	case Double:
		return "double"
	case Long:
		return "long"
	default:
		return "none"
	}
}

var doublePatterns = []string{
	"1010", "10010", "10110", "100110", "101110", "1001110",
}

// Classify inspects history (oldest bit first, most recent on the right, as
// ASCII '0'/'1') and returns the gesture it contains, in long > double >
// single precedence, along with the remaining history after clearing on a
// match. A classification of None leaves history untouched.
func Classify(history string) (Classification, string) {
	if strings.Contains(history, "111111110") {
		return Long, ""
	}
	for _, p := range doublePatterns {
		if strings.Contains(history, p) {
			return Double, ""
		}
	}
	if strings.Contains(history, "1000") {
		return Single, ""
	}
	return None, history
}

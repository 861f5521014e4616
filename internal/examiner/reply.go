package examiner

import (
	"regexp"
	"strings"
)

// Separator divides the feedback half of an examiner reply from the next
// question.
const Separator = "|||"

// Reply is an examiner reply split into its two halves.
type Reply struct {
	Feedback     string
	Question     string
	HasSeparator bool
}

// ParseReply splits reply on the first Separator.
func ParseReply(reply string) Reply {
	return SplitReply(reply, Separator)
}

// SplitReply splits reply on the first occurrence of sep. With the separator
// present both halves are trimmed; without it the feedback is empty and the
// question is the whole reply, untouched.
func SplitReply(reply, sep string) Reply {
	before, after, found := strings.Cut(reply, sep)
	if !found {
		return Reply{Question: reply}
	}
	return Reply{
		Feedback:     strings.TrimSpace(before),
		Question:     strings.TrimSpace(after),
		HasSeparator: true,
	}
}

// PronunciationFlag is one [PRONUNCIATION ERROR: X->Y] tag from a repaired
// transcript.
type PronunciationFlag struct {
	Said     string `json:"said"`
	Intended string `json:"intended"`
}

var pronunciationTag = regexp.MustCompile(`\[PRONUNCIATION ERROR:\s*([^\]]*?)\s*->\s*([^\]]*?)\s*\]`)

// ParsePronunciationFlags extracts the pronunciation tags in order of
// appearance.
func ParsePronunciationFlags(text string) []PronunciationFlag {
	matches := pronunciationTag.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	flags := make([]PronunciationFlag, 0, len(matches))
	for _, m := range matches {
		flags = append(flags, PronunciationFlag{Said: m[1], Intended: m[2]})
	}
	return flags
}

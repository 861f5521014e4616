package examiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Reply
	}{
		{
			name:  "feedback and question",
			reply: "**Band: 6** Good job ||| What is your opinion on X?",
			want:  Reply{Feedback: "**Band: 6** Good job", Question: "What is your opinion on X?", HasSeparator: true},
		},
		{
			name:  "no separator keeps reply untouched",
			reply: "Just a question?",
			want:  Reply{Question: "Just a question?"},
		},
		{
			name:  "no separator does not trim",
			reply: "  Just a question?\n",
			want:  Reply{Question: "  Just a question?\n"},
		},
		{
			name:  "canned fallback",
			reply: "Error ||| I cannot connect to the brain right now.",
			want:  Reply{Feedback: "Error", Question: "I cannot connect to the brain right now.", HasSeparator: true},
		},
		{
			name:  "splits on first separator only",
			reply: "A ||| B ||| C",
			want:  Reply{Feedback: "A", Question: "B ||| C", HasSeparator: true},
		},
		{
			name:  "empty halves",
			reply: "|||",
			want:  Reply{HasSeparator: true},
		},
		{
			name:  "multiline feedback",
			reply: "**Band: 7**\n📝 Nice range of vocabulary.\n|||\nDescribe your hometown.",
			want:  Reply{Feedback: "**Band: 7**\n📝 Nice range of vocabulary.", Question: "Describe your hometown.", HasSeparator: true},
		},
		{
			name:  "empty reply",
			reply: "",
			want:  Reply{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReply(tt.reply))
		})
	}
}

func TestSplitReplyCustomSeparator(t *testing.T) {
	got := SplitReply("feedback ## question", "##")
	assert.Equal(t, Reply{Feedback: "feedback", Question: "question", HasSeparator: true}, got)
}

func TestParsePronunciationFlags(t *testing.T) {
	text := "I [PRONUNCIATION ERROR: tink->think] it is [PRONUNCIATION ERROR:  berry -> very ] good."

	flags := ParsePronunciationFlags(text)
	assert.Equal(t, []PronunciationFlag{
		{Said: "tink", Intended: "think"},
		{Said: "berry", Intended: "very"},
	}, flags)

	assert.Nil(t, ParsePronunciationFlags("I think it is very good."))
}

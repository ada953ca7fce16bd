package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscript_ContentWithUtterances(t *testing.T) {
	tr := &Transcript{
		Text: "ignored when utterances exist",
		Utterances: []Utterance{
			{Speaker: "A", Text: " Let's ship by Friday. "},
			{Speaker: "B", Text: ""},
			{Speaker: "B", Text: "I'll own the email draft."},
		},
	}

	assert.Equal(t, "Speaker A: Let's ship by Friday.\nSpeaker B: I'll own the email draft.", tr.Content())
	assert.False(t, tr.IsEmpty())
}

func TestTranscript_ContentPlain(t *testing.T) {
	tr := &Transcript{Text: "  hello there \n"}
	assert.Equal(t, "hello there", tr.Content())
}

func TestTranscript_Empty(t *testing.T) {
	var nilTranscript *Transcript
	assert.True(t, nilTranscript.IsEmpty())
	assert.True(t, (&Transcript{Text: "   "}).IsEmpty())
}

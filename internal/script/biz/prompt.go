package biz

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// TurnBand is the target dialogue size for a length
type TurnBand struct {
	Min      int
	Max      int
	Duration string
}

var turnBands = map[types.Length]TurnBand{
	types.LengthShort:    {Min: 8, Max: 12, Duration: "~3-4 minutes"},
	types.LengthMedium:   {Min: 15, Max: 20, Duration: "~7-10 minutes"},
	types.LengthDetailed: {Min: 25, Max: 35, Duration: "~12-15 minutes"},
}

// TurnBandFor returns the band of l, falling back to medium
func TurnBandFor(l types.Length) TurnBand {
	if b, ok := turnBands[l]; ok {
		return b
	}
	return turnBands[types.LengthMedium]
}

func (b TurnBand) String() string {
	return fmt.Sprintf("%d-%d dialogue turns (%s)", b.Min, b.Max, b.Duration)
}

// SystemPrompt describes the speakers, the target length and the JSON reply format
func SystemPrompt(speakers []types.SpeakerConfig, style types.Style, length types.Length) string {
	var desc strings.Builder
	for _, s := range speakers {
		fmt.Fprintf(&desc, "- %s (%s): %s\n", s.Name, s.Role, s.Personality)
	}

	first, second := exampleNames(speakers)

	return fmt.Sprintf(`You are a professional podcast script writer. Create an engaging %s podcast dialogue.

Speakers:
%s
Guidelines:
1. Target length: %s
2. Make it conversational and natural - use casual language, questions, acknowledgments
3. Include emotional cues in brackets: [enthusiastically], [curious], [thoughtfully], [excited], [chuckling]
4. Break down complex concepts into digestible pieces
5. Use examples and analogies when helpful
6. Maintain good pacing - alternate between speakers naturally
7. Add natural transitions and reactions
8. End with a clear conclusion or takeaway
9. Only use the speaker names listed above

Response Format (JSON):
{
    "dialogue": [
        {
            "speaker": "%s",
            "text": "[enthusiastically] Welcome to today's episode! We're diving into...",
            "emotion": "enthusiastic"
        },
        {
            "speaker": "%s",
            "text": "[curious] That sounds fascinating! Can you explain...",
            "emotion": "curious"
        }
    ]
}

Make it engaging, educational, and fun!`, style, desc.String(), TurnBandFor(length), first, second)
}

// UserPrompt embeds the topic and the knowledge text
func UserPrompt(topic, knowledge string, length types.Length) string {
	return fmt.Sprintf(`Topic: %s

Knowledge Content:
%s

Generate an engaging %s podcast dialogue based on this content.`, topic, knowledge, length)
}

func exampleNames(speakers []types.SpeakerConfig) (string, string) {
	switch len(speakers) {
	case 0:
		return "Alex", "Jordan"
	case 1:
		return speakers[0].Name, speakers[0].Name
	}
	return speakers[0].Name, speakers[1].Name
}

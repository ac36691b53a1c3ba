package biz

import (
	"strconv"
	"strings"

	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// DefaultVoices is the ordered pool of premade voices used when a slot has no caller voice
var DefaultVoices = []string{
	"9BWtsMINqrJLrRacOk9x", // Aria
	"IKne3meq5aSn9XLyUdCD", // Charlie
	"EXAVITQu4vr4xnSDxMaL", // Sarah
	"CwhRBWXzGAHq8TQ4Fs17", // Roger
	"FGY2WhTYpPnrIDTdsKH5", // Laura
	"JBFqnCBsd6RMkjVDRZzb", // George
	"XB0fDUnXU5powFXDhCwa", // Charlotte
	"TX3LPaxmHKxFdv7VOQHJ", // Liam
}

type persona struct {
	name        string
	role        string
	personality string
}

var styleTables = map[types.Style][]persona{
	types.StyleEducational: {
		{"Alex", "Host/Expert", "Knowledgeable, enthusiastic, clear explainer"},
		{"Jordan", "Curious Learner", "Curious, asks great questions, relatable"},
		{"Casey", "Practitioner", "Hands-on, connects ideas to real-world practice"},
	},
	types.StyleCasual: {
		{"Sam", "Co-host", "Laid-back, conversational, storyteller"},
		{"Riley", "Co-host", "Energetic, witty, brings fun facts"},
	},
	types.StyleDebate: {
		{"Morgan", "Advocate", "Analytical, presents one perspective"},
		{"Taylor", "Challenger", "Critical thinker, questions assumptions"},
		{"Avery", "Moderator", "Balanced, keeps the discussion on track"},
	},
}

// characteristics maps a caller trait to (role, personality); the name stays the slot default
var characteristics = map[string]persona{
	"expert":      {role: "Expert", personality: "Authoritative, precise, explains concepts clearly"},
	"curious":     {role: "Curious Learner", personality: "Inquisitive, asks great questions, relatable"},
	"skeptic":     {role: "Skeptic", personality: "Questions assumptions, asks for evidence"},
	"enthusiast":  {role: "Enthusiast", personality: "Energetic, excited about the topic, upbeat"},
	"storyteller": {role: "Storyteller", personality: "Narrative-driven, uses anecdotes and examples"},
	"analytical":  {role: "Analyst", personality: "Data-driven, breaks problems into parts"},
	"humorous":    {role: "Comic Relief", personality: "Witty, light-hearted, keeps things fun"},
	"practical":   {role: "Practitioner", personality: "Hands-on, focuses on real-world applications"},
}

const (
	genericRole        = "Speaker"
	genericPersonality = "Engaging conversationalist"
)

// KnownCharacteristics lists the accepted characteristic keys
func KnownCharacteristics() []string {
	return []string{"expert", "curious", "skeptic", "enthusiast", "storyteller", "analytical", "humorous", "practical"}
}

// AssignSpeakers resolves one SpeakerConfig per slot. numSpeakers is clamped to
// [0, MaxSpeakers]; the output depends only on its inputs.
func AssignSpeakers(numSpeakers int, style types.Style, voiceIDs, traits []string) []types.SpeakerConfig {
	if numSpeakers > types.MaxSpeakers {
		numSpeakers = types.MaxSpeakers
	}
	if numSpeakers < 0 {
		numSpeakers = 0
	}

	table := styleTables[style]
	speakers := make([]types.SpeakerConfig, 0, numSpeakers)
	for i := 0; i < numSpeakers; i++ {
		p := slotDefault(table, i)
		if i < len(traits) {
			if c, ok := characteristics[strings.ToLower(strings.TrimSpace(traits[i]))]; ok {
				p.role, p.personality = c.role, c.personality
			}
		}

		speakers = append(speakers, types.SpeakerConfig{
			Name:        p.name,
			Role:        p.role,
			Personality: p.personality,
			VoiceID:     voiceFor(i, voiceIDs),
		})
	}
	return speakers
}

func slotDefault(table []persona, i int) persona {
	if i < len(table) {
		return table[i]
	}
	return persona{
		name:        "Speaker " + strconv.Itoa(i+1),
		role:        genericRole,
		personality: genericPersonality,
	}
}

func voiceFor(i int, voiceIDs []string) string {
	if i < len(voiceIDs) {
		if v := strings.TrimSpace(voiceIDs[i]); v != "" {
			return v
		}
	}
	return DefaultVoices[i%len(DefaultVoices)]
}

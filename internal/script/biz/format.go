package biz

import "github.com/lk2023060901/knowcast-backend/internal/script/types"

// FormatForSynthesis maps each turn to the voice of its speaker. A speaker missing
// from speakers falls back to the first speaker's voice.
func FormatForSynthesis(script []types.DialogueTurn, speakers []types.SpeakerConfig) []types.SynthesisTurn {
	voices := make(map[string]string, len(speakers))
	for _, s := range speakers {
		voices[s.Name] = s.VoiceID
	}

	var fallback string
	if len(speakers) > 0 {
		fallback = speakers[0].VoiceID
	}

	turns := make([]types.SynthesisTurn, 0, len(script))
	for _, t := range script {
		voice, ok := voices[t.Speaker]
		if !ok {
			voice = fallback
		}
		turns = append(turns, types.SynthesisTurn{Text: t.Text, VoiceID: voice})
	}
	return turns
}

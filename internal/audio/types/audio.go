package types

import "github.com/lk2023060901/knowcast-backend/internal/pkg/result"

// AudioResult is the outcome of one synthesis
type AudioResult struct {
	result.Status
	AudioPath string `json:"audio_path,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	// EstimatedDuration is in seconds, derived from file size only
	EstimatedDuration float64 `json:"estimated_duration,omitempty"`
}

// Voice is one entry of the synthesis voice catalog
type Voice struct {
	VoiceID     string `json:"voice_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// VoicesResult is the outcome of a voice catalog lookup
type VoicesResult struct {
	result.Status
	Voices []Voice `json:"voices"`
}

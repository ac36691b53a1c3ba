package types

import (
	"github.com/lk2023060901/knowcast-backend/internal/pkg/result"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

// Stage names a pipeline step, used in logs and results
type Stage string

const (
	StageExtract Stage = "extract"
	StageScript  Stage = "script"
	StageAudio   Stage = "audio"
	StageDone    Stage = "succeeded"
)

// PodcastRequest is the input of the script then audio orchestration
type PodcastRequest struct {
	scripttypes.GenerateScriptRequest
	OutputPath string
}

// PipelineRequest is the input of a full query to podcast run
type PipelineRequest struct {
	Query           string
	Style           scripttypes.Style
	Length          scripttypes.Length
	NumSpeakers     int
	VoiceIDs        []string
	Characteristics []string
}

// PodcastMetadata is the script metadata merged with audio file metrics
type PodcastMetadata struct {
	scripttypes.ScriptMetadata
	FileSize          int64   `json:"file_size"`
	EstimatedDuration float64 `json:"estimated_duration"`
	SourceCount       int     `json:"source_count,omitempty"`
	ArchiveURL        string  `json:"archive_url,omitempty"`
}

// PodcastResult is the outcome of one orchestration. Stage is the step that ended it.
type PodcastResult struct {
	result.Status
	Stage     Stage                      `json:"stage"`
	AudioPath string                     `json:"audio_path,omitempty"`
	Script    []scripttypes.DialogueTurn `json:"script"`
	Metadata  *PodcastMetadata           `json:"metadata,omitempty"`
}

package types

type ProviderID string

const (
	ProviderValyu  ProviderID = "valyu"
	ProviderTavily ProviderID = "tavily"
)

// ProviderConfig represents answer provider configuration
type ProviderConfig struct {
	ID   ProviderID `json:"id" mapstructure:"id"`
	Name string     `json:"name" mapstructure:"name"`

	APIHost string `json:"api_host" mapstructure:"api_host"`
	// APIKey may hold several comma separated keys used in rotation
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`

	Timeout int `json:"timeout,omitempty" mapstructure:"timeout"` // seconds

	// Provider specific knobs
	SearchType     string  `json:"search_type,omitempty" mapstructure:"search_type"`
	MaxResults     int     `json:"max_results,omitempty" mapstructure:"max_results"`
	RelevanceFloor float64 `json:"relevance_threshold,omitempty" mapstructure:"relevance_threshold"`
}

// Validate validates the provider configuration
func (c *ProviderConfig) Validate() error {
	if c.ID == "" {
		return ErrInvalidProviderID
	}
	if c.Name == "" {
		return ErrInvalidProviderName
	}
	if c.APIHost == "" {
		return ErrInvalidAPIHost
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return ErrInvalidRelevance
	}
	return nil
}

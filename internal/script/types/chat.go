package types

// ChatRequest is one system+user prompt pair sent for a JSON object completion
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
}

// ChatResponse is the first choice of a completion
type ChatResponse struct {
	Content string
	Model   string
}

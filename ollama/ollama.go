// Package ollama implements [steward.Provider] for a local Ollama server.
// Unlike the hosted providers it requires no credential, but it does require
// an explicit endpoint. Streaming responses are newline-delimited JSON
// objects carrying a completion flag rather than SSE frames.
package ollama

const (
	defaultModel = "llama3.1"
	chatPath     = "/api/chat"
	providerName = "ollama"
)

// apiRequest is the JSON body sent to the Ollama chat endpoint.
type apiRequest struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  *apiOptions  `json:"options,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

// apiResponse is both the non-streaming envelope and one NDJSON stream
// object; Done marks the final object of a stream.
type apiResponse struct {
	Message apiMessage `json:"message"`
	Done    bool       `json:"done"`
}

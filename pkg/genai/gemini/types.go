package gemini

// Wire types for the Generative Language API. Only the fields this gateway
// reads or writes are modeled.

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
	Thought    bool        `json:"thought,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	ResponseModality []string `json:"responseModalities,omitempty"`
	ThinkingConfig   *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
}

// APIError is the provider's error envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Error *APIError `json:"error,omitempty"`
}

// Veo long-running prediction types.

type VideoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type VideoReference struct {
	Image         *VideoImage `json:"image,omitempty"`
	ReferenceType string      `json:"referenceType,omitempty"`
}

type Video struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	URI                string `json:"uri,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type VideoInstance struct {
	Prompt          string           `json:"prompt"`
	Image           *VideoImage      `json:"image,omitempty"`
	LastFrame       *VideoImage      `json:"lastFrame,omitempty"`
	ReferenceImages []VideoReference `json:"referenceImages,omitempty"`
	Video           *Video           `json:"video,omitempty"`
}

type VideoParameters struct {
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	DurationSeconds *int   `json:"durationSeconds,omitempty"`
}

type PredictLongRunningRequest struct {
	Instances  []VideoInstance  `json:"instances"`
	Parameters *VideoParameters `json:"parameters,omitempty"`
}

// Operation is a provider job handle polled until done.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *APIError          `json:"error,omitempty"`
	Response *OperationResponse `json:"response,omitempty"`
}

type OperationResponse struct {
	GenerateVideoResponse *GenerateVideoResponse `json:"generateVideoResponse,omitempty"`
}

type GenerateVideoResponse struct {
	GeneratedSamples []GeneratedSample `json:"generatedSamples,omitempty"`
}

type GeneratedSample struct {
	Video *Video `json:"video,omitempty"`
}

// ResultURI returns the downloadable video URI from a finished operation,
// or "" when the provider produced none.
func (o *Operation) ResultURI() string {
	if o == nil || o.Response == nil || o.Response.GenerateVideoResponse == nil {
		return ""
	}

	for _, sample := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video != nil && sample.Video.URI != "" {
			return sample.Video.URI
		}
	}

	return ""
}

// Package deepgram implements transcription.Provider against the Deepgram
// prerecorded speech-to-text API.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/skillsenselab/voicenotes/transcription"
)

const (
	// ProviderName is the registered name for the Deepgram provider.
	ProviderName = "deepgram"

	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-3"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Deepgram transcription provider.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements transcription.Provider using the Deepgram REST API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Deepgram transcription provider.
func NewProvider(cfg Config) *Provider {
	cfg.ApplyDefaults()
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured with an API key.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != ""
}

// Transcribe submits the audio file's bytes to Deepgram with smart
// formatting enabled and extracts the transcript from the first alternative
// of the first channel.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, err
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	q := url.Values{}
	q.Set("model", model)
	q.Set("smart_format", "true")
	if req.Language != "" {
		q.Set("language", req.Language)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/listen?"+q.Encode(), bytes.NewReader(audioData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("deepgram error (status %d): %s", resp.StatusCode, string(body))
	}

	var result listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", transcription.ErrResponseFormat, err)
	}

	return toResponse(&result)
}

// --- internal Deepgram API response types ---

type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results *listenResults `json:"results"`
}

type listenResults struct {
	Channels []listenChannel `json:"channels"`
}

type listenChannel struct {
	Alternatives     []listenAlternative `json:"alternatives"`
	DetectedLanguage string              `json:"detected_language"`
}

type listenAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

func toResponse(r *listenResponse) (*transcription.Response, error) {
	if r.Results == nil {
		return nil, fmt.Errorf("%w: missing results", transcription.ErrResponseFormat)
	}
	if len(r.Results.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", transcription.ErrResponseIndex)
	}
	channel := r.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil, fmt.Errorf("%w: no alternatives", transcription.ErrResponseIndex)
	}
	alt := channel.Alternatives[0]

	return &transcription.Response{
		Text:       alt.Transcript,
		Confidence: alt.Confidence,
		Duration:   r.Metadata.Duration,
		Language:   channel.DetectedLanguage,
	}, nil
}

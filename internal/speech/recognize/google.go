// Package recognize sends dictated audio to the Google speech v2 endpoint and
// picks the best transcript.
package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
)

const (
	DefaultEndpoint = "http://www.google.com/speech-api/v2/recognize"
	defaultLanguage = "en-US"
	defaultTimeout  = 30 * time.Second
)

var (
	ErrNoAPIKey     = errors.New("speech API key is not set")
	ErrNoTranscript = errors.New("no transcript recognized")
)

type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type Result struct {
	Alternative []Alternative `json:"alternative"`
	Final       bool          `json:"final"`
}

type Response struct {
	Result      []Result `json:"result"`
	ResultIndex int      `json:"result_index"`
}

type Config struct {
	APIKey   string
	Endpoint string
	Language string
	Timeout  time.Duration
}

type Google struct {
	http        *http.Client
	endpoint    string
	key         string
	language    string
	localLogger *logger.Logger
}

func NewGoogle(cfg Config) (*Google, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Google{
		http:        &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.Endpoint,
		key:         cfg.APIKey,
		language:    cfg.Language,
		localLogger: logger.NewLogger("recognize"),
	}, nil
}

// Recognize posts FLAC audio and returns the transcript with the highest
// confidence.
func (g *Google) Recognize(ctx context.Context, flacData []byte, sampleRate int) (string, error) {
	data := url.Values{}
	data.Set("client", "chromium")
	data.Set("lang", g.language)
	data.Set("key", g.key)
	data.Set("pFilter", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+data.Encode(), bytes.NewReader(flacData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", fmt.Sprintf("audio/x-flac; rate=%d", sampleRate))

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending audio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading recognizer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognizer answered %s", resp.Status)
	}

	best, err := Parse(string(body))
	if err != nil {
		return "", err
	}
	g.localLogger.Infof("recognized in %s, confidence %.2f", time.Since(start), best.Confidence)
	return best.Transcript, nil
}

// Parse reads the newline separated JSON documents the recognizer returns,
// which usually start with an empty result, and returns the best alternative
// of the first non-empty result.
func Parse(responseText string) (Alternative, error) {
	for _, line := range strings.Split(responseText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var response Response
		if err := json.Unmarshal([]byte(line), &response); err != nil {
			return Alternative{}, fmt.Errorf("decoding recognizer response: %w", err)
		}
		if len(response.Result) == 0 {
			continue
		}
		return findBestHypothesis(response.Result[0].Alternative)
	}
	return Alternative{}, ErrNoTranscript
}

func findBestHypothesis(alternatives []Alternative) (Alternative, error) {
	var best Alternative
	highestConfidence := -1.0
	for _, alternative := range alternatives {
		if alternative.Transcript == "" {
			continue
		}
		if alternative.Confidence > highestConfidence {
			highestConfidence = alternative.Confidence
			best = alternative
		}
	}
	if best.Transcript == "" {
		return Alternative{}, ErrNoTranscript
	}
	return best, nil
}

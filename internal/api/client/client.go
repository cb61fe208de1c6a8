package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
)

const (
	DefaultBaseURL = "http://localhost:8080"

	defaultModelsPath       = "/models"
	defaultStreamPath       = "/rag-query/stream"
	defaultDirectoryTimeout = 10 * time.Second
)

// LabelStyle controls how model identifiers are shown in the selector.
type LabelStyle int

const (
	// LabelGrouped renders "provider:name".
	LabelGrouped LabelStyle = iota
	// LabelBare renders the model name alone.
	LabelBare
)

// ClientConfig holds the configuration for the client. Zero fields fall back
// to the backend defaults.
type ClientConfig struct {
	BaseURL    string
	ModelsPath string
	StreamPath string
	Labels     LabelStyle
	History    chat.HistoryConvention

	// DirectoryTimeout bounds the model listing request. Streams have no
	// timeout since answers may take a long time to generate.
	DirectoryTimeout time.Duration

	HTTPClient *http.Client
}

// Client talks to the RAG backend.
type Client struct {
	http             *http.Client
	base             *url.URL
	modelsUrl        *url.URL
	streamUrl        *url.URL
	labels           LabelStyle
	history          chat.HistoryConvention
	directoryTimeout time.Duration
	localLogger      *logger.Logger
}

// NewClient creates a new API client with configurable base URL and endpoints.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.ModelsPath == "" {
		config.ModelsPath = defaultModelsPath
	}
	if config.StreamPath == "" {
		config.StreamPath = defaultStreamPath
	}
	if config.DirectoryTimeout == 0 {
		config.DirectoryTimeout = defaultDirectoryTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.New("base url must be absolute: " + config.BaseURL)
	}

	return &Client{
		http:             config.HTTPClient,
		base:             baseURL,
		modelsUrl:        baseURL.JoinPath(config.ModelsPath),
		streamUrl:        baseURL.JoinPath(config.StreamPath),
		labels:           config.Labels,
		history:          config.History,
		directoryTimeout: config.DirectoryTimeout,
		localLogger:      logger.NewLogger("api client"),
	}, nil
}

func (c *Client) GetModelsURL() string {
	return c.modelsUrl.String()
}

func (c *Client) GetStreamURL() string {
	return c.streamUrl.String()
}

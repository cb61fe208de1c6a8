// Package config resolves settings from flags, the environment and an optional
// .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	KeyURL         = "url"
	KeyDev         = "dev"
	KeyLogPath     = "log_path"
	KeyHistory     = "history"
	KeyLabels      = "labels"
	KeySpeechKey   = "speech_api_key"
	KeySileroModel = "silero_model"
)

type Config struct {
	BaseURL string
	Dev     bool
	LogPath string
	History chat.HistoryConvention
	Labels  client.LabelStyle

	// SpeechAPIKey enables voice dictation when set.
	SpeechAPIKey string
	SileroModel  string
}

// Loader wraps a viper instance with the environment bindings of the app.
type Loader struct {
	v *viper.Viper
}

// NewLoader reads .env files (missing files are fine) and binds the
// environment variables.
func NewLoader(envFiles ...string) *Loader {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		_ = godotenv.Load(envFiles...)
	}

	v := viper.New()
	v.SetDefault(KeyURL, client.DefaultBaseURL)
	v.SetDefault(KeyDev, false)
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyHistory, "full")
	v.SetDefault(KeyLabels, "grouped")
	v.SetDefault(KeySileroModel, "silero_vad.onnx")

	v.BindEnv(KeyURL, "RAG_API_URL")
	v.BindEnv(KeyDev, "RAGCHAT_DEV")
	v.BindEnv(KeyLogPath, "RAGCHAT_LOG_PATH")
	v.BindEnv(KeyHistory, "RAGCHAT_HISTORY")
	v.BindEnv(KeyLabels, "RAGCHAT_LABELS")
	v.BindEnv(KeySpeechKey, "API_KEY")
	v.BindEnv(KeySileroModel, "SILERO_MODEL_PATH")

	return &Loader{v: v}
}

// BindFlag lets a command line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	return l.v.BindPFlag(key, flag)
}

func (l *Loader) Load() (Config, error) {
	raw := struct {
		URL     string
		History string
		Labels  string
	}{
		URL:     l.v.GetString(KeyURL),
		History: l.v.GetString(KeyHistory),
		Labels:  l.v.GetString(KeyLabels),
	}

	err := validation.ValidateStruct(&raw,
		validation.Field(&raw.URL, validation.Required, is.URL, validation.By(httpScheme)),
		validation.Field(&raw.History, validation.In("full", "user")),
		validation.Field(&raw.Labels, validation.In("grouped", "bare")),
	)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	history, err := chat.ParseHistoryConvention(raw.History)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	labels := client.LabelGrouped
	if raw.Labels == "bare" {
		labels = client.LabelBare
	}

	return Config{
		BaseURL:      raw.URL,
		Dev:          l.v.GetBool(KeyDev),
		LogPath:      l.v.GetString(KeyLogPath),
		History:      history,
		Labels:       labels,
		SpeechAPIKey: l.v.GetString(KeySpeechKey),
		SileroModel:  l.v.GetString(KeySileroModel),
	}, nil
}

func httpScheme(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must use http or https")
	}
	return nil
}

// ClientConfig converts the settings into the backend client's configuration.
func (c Config) ClientConfig() client.ClientConfig {
	return client.ClientConfig{
		BaseURL: c.BaseURL,
		Labels:  c.Labels,
		History: c.History,
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/config"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
	"github.com/dminnear-rh/vp-rag-llm-ui/internal/ui"
)

var loader *config.Loader

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with a Validated Patterns RAG backend from the terminal",
	Long: `ragchat sends questions to a retrieval-augmented generation backend and
streams the answers into a terminal chat window.

Examples:
  ragchat                                   # start the chat window
  ragchat --url http://rag.example.com:8080
  ragchat models                            # list the models the backend offers
  ragchat ask "How are secrets managed?"    # one answer on stdout
  ragchat devserver                         # local backend for development`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
	Args:              cobra.NoArgs,
	RunE:              runChat,
}

func init() {
	loader = config.NewLoader()

	flags := rootCmd.PersistentFlags()
	flags.String("url", client.DefaultBaseURL, "RAG backend base URL (env RAG_API_URL)")
	flags.Bool("dev", false, "Development mode, shows the debug console")
	flags.String("log-path", "", "Directory to write the log file to")
	flags.String("history", "full", "History sent with each question: full or user")

	bind := map[string]string{
		config.KeyURL:     "url",
		config.KeyDev:     "dev",
		config.KeyLogPath: "log-path",
		config.KeyHistory: "history",
	}
	for key, name := range bind {
		if err := loader.BindFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// Execute runs the command line. An interrupt cancels the command context so
// streaming commands close their connection before exiting.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and starts logging. view is nil outside the
// chat window so dev logging goes to stderr.
func setup(view io.Writer) (config.Config, func(), error) {
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := logger.InitLogger(cfg.Dev, cfg.LogPath, view); err != nil {
		return config.Config{}, nil, err
	}

	closeLog := func() {
		logger.NewLogger("main").Close()
	}
	return cfg, closeLog, nil
}

func newClient(cfg config.Config) (*client.Client, error) {
	c, err := client.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return c, nil
}

func runChat(_ *cobra.Command, _ []string) error {
	app := ui.New()
	cfg, closeLog, err := setup(app.DebugConsole())
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	localLogger := logger.NewLogger("main")
	localLogger.Info("Using RAG backend at ", c.GetModelsURL())

	dictate, closeDictation := newDictation(cfg)
	defer closeDictation()

	return app.Run(ui.Deps{
		Session:     chat.NewSession(c),
		FetchModels: c.FetchModels,
		Dictate:     dictate,
	}, cfg.Dev)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/server"
)

var (
	devAddr     string
	devEnvelope string
	devDelay    time.Duration
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Serve a canned RAG backend for local development",
	Long: `devserver implements the /models and /rag-query/stream endpoints with
canned answers so the chat window can be tried without a real backend.`,
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devAddr, "addr", server.DefaultAddr, "Listen address")
	devserverCmd.Flags().StringVar(&devEnvelope, "envelope", string(server.EnvelopeContent), "Frame format: content or openai")
	devserverCmd.Flags().DurationVar(&devDelay, "delay", 50*time.Millisecond, "Pause between streamed frames")
	rootCmd.AddCommand(devserverCmd)
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	envelope := server.Envelope(devEnvelope)
	if envelope != server.EnvelopeContent && envelope != server.EnvelopeOpenAI {
		return fmt.Errorf("unknown envelope %q", devEnvelope)
	}

	_, closeLog, err := setup(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	srv := server.New(server.Config{
		Addr:       devAddr,
		Envelope:   envelope,
		ChunkDelay: devDelay,
	})
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving development backend on %s (%s frames)\n", devAddr, envelope)
	return srv.Run(cmd.Context())
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/chat"
)

var askModel string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and stream the answer to stdout",
	Example: `  ragchat ask "How do I add a secret to Vault?"
  ragchat ask --model ollama:mistral "What is a clustergroup?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "Model to answer with, as listed by 'ragchat models'")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return chat.ErrEmptyQuestion
	}

	out := cmd.OutOrStdout()
	if _, err := askQuestion(cmd.Context(), c, out, question, askModel); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// askQuestion streams one answer to w. The stream is cancelled on return so an
// early exit, such as a failed write, closes the connection.
func askQuestion(ctx context.Context, streamer chat.Streamer, w io.Writer, question, model string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := streamer.StreamTurn(ctx, question, nil, model)
	if err != nil {
		return "", err
	}
	return printSnapshots(ctx, w, updates)
}

// printSnapshots writes each snapshot's new suffix so the terminal shows the
// answer growing. A snapshot that does not extend the previous one is printed
// on a fresh line. It returns the final answer.
func printSnapshots(ctx context.Context, w io.Writer, updates <-chan chat.Snapshot) (string, error) {
	var last string
	for snapshot := range updates {
		text := snapshot.Text
		var err error
		if strings.HasPrefix(text, last) {
			_, err = io.WriteString(w, text[len(last):])
		} else {
			_, err = fmt.Fprintf(w, "\n%s", text)
		}
		if err != nil {
			return last, err
		}
		last = text
	}

	if err := ctx.Err(); err != nil {
		return last, err
	}
	if last == "" {
		return "", errors.New("stream closed without an answer")
	}
	return last, nil
}

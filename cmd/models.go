package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/api/client"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the backend",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, closeLog, err := setup(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	dir := c.FetchModels(cmd.Context())
	if dir.Empty() {
		return fmt.Errorf("no models available from %s", c.GetModelsURL())
	}
	printDirectory(cmd.OutOrStdout(), dir)
	return nil
}

// printDirectory writes one model per line, marking the default with '*'.
func printDirectory(w io.Writer, dir client.Directory) {
	for _, choice := range dir.Choices {
		marker := " "
		if choice == dir.Default {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, choice)
	}
}

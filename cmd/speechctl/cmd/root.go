package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wanghonghua666/AI-CALENDAR/internal/observability/logging"
)

var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "speechctl",
	Short: "Speech post-processing for calendar voice input",
	Long: `speechctl corrects speech-recognition transcripts and extracts
calendar events from them.

Commands:
  process   - run the pipeline locally
  send      - send a transcript to a running service over gRPC
  recognize - upload a WAV recording to a running service`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.InitWithWriter(logging.Config{Level: level, Format: "console"}, os.Stderr)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wanghonghua666/AI-CALENDAR/internal/postprocess"
	"github.com/wanghonghua666/AI-CALENDAR/internal/service/transcript"
)

var processOpts struct {
	confidence float64
	reference  string
	tables     string
	timezone   string
	asJSON     bool
}

var processCmd = &cobra.Command{
	Use:   "process [text...]",
	Short: "Run the pipeline locally on a transcript",
	Long: `Runs the post-processing pipeline on the given transcript, or on
stdin when no text is given, and prints the corrected text, the
corrections and the extracted event.`,
	Example: `  speechctl process 明天下午三点开会
  speechctl process --reference 2025-06-10 --json 后天上午十点看医生`,
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.Float64Var(&processOpts.confidence, "confidence", 0.9, "Recognizer confidence of the transcript")
	f.StringVar(&processOpts.reference, "reference", "", "Reference date (YYYY-MM-DD or RFC 3339), default now")
	f.StringVar(&processOpts.tables, "tables", "", "YAML locale tables (default built-in zh-CN)")
	f.StringVar(&processOpts.timezone, "timezone", "Local", "Time zone relative dates are resolved in")
	f.BoolVar(&processOpts.asJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(b))
	}

	loc, err := time.LoadLocation(processOpts.timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", processOpts.timezone, err)
	}
	opts := []postprocess.Option{postprocess.WithLocation(loc)}
	if processOpts.tables != "" {
		tables, err := postprocess.LoadTables(processOpts.tables)
		if err != nil {
			return err
		}
		opts = append(opts, postprocess.WithTables(tables))
	}
	p, err := postprocess.New(opts...)
	if err != nil {
		return err
	}

	ref, err := transcript.ParseReference(processOpts.reference, loc)
	if err != nil {
		return err
	}

	res := p.Process(text, processOpts.confidence, ref)
	if processOpts.asJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printResult(w io.Writer, res *postprocess.Result) {
	fmt.Fprintf(w, "Original:   %s\n", res.OriginalText)
	fmt.Fprintf(w, "Corrected:  %s\n", res.CorrectedText)
	fmt.Fprintf(w, "Confidence: %.2f\n", res.Confidence)

	if len(res.Corrections) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Corrections:")
		for _, c := range res.Corrections {
			fmt.Fprintf(w, "  [%-11s] %s -> %s (%.2f)\n", c.Type, c.Original, c.Corrected, c.Confidence)
		}
	}

	fmt.Fprintln(w)
	if res.EventInfo == nil {
		fmt.Fprintln(w, "No event found")
		return
	}
	e := res.EventInfo
	fmt.Fprintln(w, "Event:")
	fmt.Fprintf(w, "  Title: %s\n", e.Title)
	fmt.Fprintf(w, "  When:  %s %s-%s\n", e.Date, e.StartTime, e.EndTime)
	if e.Category != "" {
		fmt.Fprintf(w, "  Kind:  %s (%s)\n", e.Category, e.Color)
	}
	fmt.Fprintf(w, "  Score: %.2f\n", e.Confidence)
}

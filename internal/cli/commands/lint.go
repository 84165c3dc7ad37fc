package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
)

// lintClient is the API surface the lint command needs
type lintClient interface {
	TriggerCurriculumLint(serverURL string) error
	TriggerLessonLint(serverURL, track, slug string) error
	GetLessonLintReport(serverURL, track, slug string) (*client.LintReport, error)
	ListLintReports(serverURL string, limit int) ([]client.LintReport, error)
}

type lintOptions struct {
	client      lintClient
	server      *config.Server
	output      io.Writer
	serverAlias string
	reports     bool
}

// LintOption configures runLint
type LintOption func(*lintOptions)

func WithLintClient(c lintClient) LintOption {
	return func(o *lintOptions) { o.client = c }
}

func WithLintServer(s *config.Server) LintOption {
	return func(o *lintOptions) { o.server = s }
}

func WithLintOutput(w io.Writer) LintOption {
	return func(o *lintOptions) { o.output = w }
}

func WithLintReports() LintOption {
	return func(o *lintOptions) { o.reports = true }
}

// NewLintCmd creates the lint command
func NewLintCmd() *cobra.Command {
	var serverAlias string
	var reports bool

	cmd := &cobra.Command{
		Use:   "lint [track slug]",
		Short: "Run content checks on the curriculum or a single lesson",
		Long: `Run content checks on the curriculum or a single lesson.

Without arguments a curriculum-wide lint run is enqueued. With a track and a
slug, only that lesson is checked.

Examples:
  $ lessond lint                            # Lint the whole curriculum
  $ lessond lint python my-lesson           # Lint one lesson
  $ lessond lint --reports                  # Show recent lint reports
  $ lessond lint --reports python my-lesson # Show a lesson's latest report`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []LintOption{
				func(o *lintOptions) { o.serverAlias = serverAlias },
			}
			if reports {
				opts = append(opts, WithLintReports())
			}
			return runLint(args, opts...)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.Flags().BoolVar(&reports, "reports", false, "Show recent lint reports instead of triggering a run")

	return cmd
}

func runLint(args []string, opts ...LintOption) error {
	options := &lintOptions{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.server == nil {
		server, err := getSelectedServer(options.serverAlias)
		if err != nil {
			return err
		}
		options.server = server
	}

	if options.client == nil {
		options.client = client.New(options.server.URL)
	}

	if options.reports {
		if len(args) == 2 {
			return printLessonReport(options, args[0], args[1])
		}
		return printReports(options)
	}

	switch len(args) {
	case 0:
		if err := options.client.TriggerCurriculumLint(options.server.URL); err != nil {
			return err
		}
		fmt.Fprintln(options.output, "✓ Curriculum lint enqueued")
		fmt.Fprintln(options.output, "\nCheck results with: lessond lint --reports")
		return nil
	case 2:
		track, slug := args[0], args[1]
		if err := options.client.TriggerLessonLint(options.server.URL, track, slug); err != nil {
			return err
		}
		fmt.Fprintf(options.output, "✓ Lint enqueued for %s/%s\n", track, slug)
		return nil
	default:
		return fmt.Errorf("expected no arguments or a track and a slug")
	}
}

func printLessonReport(options *lintOptions, track, slug string) error {
	report, err := options.client.GetLessonLintReport(options.server.URL, track, slug)
	if err != nil {
		return err
	}

	fmt.Fprintf(options.output, "Latest report for %s/%s: %s (%d findings)\n",
		track, slug, report.Status, report.FindingCount)

	if report.ErrorMessage != "" {
		fmt.Fprintf(options.output, "Error: %s\n", report.ErrorMessage)
	}

	if len(report.Findings) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(options.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nCHECK\tSEVERITY\tLINE\tMESSAGE")
	for _, f := range report.Findings {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Check, f.Severity, f.Line, f.Message)
	}
	w.Flush()

	return nil
}

func printReports(options *lintOptions) error {
	reports, err := options.client.ListLintReports(options.server.URL, 20)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(options.output, "No lint reports found.")
		fmt.Fprintln(options.output, "\nStart a run with: lessond lint")
		return nil
	}

	w := tabwriter.NewWriter(options.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSCOPE\tSTATUS\tFINDINGS")
	fmt.Fprintln(w, "───────\t─────\t──────\t────────")
	for _, report := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			report.CreatedAt,
			report.Scope,
			report.Status,
			report.FindingCount,
		)
	}
	w.Flush()

	return nil
}

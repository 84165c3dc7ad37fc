package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
)

// listClient is the API surface the ls command needs, extracted so tests can
// substitute a mock
type listClient interface {
	ListLessons(serverURL, track string) ([]client.Lesson, error)
}

type listOptions struct {
	client      listClient
	server      *config.Server
	output      io.Writer
	serverAlias string
	track       string
}

// ListOption configures runList
type ListOption func(*listOptions)

func WithListClient(c listClient) ListOption {
	return func(o *listOptions) { o.client = c }
}

func WithListServer(s *config.Server) ListOption {
	return func(o *listOptions) { o.server = s }
}

func WithListOutput(w io.Writer) ListOption {
	return func(o *listOptions) { o.output = w }
}

func WithListTrack(track string) ListOption {
	return func(o *listOptions) { o.track = track }
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var serverAlias, track string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List lessons on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(
				WithListTrack(track),
				func(o *listOptions) { o.serverAlias = serverAlias },
			)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.Flags().StringVar(&track, "track", "", "Only list lessons in this track")

	return cmd
}

func runList(opts ...ListOption) error {
	options := &listOptions{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Resolve server unless injected
	if options.server == nil {
		server, err := getSelectedServer(options.serverAlias)
		if err != nil {
			return err
		}
		options.server = server
	}

	// Create API client unless injected
	if options.client == nil {
		options.client = client.New(options.server.URL)
	}

	lessons, err := options.client.ListLessons(options.server.URL, options.track)
	if err != nil {
		return err
	}

	if len(lessons) == 0 {
		fmt.Fprintln(options.output, "No lessons found.")
		fmt.Fprintln(options.output, "\nPublish a lesson with: lessond push <file.md>")
		return nil
	}

	// Display lessons in a table
	fmt.Fprintf(options.output, "Lessons on %s (%s):\n\n", options.server.Alias, options.server.URL)

	w := tabwriter.NewWriter(options.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tPOS\tSLUG\tTITLE\tSTATUS")
	fmt.Fprintln(w, "─────\t───\t────\t─────\t──────")

	for _, lesson := range lessons {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			lesson.Track,
			lesson.Position,
			lesson.Slug,
			lesson.Title,
			lessonStatus(lesson),
		)
	}

	w.Flush()

	return nil
}

func lessonStatus(lesson client.Lesson) string {
	var parts []string
	if lesson.Published {
		parts = append(parts, "published")
	} else {
		parts = append(parts, "draft")
	}
	if lesson.MembersOnly {
		parts = append(parts, "members-only")
	}
	return strings.Join(parts, ", ")
}

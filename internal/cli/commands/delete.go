package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
)

// deleteClient is the API surface the rm command needs
type deleteClient interface {
	DeleteLesson(serverURL, track, slug string) error
}

type deleteOptions struct {
	client      deleteClient
	server      *config.Server
	output      io.Writer
	serverAlias string
}

// DeleteOption configures runDelete
type DeleteOption func(*deleteOptions)

func WithDeleteClient(c deleteClient) DeleteOption {
	return func(o *deleteOptions) { o.client = c }
}

func WithDeleteServer(s *config.Server) DeleteOption {
	return func(o *deleteOptions) { o.server = s }
}

func WithDeleteOutput(w io.Writer) DeleteOption {
	return func(o *deleteOptions) { o.output = w }
}

// NewDeleteCmd creates the rm command
func NewDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <track> <slug>",
		Aliases: []string{"delete"},
		Short:   "Delete a lesson from the server",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0], args[1],
				func(o *deleteOptions) { o.serverAlias = serverAlias },
			)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runDelete(track, slug string, opts ...DeleteOption) error {
	options := &deleteOptions{
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

	if err := options.client.DeleteLesson(options.server.URL, track, slug); err != nil {
		return err
	}

	fmt.Fprintf(options.output, "✓ Deleted %s/%s\n", track, slug)
	return nil
}

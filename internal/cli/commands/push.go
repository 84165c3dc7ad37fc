package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lessond-dev/lessond/internal/cli/client"
	"github.com/lessond-dev/lessond/internal/cli/config"
	"github.com/lessond-dev/lessond/internal/markdown"
)

// pushClient is the API surface the push command needs
type pushClient interface {
	GetLesson(serverURL, track, slug string) (*client.Lesson, error)
	CreateLesson(serverURL string, payload client.LessonPayload) (*client.Lesson, error)
	UpdateLesson(serverURL, track, slug string, payload client.LessonPayload) (*client.Lesson, error)
}

type pushOptions struct {
	client      pushClient
	server      *config.Server
	output      io.Writer
	serverAlias string
	track       string
}

// PushOption configures runPush
type PushOption func(*pushOptions)

func WithPushClient(c pushClient) PushOption {
	return func(o *pushOptions) { o.client = c }
}

func WithPushServer(s *config.Server) PushOption {
	return func(o *pushOptions) { o.server = s }
}

func WithPushOutput(w io.Writer) PushOption {
	return func(o *pushOptions) { o.output = w }
}

func WithPushTrack(track string) PushOption {
	return func(o *pushOptions) { o.track = track }
}

// NewPushCmd creates the push command
func NewPushCmd() *cobra.Command {
	var serverAlias, track string

	cmd := &cobra.Command{
		Use:   "push <file.md> [file.md...]",
		Short: "Upload lesson Markdown files to the server",
		Long: `Upload lesson Markdown files to the server.

Lesson metadata is read from YAML frontmatter. A missing slug defaults to the
file name, and a missing track defaults to the parent directory name (or the
--track flag). Existing lessons are updated in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(args,
				WithPushTrack(track),
				func(o *pushOptions) { o.serverAlias = serverAlias },
			)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.Flags().StringVar(&track, "track", "", "Track to push lessons to (overrides frontmatter)")

	return cmd
}

func runPush(paths []string, opts ...PushOption) error {
	options := &pushOptions{
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

	for _, path := range paths {
		if err := pushFile(options, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return nil
}

func pushFile(options *pushOptions, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	meta, body, err := markdown.ParseFrontMatter(source)
	if err != nil {
		return err
	}

	payload := payloadFromMeta(meta, body, path, options.track)
	if payload.Track == "" {
		return fmt.Errorf("track is required (set it in frontmatter, use --track, or place the file in a track directory)")
	}
	if payload.Title == "" {
		return fmt.Errorf("title is required in frontmatter")
	}

	slug := meta.Slug
	if slug == "" {
		slug = slugFromPath(path)
	}
	payload.Slug = slug

	// Update if the lesson already exists, otherwise create it
	_, err = options.client.GetLesson(options.server.URL, payload.Track, slug)
	switch {
	case err == nil:
		if _, err := options.client.UpdateLesson(options.server.URL, payload.Track, slug, payload); err != nil {
			return err
		}
		fmt.Fprintf(options.output, "✓ Updated %s/%s\n", payload.Track, slug)
	case errors.Is(err, client.ErrNotFound):
		if _, err := options.client.CreateLesson(options.server.URL, payload); err != nil {
			return err
		}
		fmt.Fprintf(options.output, "✓ Created %s/%s\n", payload.Track, slug)
	default:
		return err
	}

	return nil
}

func payloadFromMeta(meta markdown.Meta, body []byte, path, trackFlag string) client.LessonPayload {
	track := trackFlag
	if track == "" {
		track = meta.Track
	}
	if track == "" {
		// Fall back to the parent directory name, the same layout the
		// server-side content importer uses
		track = filepath.Base(filepath.Dir(path))
		if track == "." || track == string(filepath.Separator) {
			track = ""
		}
	}

	return client.LessonPayload{
		Track:       track,
		Title:       meta.Title,
		Summary:     meta.Summary,
		Tags:        meta.Tags,
		Position:    meta.Position,
		Source:      string(body),
		MembersOnly: meta.MembersOnly,
		Published:   meta.Published,
	}
}

func slugFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

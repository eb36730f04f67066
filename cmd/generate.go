package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/davidbz/quill/internal/client"
	"github.com/davidbz/quill/internal/config"
	"github.com/davidbz/quill/internal/display"
)

var (
	textStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Foreground(lipgloss.Color("9")).
			Padding(0, 1)

	durationStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)
)

type generateOptions struct {
	server         string
	topP           int
	temperature    int
	responseLength int
	model          string
	repeat         int
}

func newGenerateCmd(cfg *config.Config) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [context]",
		Short: "Request a completion and print it",
		Long: `Sends the context to a quill server and prints the generated text and
how long generation took. Without an argument the context is read from stdin.

Example:
  quill generate --top-p 90 --temperature 80 "Hello World!"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), prompt, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", cfg.Client.ServerURL, "quill server base URL")
	flags.IntVar(&opts.topP, "top-p", 90, "nucleus sampling mass, 0-100")
	flags.IntVar(&opts.temperature, "temperature", 90, "sampling temperature, 0-100")
	flags.IntVar(&opts.responseLength, "response-length", cfg.Client.ResponseLength, "number of tokens to generate")
	flags.StringVar(&opts.model, "model", "", "model to use (server default when empty)")
	flags.IntVar(&opts.repeat, "repeat", 1, "number of concurrent activations")

	return cmd
}

func readPrompt(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read context from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func runGenerate(ctx context.Context, out io.Writer, prompt string, opts *generateOptions) error {
	if opts.repeat < 1 {
		return errors.New("repeat must be at least 1")
	}

	board := display.NewBoard()
	handler := client.NewHandler(
		client.New(opts.server),
		board,
		client.WithResponseLength(opts.responseLength),
		client.WithModel(opts.model),
	)

	inputs := client.Inputs{
		Context:     prompt,
		TopP:        opts.topP,
		Temperature: opts.temperature,
	}

	// Activations are independent: one failing does not cancel the others.
	var g errgroup.Group
	for range opts.repeat {
		outcome := handler.Activate(ctx, inputs)
		g.Go(func() error {
			return (<-outcome).Err
		})
	}
	err := g.Wait()

	text, duration := board.Snapshot()
	fmt.Fprintln(out, render(text, duration, err != nil && strings.HasPrefix(text, "Error: ")))

	return err
}

func render(text, duration string, failed bool) string {
	style := textStyle
	if failed {
		style = errorStyle
	}

	blocks := []string{style.Render(text)}
	if duration != "" {
		blocks = append(blocks, durationStyle.Render(duration))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

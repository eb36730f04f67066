package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/davidbz/quill/internal/config"
	"github.com/davidbz/quill/internal/observability"
)

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "quill",
		Short: "Text completion server and client",
		Long: `quill serves /api/completion backed by a pluggable generation provider
(markov, echo, openai, gemini) and ships a client that renders its replies.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_, err := observability.InitLogger(cfg.LogLevel)
			return err
		},
	}

	root.AddCommand(newServeCmd(cfg), newGenerateCmd(cfg))

	return root
}

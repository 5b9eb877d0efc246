package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/voicenote/internal/config"
	"github.com/kailas-cloud/voicenote/internal/version"
)

const rootLongDesc string = `voicenote turns spoken notes into searchable text.

Audio is transcribed with a hosted speech-to-text model, reviewed and edited,
then stored with its embedding in a vector database for semantic search.

Run using:
  voicenote serve                  Run the HTTP API
  voicenote note add memo.mp3      Transcribe, review and save one note
  voicenote note search groceries  Find notes by meaning`

const rootShortDesc string = "voicenote - voice notes with semantic search"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voicenote",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("env", config.GetEnv(), "Configuration environment (config/<env>.yaml)")
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newNoteCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// loadConfig reads the configuration named by the --env flag.
func loadConfig(cmd *cobra.Command) (string, config.Config, error) {
	env, err := cmd.Flags().GetString("env")
	if err != nil {
		return "", config.Config{}, fmt.Errorf("could not get env flag: %w", err)
	}
	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return env, cfg, nil
}

func levelFor(cmd *cobra.Command, configured string) string {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return "debug"
	}
	return configured
}

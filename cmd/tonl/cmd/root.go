// Package cmd implements the tonl command line tool.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// state is shared by the commands of one invocation.
type state struct {
	cfgFile string
	verbose bool
	noColor bool

	profile *Profile
	logger  *slog.Logger
}

// NewRootCmd builds the tonl command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	rootCmd := &cobra.Command{
		Use:   "tonl",
		Short: "Convert between JSON, YAML and TONL",
		Long: `tonl converts JSON and YAML documents to TONL, a compact line-oriented
notation for the JSON data model, and back.

Input is read from the named file or stdin; .gz and .zst files are
decompressed on the fly. Defaults for every command can be kept in a TOML
profile passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if st.verbose {
				level = slog.LevelDebug
			}
			st.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			p, err := LoadProfile(st.cfgFile)
			if err != nil {
				return err
			}
			st.profile = p
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&st.cfgFile, "config", "", "TOML profile with command defaults")
	rootCmd.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "log decoder repairs and other details")
	rootCmd.PersistentFlags().BoolVar(&st.noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		newEncodeCmd(st),
		newDecodeCmd(st),
		newCheckCmd(st),
		newStatsCmd(st),
	)
	return rootCmd
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		return err
	}
	return nil
}

func printError(cmd *cobra.Command, err error) {
	noColor, _ := cmd.PersistentFlags().GetBool("no-color")
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", errorColor(cmd.ErrOrStderr(), noColor).Sprint("error:"), err)
}

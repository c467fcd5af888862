package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fwessels/pplex"
)

var (
	verbose      bool
	logFile      string
	colorMode    string
	configPath   string
	outputFormat string

	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "ppscan",
	Short: "Recover as-written preprocessor text from C and C++ sources",
	Long: `ppscan re-lexes preprocessor directives to recover what a compiler's
tokenizer throws away: #include names exactly as written (line splices
included) and the macro names tested with defined() in #if and #elif.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .ppscan.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format: text, json, yaml")

	rootCmd.AddCommand(includesCmd)
	rootCmd.AddCommand(definedCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. The log file is closed whether or not the
// command succeeds.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeLog(); err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.apply(cmd)

	l, closer, err := newLogger(cmd.ErrOrStderr(), verbose, logFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logger, logCloser = l, closer
	pplex.SetLogger(logger)
	return nil
}

func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

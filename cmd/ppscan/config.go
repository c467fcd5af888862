package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = ".ppscan.yaml"

// config mirrors the persistent flags. Flags given on the command line win.
type config struct {
	Format  string `yaml:"format"`
	Color   string `yaml:"color"`
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"log_file"`
}

// loadConfig reads path, or the default config file when path is empty. A
// missing default file is not an error.
func loadConfig(path string) (config, error) {
	var cfg config
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if c.Format != "" && !flags.Changed("format") {
		outputFormat = c.Format
	}
	if c.Color != "" && !flags.Changed("color") {
		colorMode = c.Color
	}
	if c.Verbose && !flags.Changed("verbose") {
		verbose = true
	}
	if c.LogFile != "" && !flags.Changed("log-file") {
		logFile = c.LogFile
	}
}

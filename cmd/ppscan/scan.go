package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwessels/pplex"
	"github.com/fwessels/pplex/internal/directive"
)

var includesCmd = &cobra.Command{
	Use:   "includes FILE...",
	Short: "List #include names exactly as written",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIncludes,
}

var definedCmd = &cobra.Command{
	Use:   "defined FILE...",
	Short: "List macros tested by #ifdef, #ifndef and defined() in #if/#elif",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDefined,
}

// scannedFile is the directive list of one input file.
type scannedFile struct {
	path       string
	directives []directive.Directive
}

// scanFiles loads every path into one buffer and visits its directives.
func scanFiles(paths []string) (*pplex.Buffer, []scannedFile, error) {
	buf := pplex.NewBuffer()
	v := &directive.Visitor{Buffer: buf, Logger: logger}

	var files []scannedFile
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		id := buf.AddFile(path, content)
		ds, err := v.Directives(id)
		if err != nil {
			return nil, nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		logger.Debug("scanned", "file", path, "directives", len(ds))
		files = append(files, scannedFile{path: path, directives: ds})
	}
	return buf, files, nil
}

// includeRecord is one include directive in a report.
type includeRecord struct {
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line" yaml:"line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	Directive string `json:"directive" yaml:"directive"`
	Spelling  string `json:"spelling,omitempty" yaml:"spelling,omitempty"`
	Computed  bool   `json:"computed,omitempty" yaml:"computed,omitempty"`
}

// macroRecord is one tested macro name in a report.
type macroRecord struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Name   string `json:"name" yaml:"name"`
	Via    string `json:"via" yaml:"via"`
}

func runIncludes(cmd *cobra.Command, args []string) error {
	_, files, err := scanFiles(args)
	if err != nil {
		return err
	}
	records := []includeRecord{}
	for _, f := range files {
		for _, d := range f.directives {
			if !d.Kind.IsInclude() {
				continue
			}
			records = append(records, includeRecord{
				File:      f.path,
				Line:      d.Line,
				EndLine:   d.EndLine,
				Directive: d.Kind.String(),
				Spelling:  d.Include,
				Computed:  d.Computed,
			})
		}
	}
	return writeReport(cmd, records, func(s *styles) error {
		return outputIncludesText(cmd.OutOrStdout(), s, records)
	})
}

func runDefined(cmd *cobra.Command, args []string) error {
	buf, files, err := scanFiles(args)
	if err != nil {
		return err
	}
	records := []macroRecord{}
	for _, f := range files {
		for _, mt := range directive.MacroTests(buf, f.directives) {
			records = append(records, macroRecord{
				File:   mt.Pos.File,
				Line:   mt.Pos.Line,
				Column: mt.Pos.Column,
				Name:   mt.Name,
				Via:    mt.Via.String(),
			})
		}
	}
	return writeReport(cmd, records, func(s *styles) error {
		return outputMacrosText(cmd.OutOrStdout(), s, records)
	})
}

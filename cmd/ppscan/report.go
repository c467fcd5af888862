package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// styles holds the color formatters for text reports.
type styles struct {
	location  *color.Color
	directive *color.Color
	spelling  *color.Color
	name      *color.Color
	dim       *color.Color
}

func newStyles(enabled bool) *styles {
	s := &styles{
		location:  color.New(color.Bold),
		directive: color.New(color.FgHiBlue),
		spelling:  color.New(color.FgHiGreen),
		name:      color.New(color.Bold, color.FgYellow),
		dim:       color.New(color.Faint),
	}
	for _, c := range []*color.Color{s.location, s.directive, s.spelling, s.name, s.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// colorEnabled resolves --color against the terminal and NO_COLOR.
func colorEnabled(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := out.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown color mode: %s", mode)
	}
}

func writeReport(cmd *cobra.Command, v any, text func(*styles) error) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case "text", "":
		enabled, err := colorEnabled(colorMode, out)
		if err != nil {
			return err
		}
		return text(newStyles(enabled))
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func lineSpan(line, endLine int) string {
	if endLine > line {
		return fmt.Sprintf("lines %d-%d", line, endLine)
	}
	return fmt.Sprintf("line %d", line)
}

func outputIncludesText(out io.Writer, s *styles, records []includeRecord) error {
	for _, r := range records {
		spelling := s.spelling.Sprint(r.Spelling)
		if r.Computed {
			spelling = s.dim.Sprint("(computed)")
		}
		// Spliced names keep their line breaks, as in the source.
		if _, err := fmt.Fprintf(out, "%s: %s %s  %s\n",
			s.location.Sprint(r.File),
			s.directive.Sprint(r.Directive),
			spelling,
			s.dim.Sprint("// "+lineSpan(r.Line, r.EndLine)),
		); err != nil {
			return err
		}
	}
	return nil
}

func outputMacrosText(out io.Writer, s *styles, records []macroRecord) error {
	width := 0
	for _, r := range records {
		width = max(width, len(r.Name))
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(out, "%s: %s%s %s\n",
			s.location.Sprintf("%s:%d:%d", r.File, r.Line, r.Column),
			s.name.Sprint(r.Name),
			strings.Repeat(" ", width-len(r.Name)),
			s.directive.Sprint(r.Via),
		); err != nil {
			return err
		}
	}
	return nil
}

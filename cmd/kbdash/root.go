package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/foundry-zero/kbdash/internal/checker"
	"github.com/foundry-zero/kbdash/internal/dashboard"
	"github.com/foundry-zero/kbdash/internal/kbn"
	"github.com/foundry-zero/kbdash/internal/loader"
	"github.com/foundry-zero/kbdash/internal/logger"
	"github.com/foundry-zero/kbdash/internal/report"
	"github.com/foundry-zero/kbdash/internal/schema"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "kbdash",
		Short:         "Compile YAML dashboards into saved-object JSON",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Level.SetByName(logLevel)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	root.AddCommand(
		newCompileCmd(stdout),
		newCheckCmd(stdout),
		newSchemaCmd(stdout),
		newWatchCmd(stdout),
	)
	return root
}

type compileFlags struct {
	outDir string
	pretty bool
}

func (f *compileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outDir, "output", "o", "", "Write one <id>.json per dashboard into this directory instead of stdout")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Indent the JSON output")
}

func newCompileCmd(stdout io.Writer) *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "compile file.yaml [file2.yaml ...]",
		Short: "Compile dashboard files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := 0
			for _, path := range args {
				if err := compileFile(path, flags, stdout); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					code = max(code, exitCode(err))
				}
			}
			if code != 0 {
				return exitWith(code, nil)
			}
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// compileFile loads, validates and compiles path. Without an output
// directory each dashboard is written to w as one JSON line.
func compileFile(path string, flags compileFlags, w io.Writer) error {
	f, err := loader.Load(path)
	if err != nil {
		return err
	}
	docs, err := dashboard.RenderAll(f)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		data, err := encode(doc, flags.pretty)
		if err != nil {
			return err
		}
		if flags.outDir == "" {
			if _, err := fmt.Fprintln(w, string(data)); err != nil {
				return report.IO("stdout", err)
			}
			continue
		}
		out := filepath.Join(flags.outDir, doc.ID+".json")
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return report.IO(out, errors.Wrap(err, "write compiled dashboard"))
		}
	}
	return nil
}

func encode(doc *kbn.Dashboard, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// exitCode maps a compile failure to the process exit code.
func exitCode(err error) int {
	if report.IsKind(err, report.KindIO) {
		return 2
	}
	return 1
}

func newCheckCmd(stdout io.Writer) *cobra.Command {
	var (
		format       string
		quiet        bool
		strict       bool
		semanticOnly bool
		passes       string
	)
	cmd := &cobra.Command{
		Use:   "check file.yaml [file2.yaml ...]",
		Short: "Report every problem in dashboard files without writing output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return exitWith(2, errors.Newf("invalid format %q (use text or json)", format))
			}
			c, err := checker.NewChecker()
			if err != nil {
				return exitWith(2, err)
			}
			opts := checker.CheckOptions{
				SemanticOnly: semanticOnly,
				PassFilter:   parsePassFilter(passes),
				Strict:       strict,
			}

			code := 0
			for _, path := range args {
				r := c.Check(path, opts)
				switch {
				case hasInputError(r):
					code = max(code, 2)
				case r.HasErrors():
					code = max(code, 1)
				case opts.Strict && r.HasWarnings():
					code = max(code, 1)
				}
				if quiet {
					continue
				}
				if err := printReport(stdout, r, format); err != nil {
					return exitWith(2, err)
				}
			}
			if code != 0 {
				return exitWith(code, nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress output (exit code only)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&semanticOnly, "semantic-only", false, "Run semantic passes only, skip compilation")
	cmd.Flags().StringVar(&passes, "passes", "", "Comma-separated pass names (e.g. grid,references)")
	return cmd
}

// hasInputError returns true if the report contains an INPUT error.
func hasInputError(r *report.Report) bool {
	for _, e := range r.Errors {
		if e.Rule == report.KindIO.String() {
			return true
		}
	}
	return false
}

// printReport outputs the report in the specified format.
func printReport(w io.Writer, r *report.Report, format string) error {
	switch format {
	case "json":
		data, err := report.FormatJSON(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case "text":
		fmt.Fprint(w, report.FormatText(r))
	}
	return nil
}

func parsePassFilter(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func newSchemaCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the authored dashboard file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.GenerateJSONSchema()
			if err != nil {
				return exitWith(2, err)
			}
			_, err = stdout.Write(data)
			return err
		},
	}
}

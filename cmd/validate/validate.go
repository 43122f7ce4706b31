/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validate provides the validate command for qscan.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/report"
	"bokiquiz.dev/qscan/validator"
)

const (
	jsonReportName = "question-validation-report.json"
	htmlReportName = "question-validation-report.html"
)

// ErrValidationFailed is returned when a run has critical issues, or
// warnings under --strict.
var ErrValidationFailed = errors.New("validation failed")

// Cmd is the validate cobra command.
var Cmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate question data files",
	Long: `Validate every question record of the given data files, or of the files
listed in .config/qscan.yaml, and report structural and bookkeeping issues.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("strict", false, "Fail on warnings")
	Cmd.Flags().Bool("quiet", false, "Only print the summary line")
	Cmd.Flags().Bool("info", false, "Include info-level issues in the table")
	Cmd.Flags().Bool("no-color", false, "Disable severity colors")
	Cmd.Flags().String("format", "table", "Output format: table, json")
	Cmd.Flags().String("report", "", "Write the JSON report to FILE")
	Cmd.Flags().String("html", "", "Write the HTML report to FILE")
	Cmd.Flags().Bool("watch", false, "Re-validate when a data file changes")
	_ = viper.BindPFlag("strict", Cmd.Flags().Lookup("strict"))
}

type options struct {
	quiet   bool
	info    bool
	color   bool
	format  string
	jsonOut string
	htmlOut string
	strict  bool
}

func readOptions(cmd *cobra.Command, p *project.Project) options {
	quiet, _ := cmd.Flags().GetBool("quiet")
	info, _ := cmd.Flags().GetBool("info")
	noColor, _ := cmd.Flags().GetBool("no-color")
	format, _ := cmd.Flags().GetString("format")
	jsonOut, _ := cmd.Flags().GetString("report")
	htmlOut, _ := cmd.Flags().GetString("html")

	if dir := p.ReportDir(); dir != "" {
		if jsonOut == "" {
			jsonOut = filepath.Join(dir, jsonReportName)
		}
		if htmlOut == "" {
			htmlOut = filepath.Join(dir, htmlReportName)
		}
	}

	return options{
		quiet:   quiet,
		info:    info,
		color:   !noColor,
		format:  format,
		jsonOut: jsonOut,
		htmlOut: htmlOut,
		strict:  p.Config.Strict,
	}
}

func run(cmd *cobra.Command, args []string) error {
	p, err := project.FromViper()
	if err != nil {
		return err
	}
	vocabulary, err := p.Vocabulary(cmd.Context())
	if err != nil {
		return fmt.Errorf("error loading vocabulary: %w", err)
	}
	files, err := p.Files(args)
	if err != nil {
		return err
	}

	opts := readOptions(cmd, p)
	v := validator.New(vocabulary)

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		return watchFiles(cmd.Context(), cmd.OutOrStdout(), p, v, files, opts)
	}

	_, err = validateOnce(cmd.Context(), cmd.OutOrStdout(), p, v, files, opts)
	return err
}

// validateOnce validates files, writes the configured reports and prints the
// result. It returns ErrValidationFailed when the run fails.
func validateOnce(ctx context.Context, w io.Writer, p *project.Project, v *validator.Validator, files []string, opts options) (*report.Report, error) {
	result, err := ValidateFiles(ctx, p, v, files)
	if err != nil {
		return nil, err
	}

	rep := report.Build(result, files)
	if err := writeReports(p.FS, rep, opts); err != nil {
		return rep, err
	}

	switch opts.format {
	case "json":
		err = report.WriteJSON(w, rep)
	default:
		err = report.WriteTable(w, rep, report.TableOptions{
			Color: opts.color,
			Info:  opts.info,
			Quiet: opts.quiet,
		})
	}
	if err != nil {
		return rep, err
	}

	if result.Failed(opts.strict) {
		return rep, ErrValidationFailed
	}
	return rep, nil
}

// ValidateFiles parses and validates files concurrently. Issues keep the
// order of files. A file that cannot be read or scanned becomes a critical
// validation_error issue; records scanned before the failure are still
// validated.
func ValidateFiles(ctx context.Context, p *project.Project, v *validator.Validator, files []string) (*validator.Result, error) {
	results := make([]*validator.Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(p, v, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &validator.Result{}
	for _, r := range results {
		merged.Merge(r)
	}
	return merged, nil
}

func validateFile(p *project.Project, v *validator.Validator, file string) *validator.Result {
	logger.Debug("validating %s", file)
	res, err := p.Parse(file)
	if err == nil {
		return v.ValidateResult(res)
	}

	logger.Warn("%s: %v", file, err)
	out := &validator.Result{}
	if res != nil {
		out.Merge(v.ValidateResult(res))
	}
	out.Issues = append(out.Issues, validator.Issue{
		FilePath: file,
		Severity: validator.Critical,
		Category: validator.CategoryValidationError,
		Message:  fmt.Sprintf("ファイルを解析できません: %v", err),
	})
	out.Statistics.IssuesFound++
	return out
}

func writeReports(filesystem fs.FileSystem, rep *report.Report, opts options) error {
	if opts.jsonOut != "" {
		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, rep); err != nil {
			return err
		}
		if err := writeReport(filesystem, opts.jsonOut, buf.Bytes()); err != nil {
			return err
		}
	}
	if opts.htmlOut != "" {
		var buf bytes.Buffer
		if err := report.WriteHTML(&buf, rep); err != nil {
			return err
		}
		if err := writeReport(filesystem, opts.htmlOut, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(filesystem fs.FileSystem, path string, data []byte) error {
	if err := filesystem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	if err := fs.WriteFileAtomic(filesystem, path, data); err != nil {
		return fmt.Errorf("error writing report %s: %w", path, err)
	}
	logger.Info("wrote %s", path)
	return nil
}

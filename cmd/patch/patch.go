/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package patch provides the patch command for qscan.
package patch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bokiquiz.dev/qscan/document"
	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/journal"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/validator"
)

// timestampLayout matches the created_at and updated_at values of the data files.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ErrValueSource is returned unless exactly one of --value, --value-file
// and --json-file is given.
var ErrValueSource = errors.New("exactly one of --value, --value-file or --json-file is required")

// ErrKeyField is returned for a patch of the record key itself. Journal
// entries and later patches address records by key.
var ErrKeyField = errors.New("the id field cannot be patched")

// Cmd is the patch cobra command.
var Cmd = &cobra.Command{
	Use:   "patch FILE KEY",
	Short: "Rewrite one field of a question record in place",
	Long: `Replace the value of one field of the record whose id is KEY. Only the
value's bytes change; the file is written once and the edit is recorded in
the journal.`,
	Args: cobra.ExactArgs(2),
	RunE: run,
}

func init() {
	Cmd.Flags().String("field", "", "Field to rewrite")
	Cmd.Flags().String("value", "", "New string value")
	Cmd.Flags().String("value-file", "", "Read the new string value from a file")
	Cmd.Flags().String("json-file", "", "Read a JSON payload for a *_json field from a file")
	Cmd.Flags().Bool("number", false, "Write --value as a number")
	Cmd.Flags().Bool("dry-run", false, "Print the change without writing")
	Cmd.Flags().Bool("touch", false, "Also set updated_at to the current time")
	_ = Cmd.MarkFlagRequired("field")
	Cmd.MarkFlagsMutuallyExclusive("value", "value-file", "json-file")
}

// request describes one patch.
type request struct {
	File   string
	Key    string
	Field  string
	Value  string
	Number bool
	Touch  bool
	DryRun bool
	Now    time.Time
}

// outcome is the result of a patch.
type outcome struct {
	// Edits are the queued edits that changed text.
	Edits []document.Edit
	// Drift lists edited fields whose current value is not the one the
	// journal last wrote.
	Drift []document.Edit
	// Preview is the full new text.
	Preview string
	RunID   string
	Issues  []validator.Issue
}

func run(cmd *cobra.Command, args []string) error {
	p, err := project.FromViper()
	if err != nil {
		return err
	}

	req := request{File: args[0], Key: args[1], Now: time.Now()}
	req.Field, _ = cmd.Flags().GetString("field")
	req.Number, _ = cmd.Flags().GetBool("number")
	req.Touch, _ = cmd.Flags().GetBool("touch")
	req.DryRun, _ = cmd.Flags().GetBool("dry-run")
	if req.Value, err = readValue(cmd, p.FS); err != nil {
		return err
	}

	vocabulary, err := p.Vocabulary(cmd.Context())
	if err != nil {
		return fmt.Errorf("error loading vocabulary: %w", err)
	}

	var j *journal.Journal
	if !req.DryRun || p.FS.Exists(p.JournalPath()) {
		j, err = journal.Open(p.JournalPath())
		if err != nil {
			return err
		}
		defer j.Close()
	}

	out, err := apply(cmd.Context(), p, j, validator.New(vocabulary), req)
	if err != nil {
		return err
	}
	return printOutcome(cmd.OutOrStdout(), req, out)
}

// readValue returns the new value from whichever source flag was given.
func readValue(cmd *cobra.Command, filesystem fs.FileSystem) (string, error) {
	flags := cmd.Flags()
	set := 0
	for _, name := range []string{"value", "value-file", "json-file"} {
		if flags.Changed(name) {
			set++
		}
	}
	if set != 1 {
		return "", ErrValueSource
	}

	if flags.Changed("value") {
		return flags.GetString("value")
	}
	if path, _ := flags.GetString("value-file"); path != "" {
		data, err := filesystem.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("error reading value file: %w", err)
		}
		return strings.TrimSuffix(string(data), "\n"), nil
	}
	path, _ := flags.GetString("json-file")
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading JSON file: %w", err)
	}
	return compactJSON(data)
}

// compactJSON validates a JSON payload and strips its insignificant
// whitespace, matching the single-line *_json fields of the data files.
func compactJSON(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", errors.New("JSON file does not contain valid JSON")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// apply performs req against the project. A nil journal skips drift
// detection and recording.
func apply(ctx context.Context, p *project.Project, j *journal.Journal, v *validator.Validator, req request) (*outcome, error) {
	if strings.Trim(strings.TrimSpace(req.Field), `"'`) == record.FieldID {
		return nil, fmt.Errorf("%s: %w", req.Key, ErrKeyField)
	}

	data, err := p.FS.ReadFile(req.File)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", req.File, err)
	}
	doc, err := document.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.File, err)
	}

	if req.Number {
		n, err := strconv.Atoi(strings.TrimSpace(req.Value))
		if err != nil {
			return nil, fmt.Errorf("--number: %w", err)
		}
		if err := doc.SetNumber(req.Key, req.Field, n); err != nil {
			return nil, err
		}
	} else if err := doc.SetString(req.Key, req.Field, req.Value); err != nil {
		return nil, err
	}

	out := &outcome{}
	for _, e := range doc.Pending() {
		if e.Old != e.Replacement {
			out.Edits = append(out.Edits, e)
		}
	}
	if len(out.Edits) == 0 {
		logger.Info("%s.%s already has that value", req.Key, req.Field)
		return out, nil
	}

	if req.Touch && req.Field != record.FieldUpdatedAt {
		if err := doc.SetString(req.Key, record.FieldUpdatedAt, req.Now.UTC().Format(timestampLayout)); err != nil {
			return nil, err
		}
		out.Edits = slices.DeleteFunc(slices.Clone(doc.Pending()), func(e document.Edit) bool {
			return e.Old == e.Replacement
		})
	}

	file := p.Absolute(req.File)
	if j != nil {
		for _, e := range out.Edits {
			last, ok, err := j.LastEdit(ctx, file, req.Key, e.Field)
			if err != nil {
				return nil, err
			}
			if ok && last.NewSHA != journal.Digest(e.Old) {
				logger.Warn("%s.%s changed outside qscan since run %s", req.Key, e.Field, last.RunID)
				out.Drift = append(out.Drift, e)
			}
		}
	}

	if req.DryRun {
		out.Preview, err = doc.Preview()
		return out, err
	}

	out.Preview, err = doc.Apply()
	if err != nil {
		return nil, err
	}
	if err := fs.WriteFileAtomic(p.FS, req.File, []byte(out.Preview)); err != nil {
		return nil, err
	}
	logger.Debug("wrote %s", req.File)

	if j != nil {
		out.RunID = journal.NewRunID()
		entries := make([]journal.Entry, 0, len(out.Edits))
		for _, e := range out.Edits {
			expr, err := doc.Expr(req.Key, e.Field)
			if err != nil {
				return nil, err
			}
			entries = append(entries, journal.Entry{
				File:      file,
				RecordID:  req.Key,
				Field:     e.Field,
				OldSHA:    journal.Digest(e.Old),
				NewSHA:    journal.Digest(expr),
				AppliedAt: req.Now,
			})
		}
		if err := j.Record(ctx, out.RunID, entries); err != nil {
			return nil, fmt.Errorf("file written but journal failed: %w", err)
		}
		logger.Infow("journaled edit", "run", out.RunID, "record", req.Key, "fields", len(entries))
	}

	r, err := doc.Get(req.Key)
	if err != nil {
		return nil, err
	}
	r.FilePath = req.File
	out.Issues = v.ValidateRecord(r)
	return out, nil
}

func printOutcome(w io.Writer, req request, out *outcome) error {
	if len(out.Edits) == 0 {
		_, err := fmt.Fprintf(w, "%s: %s.%s unchanged\n", req.File, req.Key, req.Field)
		return err
	}
	for _, e := range out.Edits {
		if _, err := fmt.Fprintf(w, "%s.%s\n- %s\n+ %s\n", req.Key, e.Field, e.Old, strings.TrimPrefix(e.Replacement, ",\n")); err != nil {
			return err
		}
	}
	if req.DryRun {
		_, err := fmt.Fprintln(w, "dry run: nothing written")
		return err
	}
	for _, i := range out.Issues {
		if i.Severity == validator.Info {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", i.Severity, i.Error()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "patched %s (run %s)\n", req.File, out.RunID)
	return err
}

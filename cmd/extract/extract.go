/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package extract provides the extract command for qscan.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bokiquiz.dev/qscan/document"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/scanner"
)

// Cmd is the extract cobra command.
var Cmd = &cobra.Command{
	Use:   "extract FILE KEY",
	Short: "Print fields of one question record",
	Long: `Print fields of the record whose id is KEY. String fields are printed
decoded; other values as written. With no --field the whole record is printed.`,
	Args: cobra.ExactArgs(2),
	RunE: run,
}

func init() {
	Cmd.Flags().StringSlice("field", nil, "Field to print (repeatable)")
	Cmd.Flags().Bool("decode", false, "Pretty print *_json fields")
	Cmd.Flags().String("format", "text", "Output format: text, json")
}

// value is one extracted field.
type value struct {
	Name string
	Text string
	// JSON holds the parsed payload of a decoded *_json field.
	JSON json.RawMessage
}

func run(cmd *cobra.Command, args []string) error {
	fields, _ := cmd.Flags().GetStringSlice("field")
	decode, _ := cmd.Flags().GetBool("decode")
	format, _ := cmd.Flags().GetString("format")

	p, err := project.FromViper()
	if err != nil {
		return err
	}
	file, key := args[0], args[1]

	data, err := p.FS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", file, err)
	}
	doc, err := document.Load(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	w := cmd.OutOrStdout()
	if len(fields) == 0 {
		r, err := doc.Get(key)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, r.Span.Text(doc.String()))
		return err
	}

	values, err := extract(doc, key, fields, decode)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(w, values)
	}
	return writeText(w, values)
}

// extract reads fields of record key in the order given.
func extract(doc *document.Document, key string, fields []string, decode bool) ([]value, error) {
	values := make([]value, 0, len(fields))
	for _, name := range fields {
		v, err := extractOne(doc, key, name, decode)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func extractOne(doc *document.Document, key, name string, decode bool) (value, error) {
	raw, err := doc.Field(key, name)
	if err != nil {
		if !errors.Is(err, scanner.ErrFieldMissing) {
			return value{}, err
		}
		// Not a string literal: numbers and expressions are printed as written.
		expr, exprErr := doc.Expr(key, name)
		if exprErr != nil {
			return value{}, exprErr
		}
		return value{Name: name, Text: expr}, nil
	}

	text, err := scanner.Unescape(raw)
	if err != nil {
		return value{}, fmt.Errorf("%s: %s: %w", key, name, err)
	}
	v := value{Name: name, Text: text}
	if !decode || !strings.HasSuffix(name, "_json") {
		return v, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return value{}, fmt.Errorf("%s: %s: %w: %v", key, name, scanner.ErrJSONParse, err)
	}
	v.Text = buf.String()
	v.JSON = json.RawMessage(text)
	return v, nil
}

func writeText(w io.Writer, values []value) error {
	if len(values) == 1 {
		_, err := fmt.Fprintln(w, values[0].Text)
		return err
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%s: %s\n", v.Name, v.Text); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, values []value) error {
	out := make(map[string]any, len(values))
	for _, v := range values {
		if v.JSON != nil {
			out[v.Name] = v.JSON
		} else {
			out[v.Name] = v.Text
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

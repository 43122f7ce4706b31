/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"fmt"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/scanner"
)

// TreeSitterParser reads records from a real syntax tree. Records are object
// nodes that sit directly in an array and have an `id` pair.
type TreeSitterParser struct{}

// NewTreeSitterParser creates a grammar-aware parser.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{}
}

func grammar(lang Language) *tree_sitter.Language {
	switch lang {
	case LanguageJavaScript:
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	case LanguageTSX:
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	default:
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	}
}

// Parse implements Parser.
func (p *TreeSitterParser) Parse(data []byte, opts Options) (*Result, error) {
	lang := opts.Language
	if lang == "" {
		lang = LanguageTypeScript
	}

	tsParser := tree_sitter.NewParser()
	defer tsParser.Close()
	if err := tsParser.SetLanguage(grammar(lang)); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", lang, err)
	}

	tree := tsParser.Parse(data, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logger.Warn("syntax errors in %s source; records near them may be missing", lang)
	}

	result := &Result{Source: data}
	stack := []*tree_sitter.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isRecordNode(node, data) {
			r, errs := readNode(node, data)
			result.Records = append(result.Records, r)
			result.FieldErrors = append(result.FieldErrors, errs...)
			continue
		}

		// push in reverse so records come out in source order
		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			if child := node.NamedChild(uint(i)); child != nil {
				stack = append(stack, child)
			}
		}
	}

	return result, nil
}

// ParseFile implements Parser.
func (p *TreeSitterParser) ParseFile(filesystem fs.FileSystem, path string, opts Options) (*Result, error) {
	return parseFile(p, filesystem, path, opts)
}

func isRecordNode(node *tree_sitter.Node, src []byte) bool {
	if node.Kind() != "object" {
		return false
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "array" {
		return false
	}
	_, ok := pairs(node, src)["id"]
	return ok
}

// pairs maps each key of an object node to its value node. The first pair
// with a given key wins.
func pairs(node *tree_sitter.Node, src []byte) map[string]*tree_sitter.Node {
	result := make(map[string]*tree_sitter.Node)
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "pair" {
			continue
		}
		key := child.ChildByFieldName("key")
		value := child.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}
		name := key.Utf8Text(src)
		if key.Kind() == "string" && len(name) >= 2 {
			name = name[1 : len(name)-1]
		}
		if _, seen := result[name]; !seen {
			result[name] = value
		}
	}
	return result
}

func readNode(node *tree_sitter.Node, src []byte) (*record.Record, []*FieldError) {
	span := scanner.Span{Start: int(node.StartByte()), End: int(node.EndByte())}
	r := record.New(span, int(node.StartPosition().Row)+1)
	fields := pairs(node, src)

	var errs []*FieldError
	for _, name := range record.StringFields {
		value, ok := fields[name]
		if !ok {
			continue
		}
		text := value.Utf8Text(src)
		switch value.Kind() {
		case "string", "template_string":
			if len(text) < 2 {
				continue
			}
			if value.Kind() == "template_string" && strings.Contains(text, "${") {
				errs = append(errs, &FieldError{Line: r.Line, Field: name, Err: fmt.Errorf("%w: %s uses template interpolation", scanner.ErrFieldMissing, name)})
				continue
			}
			r.Set(name, text[1:len(text)-1], text[0])
		default:
			errs = append(errs, &FieldError{Line: r.Line, Field: name, Err: fmt.Errorf("%w: %s is a %s, not a string literal", scanner.ErrFieldMissing, name, value.Kind())})
		}
	}

	if value, ok := fields[record.FieldDifficulty]; ok {
		n, err := strconv.Atoi(value.Utf8Text(src))
		if value.Kind() != "number" || err != nil {
			errs = append(errs, &FieldError{Line: r.Line, Field: record.FieldDifficulty, Err: fmt.Errorf("%w: %s is not an integer", scanner.ErrFieldMissing, record.FieldDifficulty)})
		} else {
			r.Difficulty = n
			r.HasDifficulty = true
		}
	}

	for _, e := range errs {
		e.RecordID = r.ID
	}
	return r, errs
}

/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package project resolves the files, vocabulary, parser and journal a qscan
// command works with, from the project config and command-line overrides.
package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"bokiquiz.dev/qscan/config"
	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/parser"
	"bokiquiz.dev/qscan/vocab"
)

// ErrNoFiles is returned when neither arguments nor config name any file.
var ErrNoFiles = errors.New("no files specified and no files found in config")

// Overrides are settings given on the command line or in QSCAN_* variables.
// Empty values defer to the config file.
type Overrides struct {
	Parser     string
	Vocabulary string
	Journal    string
	Strict     bool
}

// Project is a loaded qscan project.
type Project struct {
	FS     fs.FileSystem
	Root   string
	Config *config.Config
	// Fetcher downloads a vocabulary configured as an http(s) URL.
	Fetcher vocab.Fetcher
}

// Load reads the project config under root and applies o.
func Load(filesystem fs.FileSystem, root string, o Overrides) (*Project, error) {
	cfg, err := config.Load(filesystem, root)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	if o.Parser != "" {
		cfg.Parser = o.Parser
	}
	if o.Vocabulary != "" {
		cfg.Vocabulary = o.Vocabulary
	}
	if o.Journal != "" {
		cfg.Journal = o.Journal
	}
	if o.Strict {
		cfg.Strict = true
	}
	if _, err := parser.New(parser.Kind(cfg.Parser)); err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Project{
		FS:      filesystem,
		Root:    root,
		Config:  cfg,
		Fetcher: vocab.NewHTTPFetcher(vocab.DefaultMaxSize),
	}, nil
}

// FromViper loads the project on the OS filesystem using the root flags
// bound in viper.
func FromViper() (*Project, error) {
	root := viper.GetString("root")
	if root == "" {
		root = "."
	}
	return Load(fs.NewOSFileSystem(), root, Overrides{
		Parser:     viper.GetString("parser"),
		Vocabulary: viper.GetString("vocabulary"),
		Journal:    viper.GetString("journal"),
		Strict:     viper.GetBool("strict"),
	})
}

// Files returns args when given, else the files named by the config.
func (p *Project) Files(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := p.Config.ExpandFiles(p.FS, p.Root)
	if err != nil {
		return nil, fmt.Errorf("error expanding config files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// Vocabulary returns the built-in vocabulary merged with the configured one,
// which may be a local file or an http(s) URL.
func (p *Project) Vocabulary(ctx context.Context) (*vocab.Vocabulary, error) {
	v := vocab.Default()
	location := p.Config.Vocabulary
	if location == "" {
		return v, nil
	}

	var (
		extra *vocab.Vocabulary
		err   error
	)
	if vocab.IsURL(location) {
		extra, err = vocab.LoadURL(ctx, p.Fetcher, location)
	} else {
		location = config.Resolve(p.Root, location)
		extra, err = vocab.Load(p.FS, location)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("merged vocabulary %s (version %d)", location, extra.Version)
	return v.Merge(extra), nil
}

// Parser returns the parser configured for path.
func (p *Project) Parser(path string) (parser.Parser, error) {
	return parser.New(p.Config.ParserFor(p.Root, p.Absolute(path)))
}

// Parse parses one data file with its configured parser.
func (p *Project) Parse(path string) (*parser.Result, error) {
	ps, err := p.Parser(path)
	if err != nil {
		return nil, err
	}
	return ps.ParseFile(p.FS, path, parser.Options{})
}

// JournalPath returns the absolute journal path.
func (p *Project) JournalPath() string {
	return p.Config.JournalPath(p.Root)
}

// ReportDir returns the configured report directory, or "".
func (p *Project) ReportDir() string {
	return config.Resolve(p.Root, p.Config.ReportDir)
}

// Absolute returns path as an absolute, cleaned path. The journal keys
// edits by it.
func (p *Project) Absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

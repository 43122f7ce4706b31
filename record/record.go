/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package record provides the question record model and the payload shapes
// stored in its *_json fields.
package record

import (
	"bokiquiz.dev/qscan/scanner"
)

// Category is the question category stored in category_id.
type Category string

const (
	Journal      Category = "journal"
	Ledger       Category = "ledger"
	TrialBalance Category = "trial_balance"
)

// Field names of a question record.
const (
	FieldID                 = "id"
	FieldCategoryID         = "category_id"
	FieldQuestionText       = "question_text"
	FieldAnswerTemplateJSON = "answer_template_json"
	FieldCorrectAnswerJSON  = "correct_answer_json"
	FieldExplanation        = "explanation"
	FieldDifficulty         = "difficulty"
	FieldTagsJSON           = "tags_json"
	FieldCreatedAt          = "created_at"
	FieldUpdatedAt          = "updated_at"
)

// StringFields lists the string fields read from every record, in source order.
var StringFields = []string{
	FieldID,
	FieldCategoryID,
	FieldQuestionText,
	FieldAnswerTemplateJSON,
	FieldCorrectAnswerJSON,
	FieldExplanation,
	FieldTagsJSON,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// RequiredFields must be present and non-empty on every record.
var RequiredFields = []string{
	FieldID,
	FieldCategoryID,
	FieldQuestionText,
	FieldAnswerTemplateJSON,
	FieldCorrectAnswerJSON,
	FieldExplanation,
}

// Record is one question entry of the source array. String fields hold the
// raw literal body as written in the source, escapes included.
type Record struct {
	ID                 string
	CategoryID         string
	QuestionText       string
	AnswerTemplateJSON string
	CorrectAnswerJSON  string
	Explanation        string
	TagsJSON           string
	CreatedAt          string
	UpdatedAt          string
	Difficulty         int
	HasDifficulty      bool

	// FilePath is the data file the record was read from.
	FilePath string
	// Span is the record's object literal in the source text.
	Span scanner.Span
	// Line is the 1-based line of Span.Start.
	Line int
	// Present records which string fields were found as string literals.
	Present map[string]bool
	// Quotes records the quote character of each string field.
	Quotes map[string]byte
}

// New returns an empty record located at span.
func New(span scanner.Span, line int) *Record {
	return &Record{
		Span:    span,
		Line:    line,
		Present: make(map[string]bool),
		Quotes:  make(map[string]byte),
	}
}

// Get returns the raw value of a string field by name.
func (r *Record) Get(name string) string {
	switch name {
	case FieldID:
		return r.ID
	case FieldCategoryID:
		return r.CategoryID
	case FieldQuestionText:
		return r.QuestionText
	case FieldAnswerTemplateJSON:
		return r.AnswerTemplateJSON
	case FieldCorrectAnswerJSON:
		return r.CorrectAnswerJSON
	case FieldExplanation:
		return r.Explanation
	case FieldTagsJSON:
		return r.TagsJSON
	case FieldCreatedAt:
		return r.CreatedAt
	case FieldUpdatedAt:
		return r.UpdatedAt
	}
	return ""
}

// Set stores the raw value of a string field by name and marks it present.
// Unknown names are ignored.
func (r *Record) Set(name, raw string, quote byte) {
	switch name {
	case FieldID:
		r.ID = raw
	case FieldCategoryID:
		r.CategoryID = raw
	case FieldQuestionText:
		r.QuestionText = raw
	case FieldAnswerTemplateJSON:
		r.AnswerTemplateJSON = raw
	case FieldCorrectAnswerJSON:
		r.CorrectAnswerJSON = raw
	case FieldExplanation:
		r.Explanation = raw
	case FieldTagsJSON:
		r.TagsJSON = raw
	case FieldCreatedAt:
		r.CreatedAt = raw
	case FieldUpdatedAt:
		r.UpdatedAt = raw
	default:
		return
	}
	if r.Present == nil {
		r.Present = make(map[string]bool)
	}
	if r.Quotes == nil {
		r.Quotes = make(map[string]byte)
	}
	r.Present[name] = true
	r.Quotes[name] = quote
}

// Text returns the decoded value of a string field. Fields with malformed
// escapes are returned raw.
func (r *Record) Text(name string) string {
	raw := r.Get(name)
	decoded, err := scanner.Unescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Category returns the record's category.
func (r *Record) Category() Category {
	return Category(r.CategoryID)
}

// Template decodes answer_template_json.
func (r *Record) Template() (*Template, error) {
	var t Template
	if err := scanner.DecodeJSON(r.AnswerTemplateJSON, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Answer decodes correct_answer_json.
func (r *Record) Answer() (*Answer, error) {
	var a Answer
	if err := scanner.DecodeJSON(r.CorrectAnswerJSON, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Tags decodes tags_json, which holds either an array of strings or an object.
func (r *Record) Tags() (any, error) {
	var v any
	if err := scanner.DecodeJSON(r.TagsJSON, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package redact replaces sensitive text, such as host names and IDs, before it is written to a results bundle.
package redact

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const DefaultReplace = "<REDACTED>"

type Redact struct {
	ID      string `json:"ID"`
	matcher *regexp.Regexp
	Replace string `json:"replace"`
}

// Config holds the inputs to New. ID and Replace are optional and can be left empty. A Literal matcher matches only
// itself, rather than being compiled as a regular expression.
type Config struct {
	Matcher string
	Literal bool
	ID      string
	Replace string
}

// New takes the config and returns a compiled and ready-to-use redactor.
func New(cfg Config) (*Redact, error) {
	matcher := cfg.Matcher
	if cfg.Literal {
		matcher = regexp.QuoteMeta(matcher)
	}
	r, err := regexp.Compile(matcher)
	if err != nil {
		return nil, fmt.Errorf("could not compile regex, matcher=%s, err=%w", cfg.Matcher, err)
	}

	id := cfg.ID
	if id == "" {
		id = fmt.Sprintf("%x", md5.Sum([]byte(matcher)))
	}
	replace := cfg.Replace
	if replace == "" {
		replace = DefaultReplace
	}
	return &Redact{ID: id, matcher: r, Replace: replace}, nil
}

// Apply reads everything from r and writes it to w with every match replaced.
func (x Redact) Apply(w io.Writer, r io.Reader) error {
	return ApplyMany([]*Redact{&x}, w, r)
}

// ApplyMany takes a slice of redactions and a writer + reader, reading everything in and applying redactions in
// sequential order before writing. Therefore, each Redact that appears earlier in the list takes precedence over later
// Redacts. It is possible for redactions to collide with one another if a matcher can match with the Replace string
// of an earlier Redact.
func ApplyMany(redactions []*Redact, w io.Writer, r io.Reader) error {
	bts, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	for _, redact := range redactions {
		if len(bts) == 0 {
			break
		}
		bts = redact.matcher.ReplaceAll(bts, []byte(redact.Replace))
	}
	_, err = w.Write(bts)
	return err
}

// String takes a string result and a slice of redactions, and wraps it with a reader and writer to apply the
// redactions, returning a string back.
func String(result string, redactions []*Redact) (string, error) {
	if len(redactions) == 0 {
		return result, nil
	}
	buf := new(bytes.Buffer)
	if err := ApplyMany(redactions, buf, strings.NewReader(result)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

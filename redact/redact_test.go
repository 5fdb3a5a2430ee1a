// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package redact

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tcs := []struct {
		name   string
		cfg    Config
		expect Redact
	}{
		{
			name: "empty optional fields",
			cfg:  Config{Matcher: "host-[0-9]+"},
		},
		{
			name: "set optional fields",
			cfg:  Config{Matcher: "host-[0-9]+", ID: "hostname", Replace: "<HOST>"},
		},
		{
			name: "literal",
			cfg:  Config{Matcher: "host.[0-9]", Literal: true},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := New(tc.cfg)
			require.NoError(t, err)
			assert.NotEmpty(t, reg.ID)
			assert.NotEmpty(t, reg.Replace)
			if tc.cfg.ID != "" {
				assert.Equal(t, tc.cfg.ID, reg.ID)
			}
			if tc.cfg.Replace != "" {
				assert.Equal(t, tc.cfg.Replace, reg.Replace)
			}
		})
	}
}

func TestNew_InvalidRegex(t *testing.T) {
	_, err := New(Config{Matcher: "host-["})
	assert.Error(t, err)

	// The same text is fine as a literal.
	_, err = New(Config{Matcher: "host-[", Literal: true})
	assert.NoError(t, err)
}

func TestRedact_Apply(t *testing.T) {
	tcs := []struct {
		name   string
		cfg    Config
		input  string
		expect string
	}{
		{
			name:   "empty input",
			cfg:    Config{Matcher: "myRegex"},
			input:  "",
			expect: "",
		},
		{
			name:   "redacts once",
			cfg:    Config{Matcher: "myRegex"},
			input:  "myRegex",
			expect: "<REDACTED>",
		},
		{
			name:   "redacts many",
			cfg:    Config{Matcher: "test"},
			input:  "test test_test+test-test\n!test ??test",
			expect: "<REDACTED> <REDACTED>_<REDACTED>+<REDACTED>-<REDACTED>\n!<REDACTED> ??<REDACTED>",
		},
		{
			name:   "regex",
			cfg:    Config{Matcher: "host-[0-9]+"},
			input:  "host-1 and host-22",
			expect: "<REDACTED> and <REDACTED>",
		},
		{
			name:   "literal does not match as a regex",
			cfg:    Config{Matcher: "host.1", Literal: true},
			input:  "host-1 and host.1",
			expect: "host-1 and <REDACTED>",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			redactor, err := New(tc.cfg)
			require.NoError(t, err)

			buf := new(bytes.Buffer)
			require.NoError(t, redactor.Apply(buf, strings.NewReader(tc.input)))
			assert.Equal(t, tc.expect, buf.String())
		})
	}
}

func TestApplyMany(t *testing.T) {
	var redactions []*Redact
	for _, matcher := range []string{"myRegex", "test", "does not apply"} {
		redact, err := New(Config{Matcher: matcher})
		require.NoError(t, err)
		redactions = append(redactions, redact)
	}
	tcs := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty input",
			input:  "",
			expect: "",
		},
		{
			name:   "redacts once",
			input:  "myRegex",
			expect: "<REDACTED>",
		},
		{
			name:   "redacts many",
			input:  "test test_test+test-test\n!test ??test",
			expect: "<REDACTED> <REDACTED>_<REDACTED>+<REDACTED>-<REDACTED>\n!<REDACTED> ??<REDACTED>",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, ApplyMany(redactions, buf, strings.NewReader(tc.input)))
			assert.Equal(t, tc.expect, buf.String())
		})
	}
}

func TestApplyMany_Order(t *testing.T) {
	first, err := New(Config{Matcher: "foobar", Replace: "baz"})
	require.NoError(t, err)
	second, err := New(Config{Matcher: "baz"})
	require.NoError(t, err)

	out, err := String("foobar", []*Redact{first, second})
	require.NoError(t, err)
	assert.Equal(t, "<REDACTED>", out, "later redactions see the replacements of earlier ones")

	out, err = String("foobar", []*Redact{second, first})
	require.NoError(t, err)
	assert.Equal(t, "baz", out)
}

func TestString_NoRedactions(t *testing.T) {
	out, err := String("host-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "host-1", out)
}

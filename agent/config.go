// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"github.com/hashicorp/censoredpi/hcl"
	"github.com/hashicorp/censoredpi/redact"
	"github.com/hashicorp/censoredpi/runner"
)

type Config struct {
	// Digits is the input every runner censors. It is not written to the manifest.
	Digits string `json:"-"`

	InputPath   string         `json:"input_path"`
	Bench       *hcl.Bench     `json:"bench"`
	Timeout     runner.Timeout `json:"timeout"`
	Dryrun      bool           `json:"dry_run"`
	Destination string         `json:"destination"`

	// Redactions are applied to the host info recorded alongside the results.
	Redactions []*redact.Redact `json:"redactions"`
}

const ExampleConfig = `input {
  path = "~/pi50k.txt"
}

bench {
  iterations  = 10
  chunk_sizes = [64, 1024]
}

redact "regex" {
  id    = "host-id"
  match = "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"
}
`

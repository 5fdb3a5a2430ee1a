// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package run

const (
	configUsageText     = "Path to HCL configuration file. Flags override its values"
	inputUsageText      = "Path to a digits file, e.g. `~/pi50k.txt`. Wins over -synthetic"
	syntheticUsageText  = "Censor this many generated digits instead of a digits file"
	outputUsageText     = "Path to write the censored digits to, or `-` for standard output"
	strategyUsageText   = "Censoring strategy, one of `iterative` or `inplace`"
	chunkSizeUsageText  = "Bytes per chunk for the inplace strategy; 0 uses the default of 4096"
	asyncUsageText      = "Hand writes to a background writer, so censoring overlaps with output"
	queueDepthUsageText = "How many writes -async may queue before censoring waits; 0 uses the default of 16"
	timeoutUsageText    = "Give up censoring after this long, usage examples: `30s`, `2m`. 0 waits forever"
)

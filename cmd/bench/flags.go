// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package bench

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	configUsageText      = "Path to HCL configuration file. Flags override its values"
	inputUsageText       = "Path to a digits file, e.g. `~/pi50k.txt`. Wins over -synthetic"
	syntheticUsageText   = "Compare the strategies on this many generated digits instead of a digits file"
	iterationsUsageText  = "How many measured runs each strategy gets; 0 uses the default of 5"
	chunkSizesUsageText  = "Extra chunk sizes to compare the inplace strategy at (comma-separated), e.g. '1,64,65536'"
	selectUsageText      = "Only run the strategies matching these patterns (comma-separated), e.g. 'seq inplace*'"
	excludeUsageText     = "Skip the strategies matching these patterns (comma-separated), e.g. 'seq iterative'"
	timeoutUsageText     = "Give up on a single run after this long, usage examples: `30s`, `2m`. 0 waits forever"
	destinationUsageText = "Path to the directory the results bundle should be written in"
	destUsageText        = "Shorthand for -destination"
	dryrunUsageText      = "Displays all runners that would be executed during a normal run without actually executing them."
)

type CSVFlag struct {
	Values *[]string
}

func (s CSVFlag) String() string {
	if s.Values == nil {
		return ""
	}
	return strings.Join(*s.Values, ",")
}

func (s CSVFlag) Set(v string) error {
	*s.Values = strings.Split(v, ",")
	return nil
}

// IntsFlag is a CSVFlag for whole numbers.
type IntsFlag struct {
	Values *[]int
}

func (s IntsFlag) String() string {
	if s.Values == nil {
		return ""
	}
	parts := make([]string, len(*s.Values))
	for i, v := range *s.Values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (s IntsFlag) Set(v string) error {
	var values []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("not a whole number: %q", part)
		}
		values = append(values, n)
	}
	*s.Values = values
	return nil
}

// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package digits loads the digit strings that get censored.
package digits

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Sample is pi to 100 decimal places.
const Sample = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679"

// Load reads a digit string from path, expanding a leading ~ to the user's home directory. Surrounding whitespace,
// such as a trailing newline, is removed. The content is not validated here.
func Load(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}

	bts, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("unable to read digits, path=%s, error=%w", path, err)
	}
	return strings.TrimSpace(string(bts)), nil
}

// Synthetic returns "3." followed by n pseudo-random digits. The same seed always produces the same digits. It stands
// in for a real expansion when none is at hand.
func Synthetic(n int, seed uint64) string {
	r := rand.New(rand.NewPCG(seed, seed))
	var sb strings.Builder
	sb.Grow(n + 2)
	sb.WriteString("3.")
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + r.IntN(10)))
	}
	return sb.String()
}

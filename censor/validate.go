// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import "strings"

const (
	// IntegerPart is the only accepted integer part of the input.
	IntegerPart = "3"

	// Separator divides the integer part from the digits being censored.
	Separator = "."

	// Prefix is the part of the output that is never censored.
	Prefix = IntegerPart + Separator
)

// Split divides pi into its integer part and its fractional suffix around the single separator. The suffix may be
// empty. A missing separator is reported before a wrong integer part, so "314159" fails with MissingSeparator.
func Split(pi string) (integer, suffix string, err error) {
	integer, suffix, found := strings.Cut(pi, Separator)
	if !found {
		return "", "", newMalformedInputError(MissingSeparator, pi)
	}
	if integer != IntegerPart {
		return "", "", newMalformedInputError(UnexpectedIntegerPart, pi)
	}
	if strings.Contains(suffix, Separator) {
		return "", "", newMalformedInputError(ExtraSeparator, pi)
	}
	return integer, suffix, nil
}

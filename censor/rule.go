// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

const (
	// Sentinel is the initial value of the previous digit. It is the lowest digit, so the first digit is never
	// censored.
	Sentinel byte = '0'

	// Marker replaces every censored digit.
	Marker byte = '*'
)

// Rule decides whether current is censored given the previous digit, and returns the digit to compare the next one
// against. The next value is always current, even when current is censored.
func Rule(previous, current byte) (censored bool, next byte) {
	return current < previous, current
}

// censorInPlace replaces censored digits in buf with Marker and returns how many were replaced. previous is threaded
// through the buffer and left holding the last digit, so successive calls continue where the last one stopped.
func censorInPlace(buf []byte, previous *byte) int {
	count := 0
	for i, c := range buf {
		var censored bool
		censored, *previous = Rule(*previous, c)
		if censored {
			buf[i] = Marker
			count++
		}
	}
	return count
}

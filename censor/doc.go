// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package censor implements the monotonic censorship of the digits of pi.
//
// Every digit of the fractional part that is strictly smaller than the digit before it is replaced with a '*'.
// Equal digits are kept, and the first digit is always kept. For example:
//
//	3.1415926535897932384626433 -> 3.14*59*6**589*9**38*6*6**3
//
// Two strategies produce identical output. Stream materializes the whole censored suffix before writing it, while
// Chunk censors a single reusable buffer chunk by chunk and writes each chunk as it goes.
package censor

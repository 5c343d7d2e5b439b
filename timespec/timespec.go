/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// Package timespec parses age specifications like "5d" or "1.5h" into a
// number of seconds.
package timespec

import (
	"regexp"
	"strconv"
)

// Error is the custom error type for the timespec package.
type Error string

func (e Error) Error() string { return string(e) }

// ErrInvalidTimespec is returned when a timespec doesn't match the grammar
// or uses an unrecognized unit.
const ErrInvalidTimespec = Error("invalid timespec")

var grammar = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-z]+)$`)

// unitSeconds maps every recognized unit token to its length in seconds. "m"
// means month, not minute; there is deliberately no "minute"/"minutes" short
// form.
var unitSeconds = map[string]float64{
	"s": 1, "second": 1, "seconds": 1,
	"minute": 60, "minutes": 60,
	"h": 3600, "hour": 3600, "hours": 3600,
	"d": 86400, "day": 86400, "days": 86400,
	"m": 2678400, "month": 2678400, "months": 2678400,
	"y": 31536000, "year": 31536000, "years": 31536000,
}

// Parse parses s into a number of seconds, truncating a fractional result
// to an integer. Returns ErrInvalidTimespec if s doesn't match the grammar
// or names an unknown unit.
func Parse(s string) (int64, error) {
	m := grammar.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidTimespec
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, ErrInvalidTimespec
	}

	factor, ok := unitSeconds[m[2]]
	if !ok {
		return 0, ErrInvalidTimespec
	}

	return int64(value * factor), nil
}

// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"errors"
	"fmt"
)

// booleanValidator implements Validator.
type booleanValidator struct {
	boolCheck bool
	format    string
	args      []any
}

// NewBooleanValidator creates a new boolean validator that returns an error if condition is false.
// The message is only formatted when the check fails.
func NewBooleanValidator(boolCheck bool, format string, args ...any) Validator {
	return &booleanValidator{boolCheck: boolCheck, format: format, args: args}
}

// Validate returns an error if boolean check is false
func (v booleanValidator) Validate() error {
	if v.boolCheck {
		return nil
	}
	if len(v.args) == 0 {
		return errors.New(v.format)
	}
	return fmt.Errorf(v.format, v.args...)
}

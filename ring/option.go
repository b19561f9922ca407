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

package ring

import "github.com/tochemey/shardring/hash"

type config struct {
	hasher hash.Hasher
	degree int
}

// Option is the interface that applies a Ring option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(cfg *config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(cfg *config)

// Apply applies the Ring's option
func (f OptionFunc) Apply(cfg *config) {
	f(cfg)
}

// WithHasher sets the hasher used by GetShardByKey
func WithHasher(hasher hash.Hasher) Option {
	return OptionFunc(func(cfg *config) {
		if hasher != nil {
			cfg.hasher = hasher
		}
	})
}

// WithDegree sets the degree of the b-tree indexing the vnodes.
// Values lower than 2 are ignored.
func WithDegree(degree int) Option {
	return OptionFunc(func(cfg *config) {
		if degree >= 2 {
			cfg.degree = degree
		}
	})
}

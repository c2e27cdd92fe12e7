// Copyright 2025 PolyCrypt GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

const (
	DefaultMaxInputs      = 64
	DefaultMaxOutputs     = 64
	DefaultMaxWitnessSize = 1 << 16
)

// Config bounds the transactions a Ledger accepts.
type Config struct {
	MaxInputs      int
	MaxOutputs     int
	MaxWitnessSize int
}

// Option modifies a Config.
type Option func(*Config)

// DefaultConfig returns the limits used when no options are given.
func DefaultConfig() Config {
	return Config{
		MaxInputs:      DefaultMaxInputs,
		MaxOutputs:     DefaultMaxOutputs,
		MaxWitnessSize: DefaultMaxWitnessSize,
	}
}

func WithMaxInputs(n int) Option {
	return func(c *Config) { c.MaxInputs = n }
}

func WithMaxOutputs(n int) Option {
	return func(c *Config) { c.MaxOutputs = n }
}

func WithMaxWitnessSize(n int) Option {
	return func(c *Config) { c.MaxWitnessSize = n }
}

// Copyright (C) 2022-2025, VigilantDoomer
//
// This file is part of VigilantBSP program.
//
// VigilantBSP is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VigilantBSP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VigilantBSP.  If not, see <https://www.gnu.org/licenses/>.

// Package config holds program and nodes builder configuration. There is no
// global instance: the builder receives a *BuildConfig per level, so that
// levels (and tests) built side by side may use different settings.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const VERSION = "0.80"

const (
	// Tuning factor. Cost of a seg split is 100 * factor
	BSP_FACTOR_DEFAULT = 7
	BSP_FACTOR_MIN     = 1
	BSP_FACTOR_MAX     = 32
	// Added to the cost of partitions that are neither horizontal nor vertical
	DIAGONAL_PENALTY = 25
	// Lines longer than this get a warning. Not fatal
	LONG_LINE_WARN = 30000.0
	// Half-edge arena capacity. Running out of it aborts the build
	MAX_HEDGES = 1 << 24
)

var ErrInvalid = errors.New("invalid configuration")

// BuildConfig is everything nodes builder reads. It must not be mutated while
// a build using it is in progress
type BuildConfig struct {
	// Partition selection balance factor
	Factor          int     `yaml:"factor"`
	DiagonalPenalty int     `yaml:"diagonal_penalty"`
	SkipSelfRef     bool    `yaml:"skip_self_ref"` // no segs for lines with the same sector on both sides
	MaxHEdges       int     `yaml:"max_hedges"`
	LongLineWarn    float64 `yaml:"long_line_warn"`
}

type ProgramConfig struct {
	InputFileName  string      `yaml:"-"`
	OutputFileName string      `yaml:"output"`
	Build          BuildConfig `yaml:"build"`
	VerbosityLevel int         `yaml:"verbosity"`
	// Number of levels built at the same time. 0 means number of cores
	Jobs  int      `yaml:"jobs"`
	Check bool     `yaml:"check"` // validate output arrays after building
	Dump  bool     `yaml:"dump"`  // spew the output arrays to the log
	Maps  []string `yaml:"maps"`  // restrict to these levels, empty is all
}

func DefaultBuild() BuildConfig {
	return BuildConfig{
		Factor:          BSP_FACTOR_DEFAULT,
		DiagonalPenalty: DIAGONAL_PENALTY,
		SkipSelfRef:     false,
		MaxHEdges:       MAX_HEDGES,
		LongLineWarn:    LONG_LINE_WARN,
	}
}

func Default() *ProgramConfig {
	return &ProgramConfig{
		Build:          DefaultBuild(),
		VerbosityLevel: 0,
		Jobs:           0,
	}
}

// Validate checks that values are within range
func (c *BuildConfig) Validate() error {
	if c.Factor < BSP_FACTOR_MIN || c.Factor > BSP_FACTOR_MAX {
		return errors.Wrapf(ErrInvalid, "bsp factor %d is out of range %d..%d",
			c.Factor, BSP_FACTOR_MIN, BSP_FACTOR_MAX)
	}
	if c.DiagonalPenalty < 0 {
		return errors.Wrapf(ErrInvalid, "diagonal penalty %d is negative",
			c.DiagonalPenalty)
	}
	if c.MaxHEdges <= 0 {
		return errors.Wrapf(ErrInvalid, "half-edge limit %d must be positive",
			c.MaxHEdges)
	}
	if c.LongLineWarn <= 0 {
		return errors.Wrapf(ErrInvalid, "long line threshold %v must be positive",
			c.LongLineWarn)
	}
	return nil
}

func (c *ProgramConfig) Validate() error {
	if err := c.Build.Validate(); err != nil {
		return err
	}
	if c.Jobs < 0 {
		return errors.Wrapf(ErrInvalid, "jobs %d is negative", c.Jobs)
	}
	if c.VerbosityLevel < 0 {
		return errors.Wrapf(ErrInvalid, "verbosity %d is negative", c.VerbosityLevel)
	}
	return nil
}

// Decode overlays YAML content over c. Fields that are absent keep their
// current values, unknown fields are an error
func (c *ProgramConfig) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if err == io.EOF {
			// empty file is fine, defaults stay
			return nil
		}
		return errors.Wrap(err, "decoding config")
	}
	return nil
}

// LoadFile reads configuration file over defaults and validates the result
func LoadFile(fileName string) (*ProgramConfig, error) {
	c := Default()
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config %s", fileName)
	}
	defer f.Close()
	if err := c.Decode(f); err != nil {
		return nil, errors.Wrapf(err, "config %s", fileName)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", fileName)
	}
	return c, nil
}

// Marshal renders configuration the way LoadFile expects it
func (c *ProgramConfig) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, "encoding config")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding config")
	}
	return buf.Bytes(), nil
}

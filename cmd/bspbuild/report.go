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
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/bsp"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

type Report struct {
	Input   string             `yaml:"input"`
	Version string             `yaml:"version"`
	Build   config.BuildConfig `yaml:"build"`
	Levels  []*LevelReport     `yaml:"levels"`
}

type LevelReport struct {
	Name     string           `yaml:"name"`
	Error    string           `yaml:"error,omitempty"`
	Analysis *level.Analysis  `yaml:"analysis,omitempty"`
	Totals   bsp.NodesTotals  `yaml:"totals"`
	Warnings []string         `yaml:"warnings,omitempty"`
	Elapsed  string           `yaml:"elapsed"`
	Output   *bsp.NodesResult `yaml:"output,omitempty"`
}

// fail records the reason the level wasn't built. The cause is logged too,
// in case it wraps something more specific than the message says
func (rep *LevelReport) fail(mlog *logger.MiniLogger, err error) {
	rep.Error = err.Error()
	mlog.Printf("Error: level %s not built: %s\n", rep.Name, rep.Error)
	mlog.Verbose(1, "Cause: %v\n", errors.Cause(err))
}

func (r *Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encoding report")
	}
	return errors.Wrap(enc.Close(), "encoding report")
}

func (r *Report) WriteFile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "creating report %s", fileName)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "report %s", fileName)
	}
	return errors.Wrapf(f.Close(), "report %s", fileName)
}

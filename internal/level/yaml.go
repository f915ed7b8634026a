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
package level

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ReadYAML decodes a single map. Used for test fixtures and for feeding maps
// produced by tools that don't write wads
func ReadYAML(r io.Reader) (*Map, error) {
	m := &Map{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, errors.Wrap(err, "decoding map")
	}
	return m, nil
}

func LoadYAML(fileName string) (*Map, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening map %s", fileName)
	}
	defer f.Close()
	m, err := ReadYAML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", fileName)
	}
	return m, nil
}

func (m *Map) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrapf(err, "encoding map %s", m.Name)
	}
	return errors.Wrap(enc.Close(), "encoding map")
}

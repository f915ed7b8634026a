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

// yaml_test.go
package level

import (
	"bytes"
	"strings"
	"testing"
)

const handWritten = `
name: HANDMADE
vertices:
  - {x: 0, y: 0}
  - {x: 0, y: 64}
  - {x: 64, y: 64}
linedefs:
  - {v1: 0, v2: 1, front: 0}
  - {v1: 1, v2: 2, front: 0}
  - {v1: 2, v2: 0, front: 0}
sidedefs:
  - {sector: 0}
sectors:
  - {floor_height: 0, ceil_height: 72}
`

func TestReadYAMLDefaults(t *testing.T) {
	m, err := ReadYAML(strings.NewReader(handWritten))
	if err != nil {
		t.Fatalf("ReadYAML: %s", err.Error())
	}
	if len(m.Linedefs) != 3 {
		t.Fatalf("got %d linedefs, want 3", len(m.Linedefs))
	}
	for i, ld := range m.Linedefs {
		if ld.Back != NO_INDEX || ld.WindowEffect != NO_INDEX {
			t.Errorf("linedef %d: omitted back/window_effect decoded as %d/%d",
				i, ld.Back, ld.WindowEffect)
		}
	}
	if m.SideSector(0, 1) != NO_INDEX {
		t.Errorf("one-sided line has a back sector")
	}
}

func TestReadYAMLUnknownField(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("name: X\nbogus: 1\n"))
	if err == nil {
		t.Errorf("unknown field was accepted")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	orig := TwoRooms()
	orig.Linedefs[0].Args = []int{1, 2, 3}
	var buf bytes.Buffer
	if err := orig.WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %s", err.Error())
	}
	m, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML: %s", err.Error())
	}
	if m.Name != orig.Name || len(m.Linedefs) != len(orig.Linedefs) ||
		len(m.Vertices) != len(orig.Vertices) || len(m.Sectors) != len(orig.Sectors) {
		t.Fatalf("map changed in round trip")
	}
	for i := range m.Linedefs {
		a, b := orig.Linedefs[i], m.Linedefs[i]
		if a.V1 != b.V1 || a.V2 != b.V2 || a.Front != b.Front || a.Back != b.Back ||
			a.Flags != b.Flags {
			t.Errorf("linedef %d changed: %+v -> %+v", i, a, b)
		}
	}
	if len(m.Linedefs[0].Args) != 3 || m.Linedefs[0].Args[2] != 3 {
		t.Errorf("args lost: %v", m.Linedefs[0].Args)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := TwoRooms()
	orig.Linedefs[0].Args = []int{7}
	c := orig.Clone()
	c.Vertices[0].X = 1000
	c.Linedefs[0].Args[0] = 8
	c.Linedefs[1].Front = NO_INDEX
	if orig.Vertices[0].X == 1000 || orig.Linedefs[0].Args[0] != 7 ||
		orig.Linedefs[1].Front == NO_INDEX {
		t.Errorf("modifying the clone changed the original")
	}
}

func TestSamplesAreWellFormed(t *testing.T) {
	for _, name := range SampleNames() {
		m := Samples[name]()
		for i := range m.Linedefs {
			ld := &m.Linedefs[i]
			if ld.Front == NO_INDEX {
				t.Errorf("%s: linedef %d has no front", name, i)
			}
			if (ld.Back != NO_INDEX) != ld.IsTwoSided() {
				t.Errorf("%s: linedef %d two-sided flag disagrees with back sidedef", name, i)
			}
		}
	}
}

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

// Package level is the map data nodes builder consumes: vertices, linedefs,
// sidedefs, sectors and things, already parsed from whatever format they came
// in, plus the analysis pass that annotates linedefs before building.
package level

import (
	"gopkg.in/yaml.v3"
)

// Absent sidedef / sector / linedef reference
const NO_INDEX = -1

// COMMON linedef flags: for Doom & derivatives
const LF_IMPASSABLE = uint16(0x0001)
const LF_BLOCK_MONSTER = uint16(0x0002)
const LF_TWOSIDED = uint16(0x0004)
const LF_UPPER_UNPEGGED = uint16(0x0008)
const LF_LOWER_UNPEGGED = uint16(0x0010)
const LF_SECRET = uint16(0x0020) // shown as 1-sided on automap
const LF_BLOCK_SOUND = uint16(0x0040)
const LF_NEVER_ON_AUTOMAP = uint16(0x0080)
const LF_ALWAYS_ON_AUTOMAP = uint16(0x0100)

const HEXEN_ACTION_POLY_START = 1
const HEXEN_ACTION_POLY_EXPLICIT = 5

const PO_ANCHOR_TYPE = 3000
const PO_SPAWN_TYPE = 3001
const PO_SPAWNCRUSH_TYPE = 3002

const ZDOOM_PO_ANCHOR_TYPE = 9300
const ZDOOM_PO_SPAWN_TYPE = 9301
const ZDOOM_PO_SPAWNCRUSH_TYPE = 9302

type Vertex struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Linedef as nodes builder sees it. The second group of fields are
// build-time annotations, normally filled in by Analyze
type Linedef struct {
	V1     int      `yaml:"v1"`
	V2     int      `yaml:"v2"`
	Flags  uint16   `yaml:"flags,omitempty"`
	Action uint16   `yaml:"action,omitempty"`
	Tag    uint16   `yaml:"tag,omitempty"`
	Args   []int    `yaml:"args,flow,omitempty"` // Hexen only, up to 5
	Front  int      `yaml:"front"`               // front sidedef, front is to the right
	Back   int      `yaml:"back"`                // back sidedef or NO_INDEX

	ZeroLength bool `yaml:"zero_length,omitempty"`
	Overlap    bool `yaml:"overlap,omitempty"` // duplicate of an earlier line
	Polyobj    bool `yaml:"polyobj,omitempty"` // part of a polyobject, not a wall
	Precious   bool `yaml:"precious,omitempty"`
	SelfRef    bool `yaml:"self_ref,omitempty"`
	// Sector seen behind a one-sided line, NO_INDEX if none
	WindowEffect int `yaml:"window_effect"`
}

type Sidedef struct {
	XOffset int16  `yaml:"xoff,omitempty"`
	YOffset int16  `yaml:"yoff,omitempty"`
	Upper   string `yaml:"upper,omitempty"`
	Lower   string `yaml:"lower,omitempty"`
	Middle  string `yaml:"middle,omitempty"`
	Sector  int    `yaml:"sector"`
}

type Sector struct {
	FloorHeight int16  `yaml:"floor_height"`
	CeilHeight  int16  `yaml:"ceil_height"`
	Floor       string `yaml:"floor,omitempty"`
	Ceil        string `yaml:"ceil,omitempty"`
	Light       uint16 `yaml:"light,omitempty"`
	Special     uint16 `yaml:"special,omitempty"`
	Tag         uint16 `yaml:"tag,omitempty"`
}

type Thing struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle int16   `yaml:"angle,omitempty"`
	Type  int16   `yaml:"type"`
	Flags int16   `yaml:"flags,omitempty"`
}

type Map struct {
	Name     string    `yaml:"name"`
	Hexen    bool      `yaml:"hexen,omitempty"`
	Vertices []Vertex  `yaml:"vertices"`
	Linedefs []Linedef `yaml:"linedefs"`
	Sidedefs []Sidedef `yaml:"sidedefs"`
	Sectors  []Sector  `yaml:"sectors"`
	Things   []Thing   `yaml:"things,omitempty"`
}

// NewLinedef returns a linedef without sidedefs or annotations
func NewLinedef(v1, v2 int) Linedef {
	return Linedef{
		V1:           v1,
		V2:           v2,
		Front:        NO_INDEX,
		Back:         NO_INDEX,
		WindowEffect: NO_INDEX,
	}
}

// UnmarshalYAML lets YAML maps omit back sidedef and window effect of
// one-sided lines
func (l *Linedef) UnmarshalYAML(value *yaml.Node) error {
	type plain Linedef
	p := plain(NewLinedef(0, 0))
	if err := value.Decode(&p); err != nil {
		return err
	}
	*l = Linedef(p)
	return nil
}

func (l *Linedef) IsTwoSided() bool {
	return l.Flags&LF_TWOSIDED != 0
}

// SideSector returns the sector on the front (side = 0) or back (side = 1)
// of the linedef, NO_INDEX if there is no valid sidedef
func (m *Map) SideSector(line int, side int) int {
	ld := &m.Linedefs[line]
	sdef := ld.Front
	if side != 0 {
		sdef = ld.Back
	}
	if sdef < 0 || sdef >= len(m.Sidedefs) {
		return NO_INDEX
	}
	return m.Sidedefs[sdef].Sector
}

// LineCoords returns coordinates of start and end vertex
func (m *Map) LineCoords(line int) (x1, y1, x2, y2 float64) {
	ld := &m.Linedefs[line]
	v1 := m.Vertices[ld.V1]
	v2 := m.Vertices[ld.V2]
	return v1.X, v1.Y, v2.X, v2.Y
}

// Clone makes a deep copy, so that analysis of the copy leaves the original
// untouched
func (m *Map) Clone() *Map {
	c := &Map{
		Name:     m.Name,
		Hexen:    m.Hexen,
		Vertices: append([]Vertex(nil), m.Vertices...),
		Linedefs: append([]Linedef(nil), m.Linedefs...),
		Sidedefs: append([]Sidedef(nil), m.Sidedefs...),
		Sectors:  append([]Sector(nil), m.Sectors...),
		Things:   append([]Thing(nil), m.Things...),
	}
	for i := range c.Linedefs {
		if c.Linedefs[i].Args != nil {
			c.Linedefs[i].Args = append([]int(nil), c.Linedefs[i].Args...)
		}
	}
	return c
}

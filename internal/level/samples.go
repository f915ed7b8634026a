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
	"sort"
)

// Builder assembles small maps out of sector outlines. Used by tests and by
// the -sample option of the command line tool
type Builder struct {
	m      *Map
	vertex map[Vertex]int
	// line between two vertices, keyed start->end
	lines map[[2]int]int
}

func NewBuilder(name string) *Builder {
	return &Builder{
		m:      &Map{Name: name},
		vertex: make(map[Vertex]int),
		lines:  make(map[[2]int]int),
	}
}

func (b *Builder) Sector(floor, ceil int16) int {
	b.m.Sectors = append(b.m.Sectors, Sector{
		FloorHeight: floor,
		CeilHeight:  ceil,
		Light:       160,
	})
	return len(b.m.Sectors) - 1
}

func (b *Builder) Vertex(x, y float64) int {
	v := Vertex{X: x, Y: y}
	if idx, ok := b.vertex[v]; ok {
		return idx
	}
	b.m.Vertices = append(b.m.Vertices, v)
	b.vertex[v] = len(b.m.Vertices) - 1
	return len(b.m.Vertices) - 1
}

func (b *Builder) sidedef(sector int) int {
	if sector == NO_INDEX {
		return NO_INDEX
	}
	b.m.Sidedefs = append(b.m.Sidedefs, Sidedef{Sector: sector, Middle: "-"})
	return len(b.m.Sidedefs) - 1
}

// Line adds a linedef with the given sectors on the front and back, either
// may be NO_INDEX. Two-sided flag is set when both are present
func (b *Builder) Line(x1, y1, x2, y2 float64, front, back int) int {
	ld := NewLinedef(b.Vertex(x1, y1), b.Vertex(x2, y2))
	ld.Front = b.sidedef(front)
	ld.Back = b.sidedef(back)
	if ld.Front != NO_INDEX && ld.Back != NO_INDEX {
		ld.Flags |= LF_TWOSIDED
	} else {
		ld.Flags |= LF_IMPASSABLE
	}
	b.m.Linedefs = append(b.m.Linedefs, ld)
	idx := len(b.m.Linedefs) - 1
	b.lines[[2]int{ld.V1, ld.V2}] = idx
	return idx
}

// Outline adds the boundary of a sector, points going clockwise so that the
// sector is on the right. An edge that some earlier outline already has in
// the opposite direction becomes the back side of that line instead of a
// new line
func (b *Builder) Outline(sector int, pts ...[2]float64) {
	for i := range pts {
		p1 := pts[i]
		p2 := pts[(i+1)%len(pts)]
		v1 := b.Vertex(p1[0], p1[1])
		v2 := b.Vertex(p2[0], p2[1])
		if idx, ok := b.lines[[2]int{v2, v1}]; ok && b.m.Linedefs[idx].Back == NO_INDEX {
			ld := &b.m.Linedefs[idx]
			ld.Back = b.sidedef(sector)
			ld.Flags = (ld.Flags &^ LF_IMPASSABLE) | LF_TWOSIDED
			continue
		}
		b.Line(p1[0], p1[1], p2[0], p2[1], sector, NO_INDEX)
	}
}

func (b *Builder) Thing(x, y float64, typ int16) {
	b.m.Things = append(b.m.Things, Thing{X: x, Y: y, Type: typ})
}

func (b *Builder) Map() *Map {
	return b.m
}

func rect(x1, y1, x2, y2 float64) [][2]float64 {
	return [][2]float64{{x1, y1}, {x1, y2}, {x2, y2}, {x2, y1}}
}

// SquareRoom is a single convex sector
func SquareRoom() *Map {
	b := NewBuilder("SQUARE")
	s := b.Sector(0, 128)
	b.Outline(s, rect(0, 0, 256, 256)...)
	return b.Map()
}

// TwoRooms is two sectors sharing a two-sided wall at x = 256
func TwoRooms() *Map {
	b := NewBuilder("TWOROOMS")
	a := b.Sector(0, 128)
	c := b.Sector(16, 128)
	b.Outline(a, rect(0, 0, 256, 256)...)
	b.Outline(c, rect(256, 0, 512, 256)...)
	return b.Map()
}

// LRoom is a single non-convex sector
func LRoom() *Map {
	b := NewBuilder("LROOM")
	s := b.Sector(0, 128)
	b.Outline(s, [][2]float64{{0, 0}, {0, 128}, {64, 128}, {64, 64}, {128, 64}, {128, 0}}...)
	return b.Map()
}

// ZeroLengthRoom is SquareRoom with a degenerate line in the middle
func ZeroLengthRoom() *Map {
	m := SquareRoom()
	m.Name = "ZEROLEN"
	b := &Builder{m: m, vertex: make(map[Vertex]int), lines: make(map[[2]int]int)}
	v := b.Vertex(128, 128)
	ld := NewLinedef(v, v)
	ld.Front = b.sidedef(0)
	m.Linedefs = append(m.Linedefs, ld)
	return m
}

// SelfRefRoom has a free-standing line with sector 0 on both sides inside a
// square room
func SelfRefRoom() *Map {
	b := NewBuilder("SELFREF")
	s := b.Sector(0, 128)
	b.Outline(s, rect(0, 0, 256, 256)...)
	b.Line(96, 128, 160, 128, s, s)
	return b.Map()
}

// SelfRefTwoRooms is TwoRooms with a self-referencing line in the first room
func SelfRefTwoRooms() *Map {
	m := TwoRooms()
	m.Name = "SELFREF2"
	b := &Builder{m: m, vertex: make(map[Vertex]int), lines: make(map[[2]int]int)}
	for i, v := range m.Vertices {
		b.vertex[v] = i
	}
	b.Line(96, 128, 160, 128, 0, 0)
	return b.Map()
}

// WindowRoom is two rooms where the second one lacks a wall toward the
// first, so the first room's one-sided wall is a window into it
func WindowRoom() *Map {
	b := NewBuilder("WINDOW")
	a := b.Sector(0, 128)
	c := b.Sector(0, 96)
	b.Outline(a, rect(0, 0, 256, 256)...)
	b.Line(256, 256, 512, 256, c, NO_INDEX)
	b.Line(512, 256, 512, 0, c, NO_INDEX)
	b.Line(512, 0, 256, 0, c, NO_INDEX)
	return b.Map()
}

// Courtyard is an open sector with a pillar sector inside and a diagonal
// wall cutting one corner, big enough to need several partitions
func Courtyard() *Map {
	b := NewBuilder("COURTYARD")
	yard := b.Sector(0, 256)
	pillar := b.Sector(64, 256)
	b.Outline(yard, [][2]float64{{0, 0}, {0, 512}, {384, 512}, {512, 384}, {512, 0}}...)
	b.Outline(pillar, rect(192, 192, 320, 320)...)
	for i := range b.m.Linedefs {
		ld := &b.m.Linedefs[i]
		if ld.Back == NO_INDEX && b.m.Sidedefs[ld.Front].Sector == pillar {
			// yard surrounds the pillar
			ld.Back = b.sidedef(yard)
			ld.Flags = (ld.Flags &^ LF_IMPASSABLE) | LF_TWOSIDED
		}
	}
	return b.Map()
}

// Samples by name, for the command line tool
var Samples = map[string]func() *Map{
	"square":    SquareRoom,
	"tworooms":  TwoRooms,
	"lroom":     LRoom,
	"zerolen":   ZeroLengthRoom,
	"selfref":   SelfRefRoom,
	"selfref2":  SelfRefTwoRooms,
	"window":    WindowRoom,
	"courtyard": Courtyard,
}

func SampleNames() []string {
	names := make([]string, 0, len(Samples))
	for name := range Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

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

// Package wad reads level geometry out of Doom and Hexen wad files
package wad

import (
	"regexp"
)

// NOTE: Doom 64 and UDMF levels are not supported

// Level markers. Anything not matching these is not a level, even if level
// lumps follow it
var MAP_SEQUEL *regexp.Regexp = regexp.MustCompile(`^MAP[0-9][0-9]$`)
var MAP_ExMx *regexp.Regexp = regexp.MustCompile(`^E[1-9]M[0-9][0-9]?$`)

const IWAD_MAGIC_SIG = uint32(0x44415749) // ASCII - 'IWAD'
const PWAD_MAGIC_SIG = uint32(0x44415750) // ASCII - 'PWAD'

const SIDEDEF_NONE = uint16(0xFFFF)

const DOOM_LINEDEF_SIZE = 14  // Size of "Linedef" struct
const HEXEN_LINEDEF_SIZE = 16 // Size of "HexenLinedef" struct
const DOOM_SIDEDEF_SIZE = 30  // Size of "Sidedef" struct
const DOOM_SECTOR_SIZE = 26   // Size of "Sector" struct
const VERTEX_SIZE = 4
const DOOM_THING_SIZE = 10
const HEXEN_THING_SIZE = 20

// Lumps that may follow a level marker. Builder output lumps are recognized
// so that they are skipped over, never read
var LEVEL_LUMPS = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
	"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP", "BEHAVIOR", "SCRIPTS"}
var LUMP_MUSTEXIST = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"}

// Wad header, 12 bytes.
type WadHeader struct {
	MagicSig       uint32
	LumpCount      uint32 // vanilla treats this as signed int32
	DirectoryStart uint32 // vanilla treats this as signed int32
}

// Each lump entry is 16 bytes long, and they follow one another starting at
// WadHeader.DirectoryStart
type LumpEntry struct {
	FilePos uint32 // vanilla treats this as signed int32
	Size    uint32 // vanilla treats this as signed int32
	Name    [8]byte
}

// This is Doom/Heretic/Strife thing. Not Hexen thing
type Thing struct {
	XPos  int16
	YPos  int16
	Angle int16
	Type  int16
	Flags int16
}

type HexenThing struct {
	TID            int16
	XPos           int16
	YPos           int16
	StartingHeight int16
	Angle          int16
	Type           int16
	Flags          int16
	Action         uint8
	Args           [5]byte
}

// Doom/Heretic linedef format
type Linedef struct {
	// Vanilla treats ALL fields as signed int16
	StartVertex uint16
	EndVertex   uint16
	Flags       uint16
	Action      uint16
	Tag         uint16
	FrontSdef   uint16 // Front Sidedef number
	BackSdef    uint16 // Back Sidedef number (0xFFFF special value for one-sided line)
}

type HexenLinedef struct {
	StartVertex uint16
	EndVertex   uint16
	Flags       uint16
	Action      uint8
	Args        [5]uint8 // first one acts as polyobject number for polyobject actions
	FrontSdef   uint16
	BackSdef    uint16
}

type Sidedef struct {
	XOffset int16
	YOffset int16
	UpName  [8]byte // name of upper texture
	LoName  [8]byte // name of lower texture
	MidName [8]byte // name of middle texture
	Sector  uint16  // sector number; vanilla treats this as signed int16
}

type Vertex struct {
	XPos int16
	YPos int16
}

type Sector struct {
	FloorHeight int16
	CeilHeight  int16
	FloorName   [8]byte
	CeilName    [8]byte
	LightLevel  uint16
	Special     uint16
	Tag         uint16
}

func IsALevel(lumpName []byte) bool {
	return MAP_SEQUEL.Match(lumpName) || MAP_ExMx.Match(lumpName)
}

func isLevelLump(name string) bool {
	for _, s := range LEVEL_LUMPS {
		if s == name {
			return true
		}
	}
	return false
}

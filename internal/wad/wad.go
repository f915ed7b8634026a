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
package wad

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

var ErrNotAWad = errors.New("the input file is NOT a wad")
var ErrNoLevel = errors.New("no such level")
var ErrMissingLump = errors.New("level is missing a mandatory lump")
var ErrCorrupt = errors.New("wad structure points past the end of file")

// LevelEntry locates lumps of one level in the directory
type LevelEntry struct {
	Name  string
	Hexen bool
	// directory index of each level lump present, by lump name
	Lumps map[string]int
}

type Wad struct {
	Header WadHeader
	Dir    []LumpEntry
	Levels []LevelEntry
	r      io.ReaderAt
	size   int64
}

// ByteSliceBeforeTerm returns a part of the original bytes
// excluding everything that starts with zero-byte character.
// This allows string operations (such as pattern matching) to be performed
// correctly on returned value
func ByteSliceBeforeTerm(b []byte) []byte {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return b
	}
	return b[:i]
}

func lumpName(name [8]byte) string {
	return string(ByteSliceBeforeTerm(name[:]))
}

// Open reads the header and the directory and identifies levels. Lump data
// is read only when a level is loaded. size is the size of the file, the
// directory and lumps must fit in it
func Open(r io.ReaderAt, size int64, mlog *logger.MiniLogger) (*Wad, error) {
	w := &Wad{r: r, size: size}
	err := binary.Read(io.NewSectionReader(r, 0, 12), binary.LittleEndian, &w.Header)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read file header")
	}
	switch w.Header.MagicSig {
	case IWAD_MAGIC_SIG:
		mlog.Verbose(1, "The input file is an IWAD\n")
	case PWAD_MAGIC_SIG:
		mlog.Verbose(1, "The input file is a PWAD\n")
	default:
		return nil, ErrNotAWad
	}
	mlog.Verbose(1, "The directory contains %d lumps and starts at %d byte offset\n",
		w.Header.LumpCount, w.Header.DirectoryStart)

	dirSize := int64(w.Header.LumpCount) * int64(binary.Size(LumpEntry{}))
	if int64(w.Header.DirectoryStart)+dirSize > size {
		return nil, errors.Wrapf(ErrCorrupt, "directory of %d lumps at %d byte offset doesn't fit in %d bytes",
			w.Header.LumpCount, w.Header.DirectoryStart, size)
	}
	// Read in whole directory at once
	w.Dir = make([]LumpEntry, w.Header.LumpCount)
	err = binary.Read(io.NewSectionReader(r, int64(w.Header.DirectoryStart), dirSize),
		binary.LittleEndian, w.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read lump info from a wad's directory (%d offset)",
			w.Header.DirectoryStart)
	}
	w.findLevels(mlog)
	return w, nil
}

func (w *Wad) findLevels(mlog *logger.MiniLogger) {
	for i := 0; i < len(w.Dir); i++ {
		bname := ByteSliceBeforeTerm(w.Dir[i].Name[:])
		if !IsALevel(bname) {
			continue
		}
		entry := LevelEntry{Name: string(bname), Lumps: make(map[string]int)}
		j := i + 1
		for ; j < len(w.Dir); j++ {
			name := lumpName(w.Dir[j].Name)
			if !isLevelLump(name) {
				break
			}
			if _, dup := entry.Lumps[name]; dup {
				mlog.Printf("Warning: level %s has duplicate lump %s, using the first one\n",
					entry.Name, name)
				continue
			}
			entry.Lumps[name] = j
		}
		_, entry.Hexen = entry.Lumps["BEHAVIOR"]
		w.Levels = append(w.Levels, entry)
		i = j - 1
	}
}

// LevelNames in the order they appear in the directory
func (w *Wad) LevelNames() []string {
	names := make([]string, len(w.Levels))
	for i, entry := range w.Levels {
		names[i] = entry.Name
	}
	return names
}

// readLump fills out, which must be a slice of fixed-size records, with as
// many records as the lump holds
func (w *Wad) readLump(idx int, out interface{}) error {
	if err := w.checkLump(idx); err != nil {
		return err
	}
	le := w.Dir[idx]
	sr := io.NewSectionReader(w.r, int64(le.FilePos), int64(le.Size))
	return errors.Wrapf(binary.Read(sr, binary.LittleEndian, out),
		"reading lump %s", lumpName(le.Name))
}

func (w *Wad) checkLump(idx int) error {
	le := w.Dir[idx]
	if int64(le.FilePos)+int64(le.Size) > w.size {
		return errors.Wrapf(ErrCorrupt, "lump %s (%d bytes at %d)", lumpName(le.Name),
			le.Size, le.FilePos)
	}
	return nil
}

func (w *Wad) count(idx int, recSize uint32) int {
	return int(w.Dir[idx].Size / recSize)
}

// LoadLevel converts the level's lumps into a map
func (w *Wad) LoadLevel(name string, mlog *logger.MiniLogger) (*level.Map, error) {
	var entry *LevelEntry
	for i := range w.Levels {
		if strings.EqualFold(w.Levels[i].Name, name) {
			entry = &w.Levels[i]
			break
		}
	}
	if entry == nil {
		return nil, errors.Wrapf(ErrNoLevel, "%s", name)
	}
	for _, must := range LUMP_MUSTEXIST {
		if _, ok := entry.Lumps[must]; !ok {
			return nil, errors.Wrapf(ErrMissingLump, "level %s has no %s", entry.Name, must)
		}
	}
	// sizes are checked before anything is allocated for them
	for _, idx := range entry.Lumps {
		if err := w.checkLump(idx); err != nil {
			return nil, errors.Wrapf(err, "level %s", entry.Name)
		}
	}
	m := &level.Map{Name: entry.Name, Hexen: entry.Hexen}
	if entry.Hexen {
		mlog.Printf("Level is in Hexen format.\n")
	}

	idx := entry.Lumps["VERTEXES"]
	vertices := make([]Vertex, w.count(idx, VERTEX_SIZE))
	if err := w.readLump(idx, vertices); err != nil {
		return nil, err
	}
	m.Vertices = make([]level.Vertex, len(vertices))
	for i, v := range vertices {
		m.Vertices[i] = level.Vertex{X: float64(v.XPos), Y: float64(v.YPos)}
	}

	if err := w.loadLinedefs(entry, m); err != nil {
		return nil, err
	}

	idx = entry.Lumps["SIDEDEFS"]
	sidedefs := make([]Sidedef, w.count(idx, DOOM_SIDEDEF_SIZE))
	if err := w.readLump(idx, sidedefs); err != nil {
		return nil, err
	}
	m.Sidedefs = make([]level.Sidedef, len(sidedefs))
	for i, s := range sidedefs {
		m.Sidedefs[i] = level.Sidedef{
			XOffset: s.XOffset,
			YOffset: s.YOffset,
			Upper:   lumpName(s.UpName),
			Lower:   lumpName(s.LoName),
			Middle:  lumpName(s.MidName),
			Sector:  int(s.Sector),
		}
	}

	idx = entry.Lumps["SECTORS"]
	sectors := make([]Sector, w.count(idx, DOOM_SECTOR_SIZE))
	if err := w.readLump(idx, sectors); err != nil {
		return nil, err
	}
	m.Sectors = make([]level.Sector, len(sectors))
	for i, s := range sectors {
		m.Sectors[i] = level.Sector{
			FloorHeight: s.FloorHeight,
			CeilHeight:  s.CeilHeight,
			Floor:       lumpName(s.FloorName),
			Ceil:        lumpName(s.CeilName),
			Light:       s.LightLevel,
			Special:     s.Special,
			Tag:         s.Tag,
		}
	}

	if err := w.loadThings(entry, m); err != nil {
		return nil, err
	}
	mlog.Verbose(1, "Loaded %s: %d vertices, %d linedefs, %d sidedefs, %d sectors, %d things\n",
		m.Name, len(m.Vertices), len(m.Linedefs), len(m.Sidedefs), len(m.Sectors), len(m.Things))
	return m, nil
}

func sidedefIndex(s uint16) int {
	if s == SIDEDEF_NONE {
		return level.NO_INDEX
	}
	return int(s)
}

func (w *Wad) loadLinedefs(entry *LevelEntry, m *level.Map) error {
	idx := entry.Lumps["LINEDEFS"]
	if !entry.Hexen {
		linedefs := make([]Linedef, w.count(idx, DOOM_LINEDEF_SIZE))
		if err := w.readLump(idx, linedefs); err != nil {
			return err
		}
		m.Linedefs = make([]level.Linedef, len(linedefs))
		for i, l := range linedefs {
			ld := level.NewLinedef(int(l.StartVertex), int(l.EndVertex))
			ld.Flags = l.Flags
			ld.Action = l.Action
			ld.Tag = l.Tag
			ld.Front = sidedefIndex(l.FrontSdef)
			ld.Back = sidedefIndex(l.BackSdef)
			m.Linedefs[i] = ld
		}
		return nil
	}
	linedefs := make([]HexenLinedef, w.count(idx, HEXEN_LINEDEF_SIZE))
	if err := w.readLump(idx, linedefs); err != nil {
		return err
	}
	m.Linedefs = make([]level.Linedef, len(linedefs))
	for i, l := range linedefs {
		ld := level.NewLinedef(int(l.StartVertex), int(l.EndVertex))
		ld.Flags = l.Flags
		ld.Action = uint16(l.Action)
		ld.Args = make([]int, len(l.Args))
		for j, arg := range l.Args {
			ld.Args[j] = int(arg)
		}
		ld.Front = sidedefIndex(l.FrontSdef)
		ld.Back = sidedefIndex(l.BackSdef)
		m.Linedefs[i] = ld
	}
	return nil
}

func (w *Wad) loadThings(entry *LevelEntry, m *level.Map) error {
	idx := entry.Lumps["THINGS"]
	if !entry.Hexen {
		things := make([]Thing, w.count(idx, DOOM_THING_SIZE))
		if err := w.readLump(idx, things); err != nil {
			return err
		}
		m.Things = make([]level.Thing, len(things))
		for i, t := range things {
			m.Things[i] = level.Thing{X: float64(t.XPos), Y: float64(t.YPos),
				Angle: t.Angle, Type: t.Type, Flags: t.Flags}
		}
		return nil
	}
	things := make([]HexenThing, w.count(idx, HEXEN_THING_SIZE))
	if err := w.readLump(idx, things); err != nil {
		return err
	}
	m.Things = make([]level.Thing, len(things))
	for i, t := range things {
		m.Things[i] = level.Thing{X: float64(t.XPos), Y: float64(t.YPos),
			Angle: t.Angle, Type: t.Type, Flags: t.Flags}
	}
	return nil
}

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
	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

var ErrBadReference = errors.New("bad reference in map data")

// Analysis summarizes what the pre-build pass found and annotated
type Analysis struct {
	BadSidedefs    int `yaml:"bad_sidedefs"`
	MergedVertices int `yaml:"merged_vertices"`
	ZeroLength     int `yaml:"zero_length"`
	Overlaps       int `yaml:"overlaps"`
	SelfRef        int `yaml:"self_ref"`
	WindowEffects  int `yaml:"window_effects"`
	Polyobjs       int `yaml:"polyobjs"`
	PolyobjLines   int `yaml:"polyobj_lines"`
	PreciousLines  int `yaml:"precious_lines"`
}

// Analyze validates references and annotates linedefs of the map in place.
// Annotations from an earlier run are recomputed, not accumulated. Only
// references that can't be recovered from are reported as error, everything
// else is a warning
func Analyze(m *Map, mlog *logger.MiniLogger) (*Analysis, error) {
	a := &Analysis{}
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		ld.ZeroLength = false
		ld.Overlap = false
		ld.Polyobj = false
		ld.Precious = false
		ld.SelfRef = false
		ld.WindowEffect = NO_INDEX
	}
	if err := m.checkReferences(mlog, a); err != nil {
		return nil, err
	}
	a.MergedVertices = m.MergeDuplicateVertices()
	if a.MergedVertices > 0 {
		mlog.Verbose(1, "Merged %d duplicate vertices.\n", a.MergedVertices)
	}
	a.ZeroLength = m.DetectZeroLength(mlog)
	a.Overlaps = m.DetectOverlaps(mlog)
	a.SelfRef = m.DetectSelfRef(mlog)
	a.Polyobjs, a.PolyobjLines = m.DetectPolyobjects(mlog)
	a.PreciousLines = m.DetectPrecious()
	a.WindowEffects = m.DetectWindowEffects(mlog)
	return a, nil
}

func (m *Map) checkReferences(mlog *logger.MiniLogger, a *Analysis) error {
	numVerts := len(m.Vertices)
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if ld.V1 < 0 || ld.V1 >= numVerts || ld.V2 < 0 || ld.V2 >= numVerts {
			return errors.Wrapf(ErrBadReference,
				"linedef %d references vertices %d, %d but there are only %d",
				i, ld.V1, ld.V2, numVerts)
		}
		if ld.Front != NO_INDEX && (ld.Front < 0 || ld.Front >= len(m.Sidedefs)) {
			mlog.Printf("Warning: linedef %d references non-existent front sidedef %d\n",
				i, ld.Front)
			ld.Front = NO_INDEX
			a.BadSidedefs++
		}
		if ld.Back != NO_INDEX && (ld.Back < 0 || ld.Back >= len(m.Sidedefs)) {
			mlog.Printf("Warning: linedef %d references non-existent back sidedef %d\n",
				i, ld.Back)
			ld.Back = NO_INDEX
			a.BadSidedefs++
		}
	}
	for i, sdef := range m.Sidedefs {
		if sdef.Sector < 0 || sdef.Sector >= len(m.Sectors) {
			return errors.Wrapf(ErrBadReference,
				"sidedef %d references sector %d but there are only %d",
				i, sdef.Sector, len(m.Sectors))
		}
	}
	return nil
}

// MergeDuplicateVertices makes linedefs that use different vertices at the
// exact same position use the first of them. The vertex array itself is not
// modified, so that indices stay stable. Returns number of vertices that
// became unreferenced this way
func (m *Map) MergeDuplicateVertices() int {
	first := make(map[Vertex]int, len(m.Vertices))
	canon := make([]int, len(m.Vertices))
	merged := 0
	for i, v := range m.Vertices {
		if j, ok := first[v]; ok {
			canon[i] = j
			merged++
		} else {
			first[v] = i
			canon[i] = i
		}
	}
	if merged == 0 {
		return 0
	}
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		ld.V1 = canon[ld.V1]
		ld.V2 = canon[ld.V2]
	}
	return merged
}

func (m *Map) DetectZeroLength(mlog *logger.MiniLogger) int {
	count := 0
	for i := range m.Linedefs {
		x1, y1, x2, y2 := m.LineCoords(i)
		if x1 == x2 && y1 == y2 {
			m.Linedefs[i].ZeroLength = true
			mlog.Printf("Warning: linedef %d is zero-length, it will be ignored\n", i)
			count++
		}
	}
	return count
}

// DetectOverlaps marks linedefs that connect the same pair of vertices as
// some earlier linedef, in either direction. Run after
// MergeDuplicateVertices, which is what makes comparing indices sufficient
func (m *Map) DetectOverlaps(mlog *logger.MiniLogger) int {
	type vertexPair struct {
		lo, hi int
	}
	seen := make(map[vertexPair]int, len(m.Linedefs))
	count := 0
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if ld.ZeroLength {
			continue
		}
		key := vertexPair{lo: ld.V1, hi: ld.V2}
		if key.lo > key.hi {
			key.lo, key.hi = key.hi, key.lo
		}
		if j, ok := seen[key]; ok {
			ld.Overlap = true
			mlog.Printf("Warning: linedef %d overlaps linedef %d, it will be ignored\n", i, j)
			count++
			continue
		}
		seen[key] = i
	}
	return count
}

// DetectSelfRef marks linedefs that have the same sector on both sides
func (m *Map) DetectSelfRef(mlog *logger.MiniLogger) int {
	count := 0
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if ld.ZeroLength || ld.Overlap {
			continue
		}
		front := m.SideSector(i, 0)
		back := m.SideSector(i, 1)
		if front != NO_INDEX && front == back {
			ld.SelfRef = true
			mlog.Verbose(2, "Linedef %d is self-referencing (sector %d on both sides)\n",
				i, front)
			count++
		}
	}
	return count
}

// DetectPrecious marks lines nodes builder should avoid splitting: lines of
// sectors that contain polyobjects (already marked by DetectPolyobjects) and,
// like BSP nodebuilder as per Lee Killough ideas, lines tagged >= 900. Things
// removed from blockmap (tag 999) and no render (tag 998) don't count
func (m *Map) DetectPrecious() int {
	count := 0
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if !m.Hexen && ld.Tag >= 900 && ld.Tag != 999 && ld.Tag != 998 {
			ld.Precious = true
		}
		if ld.Precious {
			count++
		}
	}
	return count
}

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
	"math"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

const POLY_BOX_SZ = 10

// DetectPolyobjects finds the lines that make up polyobjects (they move, so
// are not walls and get no segs) and marks lines of the sectors polyobjects
// spawn in as precious, to prevent such sectors from being split.
// Based on code courtesy of Janis Legzdinsh. Returns number of polyobjects
// and number of lines belonging to them
func (m *Map) DetectPolyobjects(mlog *logger.MiniLogger) (int, int) {
	if !m.Hexen {
		return 0, 0
	}
	// -JL- There's a conflict between Hexen polyobj thing types and Doom thing
	//      types. In Doom type 3001 is for Imp and 3002 for Demon. To solve
	//      this problem, first we are going through all lines to see if the
	//      level has any polyobjs. If found, we also must detect what polyobj
	//      thing types are used - Hexen ones or ZDoom ones. That's why we
	//      are going through all things searching for ZDoom polyobj thing
	//      types. If any found, we assume that ZDoom polyobj thing types are
	//      used, otherwise Hexen polyobj thing types are used.

	// -JL- First go through all lines to see if level contains any polyobjs
	hasRelevantActions := false
	for _, line := range m.Linedefs {
		if line.Action == HEXEN_ACTION_POLY_START ||
			line.Action == HEXEN_ACTION_POLY_EXPLICIT {
			hasRelevantActions = true
			break
		}
	}
	if !hasRelevantActions {
		mlog.Verbose(1, "No lines acting on polyobjects => no polyobjects.\n")
		return 0, 0
	}

	polyobjs, lines := m.markPolyobjLines(mlog)

	hexenStyle := true
	for _, thing := range m.Things {
		if thing.Type == ZDOOM_PO_SPAWN_TYPE ||
			thing.Type == ZDOOM_PO_SPAWNCRUSH_TYPE {
			hexenStyle = false
			break
		}
	}
	spawn, spawnCrush := int16(PO_SPAWN_TYPE), int16(PO_SPAWNCRUSH_TYPE)
	if hexenStyle {
		mlog.Verbose(1, "Using Hexen-style polyobj things.\n")
	} else {
		mlog.Verbose(1, "Using Zdoom-style polyobj things.\n")
		spawn, spawnCrush = ZDOOM_PO_SPAWN_TYPE, ZDOOM_PO_SPAWNCRUSH_TYPE
	}

	sectorHasPolyobj := make(map[int]bool)
	for i, thing := range m.Things {
		if thing.Type != spawn && thing.Type != spawnCrush {
			continue
		}
		mlog.Verbose(3, "Thing %d at (%v,%v) is a polyobj spawner\n",
			i, thing.X, thing.Y)
		m.markPolyobjPoint(mlog, sectorHasPolyobj, i, thing.X, thing.Y)
	}
	return polyobjs, lines
}

// Lines of a polyobject are either listed explicitly (each with its own
// action) or start with a single line, the rest are found by following the
// chain of connected lines until it closes
func (m *Map) markPolyobjLines(mlog *logger.MiniLogger) (int, int) {
	numbers := make(map[int]bool)
	count := 0
	mark := func(i int) {
		if !m.Linedefs[i].Polyobj {
			m.Linedefs[i].Polyobj = true
			count++
		}
	}
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		poNum := 0
		if len(ld.Args) > 0 {
			poNum = ld.Args[0]
		}
		switch ld.Action {
		case HEXEN_ACTION_POLY_EXPLICIT:
			numbers[poNum] = true
			mark(i)
		case HEXEN_ACTION_POLY_START:
			numbers[poNum] = true
			mark(i)
			start := ld.V1
			cur := ld.V2
			visited := map[int]bool{i: true}
			for cur != start {
				next := -1
				for j := range m.Linedefs {
					if !visited[j] && m.Linedefs[j].V1 == cur {
						next = j
						break
					}
				}
				if next < 0 {
					mlog.Printf("Warning: polyobj %d starting at linedef %d is not closed\n",
						poNum, i)
					break
				}
				visited[next] = true
				mark(next)
				cur = m.Linedefs[next].V2
			}
		}
	}
	return len(numbers), count
}

// Basically port of AJ-BSP code, with comments also copied
func (m *Map) markPolyobjPoint(mlog *logger.MiniLogger, sectorHasPolyobj map[int]bool,
	thingNum int, x, y float64) {

	// -AJA- First we handle the "awkward" cases where the polyobj sits
	//       directly on a linedef or even a vertex.  We check all lines
	//       that intersect a small box around the spawn point.
	bminx := x - POLY_BOX_SZ
	bminy := y - POLY_BOX_SZ
	bmaxx := x + POLY_BOX_SZ
	bmaxy := y + POLY_BOX_SZ
	insideCount := 0
	for i := range m.Linedefs {
		if m.Linedefs[i].Polyobj {
			continue
		}
		x1, y1, x2, y2 := m.LineCoords(i)
		if checkLinedefInsideBox(bminx, bminy, bmaxx, bmaxy, x1, y1, x2, y2) {
			if sector := m.SideSector(i, 0); sector != NO_INDEX {
				m.markPolyobjSector(sectorHasPolyobj, sector)
			}
			if sector := m.SideSector(i, 1); sector != NO_INDEX {
				m.markPolyobjSector(sectorHasPolyobj, sector)
			}
			insideCount++
		}
	}
	if insideCount > 0 {
		return
	}

	// -AJA- Algorithm is just like in DEU: we cast a line horizontally
	//       from the given (x,y) position and find all linedefs that
	//       intersect it, choosing the one with the closest distance.
	//       If the point is sitting directly on a (two-sided) line,
	//       then we mark the sectors on both sides.
	bestDist := float64(99999999.0) // > maximum possible distance (max = 65536 * sqrt(2))
	bestMatch := -1
	for i := range m.Linedefs {
		if m.Linedefs[i].Polyobj {
			continue
		}
		x1, y1, x2, y2 := m.LineCoords(i)
		if y1 == y2 {
			continue
		}
		if (y > y1 && y > y2) || (y < y1 && y < y2) {
			continue
		}
		xCut := x1 + (x2-x1)*(y-y1)/(y2-y1) - x
		if math.Abs(xCut) < math.Abs(bestDist) {
			bestMatch = i
			bestDist = xCut
		}
	}

	if bestMatch < 0 {
		mlog.Printf("Warning: bad polyobj thing index %d at (%v, %v) - failed to trace its enclosing sector.\n",
			thingNum, x, y)
		return
	}
	_, y1, _, y2 := m.LineCoords(bestMatch)
	mlog.Verbose(2, "Closest line (polyobj thing = %d) was %d y1..y2=%v..%v (dist=%f)\n",
		thingNum, bestMatch, y1, y2, bestDist)
	var sector int
	if (y1 > y2) == (bestDist > 0.0) {
		sector = m.SideSector(bestMatch, 0)
	} else {
		sector = m.SideSector(bestMatch, 1)
	}
	if sector == NO_INDEX {
		mlog.Printf("Warning: bad polyobj thing index %d at (%v, %v) - traced line %d but it didn't have sidedef on a relevant side.\n",
			thingNum, x, y, bestMatch)
		return
	}
	m.markPolyobjSector(sectorHasPolyobj, sector)
}

func (m *Map) markPolyobjSector(sectorHasPolyobj map[int]bool, sector int) {
	if sectorHasPolyobj[sector] {
		return
	}
	sectorHasPolyobj[sector] = true
	// mark all lines of this sector as precious, to prevent the sector
	// from being split.
	for i := range m.Linedefs {
		if m.SideSector(i, 0) == sector || m.SideSector(i, 1) == sector {
			m.Linedefs[i].Precious = true
		}
	}
}

func checkLinedefInsideBox(xmin, ymin, xmax, ymax, x1, y1, x2, y2 float64) bool {
	count := 2
	for {
		if y1 > ymax {
			if y2 > ymax {
				return false
			}
			x1 = x1 + (x2-x1)*(ymax-y1)/(y2-y1)
			y1 = ymax
			count = 2
			continue
		}

		if y1 < ymin {
			if y2 < ymin {
				return false
			}
			x1 = x1 + (x2-x1)*(ymin-y1)/(y2-y1)
			y1 = ymin
			count = 2
			continue
		}

		if x1 > xmax {
			if x2 > xmax {
				return false
			}
			y1 = y1 + (y2-y1)*(xmax-x1)/(x2-x1)
			x1 = xmax
			count = 2
			continue
		}

		if x1 < xmin {
			if x2 < xmin {
				return false
			}
			y1 = y1 + (y2-y1)*(xmin-x1)/(x2-x1)
			x1 = xmin
			count = 2
			continue
		}

		count--
		if count == 0 {
			break
		}

		// swap end points
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}
	// linedef touches block
	return true
}

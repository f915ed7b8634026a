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

	"github.com/go-gl/mathgl/mgl64"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

// Two points closer than that along a cast ray are the same point
const WINDOW_EPSILON = 1.0 / 128.0

// Farther than anything on a map can be
const WINDOW_FAR = 999999.0

// One-sided window: a one-sided line through which a player sees a sector
// nevertheless, because nothing closes the sector behind it. Candidates are
// found by counting one-sided lines at each vertex - an odd number of them
// means some sector boundary doesn't close there (idea by Graham Jackson).
// Each candidate casts a ray from its middle, perpendicular-ish to itself,
// in both directions: if the line in front faces the candidate's own sector
// and the line behind faces some sector, the candidate is a window into that
// sector
func (m *Map) DetectWindowEffects(mlog *logger.MiniLogger) int {
	oneSiders := make([]int, len(m.Vertices))
	twoSiders := make([]int, len(m.Vertices))
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if !m.countsAsWall(i) {
			continue
		}
		if ld.Back != NO_INDEX {
			twoSiders[ld.V1]++
			twoSiders[ld.V2]++
		} else {
			oneSiders[ld.V1]++
			oneSiders[ld.V2]++
		}
	}
	count := 0
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if !m.countsAsWall(i) || ld.Back != NO_INDEX || ld.Front == NO_INDEX {
			continue
		}
		odd := false
		for _, v := range [2]int{ld.V1, ld.V2} {
			if oneSiders[v]%2 == 1 && oneSiders[v]+twoSiders[v] > 1 {
				odd = true
			}
		}
		if !odd {
			continue
		}
		if sector := m.castForWindow(i); sector != NO_INDEX {
			ld.WindowEffect = sector
			mlog.Printf("Warning: linedef %d seems to be a one-sided window (back faces sector %d)\n",
				i, sector)
			count++
		}
	}
	return count
}

func (m *Map) countsAsWall(i int) bool {
	ld := &m.Linedefs[i]
	return !ld.ZeroLength && !ld.Overlap && !ld.Polyobj
}

// castForWindow returns the sector seen behind linedef i, or NO_INDEX if the
// line is not a window
func (m *Map) castForWindow(i int) int {
	x1, y1, x2, y2 := m.LineCoords(i)
	start := mgl64.Vec2{x1, y1}
	delta := mgl64.Vec2{x2, y2}.Sub(start)
	mid := start.Add(delta.Mul(0.5))
	// cast along the axis the line is least aligned with
	castHoriz := math.Abs(delta.X()) < math.Abs(delta.Y())

	frontDist, backDist := WINDOW_FAR, WINDOW_FAR
	frontOpen, backOpen := NO_INDEX, NO_INDEX

	for j := range m.Linedefs {
		if j == i || !m.countsAsWall(j) {
			continue
		}
		nx1, ny1, nx2, ny2 := m.LineCoords(j)
		nStart := mgl64.Vec2{nx1, ny1}
		nDelta := mgl64.Vec2{nx2, ny2}.Sub(nStart)

		// along: the axis the ray goes along, across: the other one
		along, across := 0, 1
		if !castHoriz {
			along, across = 1, 0
		}
		if math.Abs(nDelta[across]) < WINDOW_EPSILON {
			continue
		}
		if math.Max(nStart[across], nStart[across]+nDelta[across]) < mid[across]-WINDOW_EPSILON ||
			math.Min(nStart[across], nStart[across]+nDelta[across]) > mid[across]+WINDOW_EPSILON {
			continue
		}
		hit := nStart[along] + (mid[across]-nStart[across])*nDelta[along]/nDelta[across]
		dist := hit - mid[along]
		if math.Abs(dist) < WINDOW_EPSILON {
			// too close (overlapping lines ?)
			continue
		}

		// Front of a line is to its right. For a horizontal ray that is the
		// positive side when the line goes up, for a vertical one it is the
		// positive side when the line goes left
		var isFront bool
		if castHoriz {
			isFront = (delta.Y() > 0) == (dist > 0)
		} else {
			isFront = (delta.X() < 0) == (dist > 0)
		}
		// Which side of the hit line faces back to us, by the same rule
		var facingFront bool
		if castHoriz {
			facingFront = (nDelta.Y() > 0) == (dist < 0)
		} else {
			facingFront = (nDelta.X() < 0) == (dist < 0)
		}
		side := 1
		if facingFront {
			side = 0
		}
		sector := m.SideSector(j, side)

		if isFront {
			if math.Abs(dist) < frontDist {
				frontDist = math.Abs(dist)
				frontOpen = sector
			}
		} else {
			if math.Abs(dist) < backDist {
				backDist = math.Abs(dist)
				backOpen = sector
			}
		}
	}
	if backOpen != NO_INDEX && frontOpen != NO_INDEX &&
		frontOpen == m.SideSector(i, 0) {
		return backOpen
	}
	return NO_INDEX
}

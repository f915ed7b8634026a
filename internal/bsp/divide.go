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
package bsp

import (
	"math"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

// divide splits the hedges of in between right and left lists according to
// partition, adding minisegs where partition goes through open space. in is
// empty afterwards
func (w *NodesWork) divide(in *hedgeList, partId HEdgeID) (right, left *hedgeList) {
	right = &hedgeList{ids: make([]HEdgeID, 0, len(in.ids))}
	left = &hedgeList{ids: make([]HEdgeID, 0, len(in.ids))}
	w.cuts.reset()
	// splits may append to in.ids (the twin's new half when the twin is
	// still pending), so length is re-evaluated every iteration
	for i := 0; i < len(in.ids); i++ {
		w.divideOne(in.ids[i], partId, right, left)
	}
	in.ids = nil
	w.addMinisegs(partId, right, left)
	return right, left
}

func (w *NodesWork) moveTo(id HEdgeID, list *hedgeList) {
	w.hedges[id].list = list
	list.ids = append(list.ids, id)
}

func (w *NodesWork) divideOne(id, partId HEdgeID, right, left *hedgeList) {
	cur := &w.hedges[id]
	part := &w.hedges[partId]
	selfRef := cur.SelfRef

	// get state of lines' relation to each other
	var a, b float64
	if cur.Source != part.Source {
		a = perpDist(part, cur.psx, cur.psy)
		b = perpDist(part, cur.pex, cur.pey)
	}

	// check for being on the same line
	if math.Abs(a) <= DIST_EPSILON && math.Abs(b) <= DIST_EPSILON {
		w.addIntersection(cur.Start, part, selfRef)
		w.addIntersection(cur.End, part, selfRef)
		// this hedge runs along the same line as the partition. check
		// whether it goes in the same direction or the opposite.
		if cur.pdx*part.pdx+cur.pdy*part.pdy < 0 {
			w.moveTo(id, left)
		} else {
			w.moveTo(id, right)
		}
		return
	}

	// check for right side
	if a > -DIST_EPSILON && b > -DIST_EPSILON {
		if a < DIST_EPSILON {
			w.addIntersection(cur.Start, part, selfRef)
		} else if b < DIST_EPSILON {
			w.addIntersection(cur.End, part, selfRef)
		}
		w.moveTo(id, right)
		return
	}

	// check for left side
	if a < DIST_EPSILON && b < DIST_EPSILON {
		if a > -DIST_EPSILON {
			w.addIntersection(cur.Start, part, selfRef)
		} else if b > -DIST_EPSILON {
			w.addIntersection(cur.End, part, selfRef)
		}
		w.moveTo(id, left)
		return
	}

	// when we reach here, we have a and b non-zero and opposite sign,
	// hence this hedge will be split by the partition line.
	x, y := computeIntersection(cur, part, a, b)
	newId := w.splitHEdge(id, x, y)
	// pointers may be stale after allocation
	part = &w.hedges[partId]
	w.addIntersection(w.hedges[id].End, part, selfRef)
	if a < 0 {
		w.moveTo(id, left)
		w.moveTo(newId, right)
	} else {
		w.moveTo(id, right)
		w.moveTo(newId, left)
	}
}

// computeIntersection returns the point where partition line crosses cur. a
// and b are perpendicular distances of cur's start and end from partition
func computeIntersection(cur, part *HEdge, a, b float64) (float64, float64) {
	// horizontal partition against vertical hedge
	if part.pdy == 0 && cur.pdx == 0 {
		return cur.psx, part.psy
	}

	// vertical partition against horizontal hedge
	if part.pdx == 0 && cur.pdy == 0 {
		return part.psx, cur.psy
	}

	// 0 = start, 1 = end
	ds := a / (a - b)
	x, y := cur.psx, cur.psy
	if cur.pdx != 0 {
		x = cur.psx + cur.pdx*ds
	}
	if cur.pdy != 0 {
		y = cur.psy + cur.pdy*ds
	}
	return x, y
}

// splitHEdge cuts hedge in two at (x, y). The old hedge becomes the first
// half, the returned one is the second half. Twin is split at the same
// vertex, and its new half goes to the list the twin is in now
func (w *NodesWork) splitHEdge(id HEdgeID, x, y float64) HEdgeID {
	v := w.vmap.SelectVertexClose(x, y)
	w.totals.SegSplits++

	old := &w.hedges[id]
	twinSector := level.NO_INDEX
	if old.Twin != NoHEdge {
		twinSector = w.hedges[old.Twin].Sector
	}
	// compute wall tip info
	w.addTip(v, -old.pdx, -old.pdy, old.Sector, twinSector)
	w.addTip(v, old.pdx, old.pdy, twinSector, old.Sector)

	template := *old
	template.Start = v
	template.Twin = NoHEdge
	template.list = nil
	newId := w.newHEdge(template)
	w.hedges[id].End = v
	w.recompute(id)
	w.recompute(newId)

	twinId := w.hedges[id].Twin
	if twinId == NoHEdge {
		return newId
	}
	// handle twin: it keeps being twin of the first half
	twinTemplate := w.hedges[twinId]
	twinTemplate.End = v
	twinTemplate.Twin = newId
	newTwinId := w.newHEdge(twinTemplate)
	w.hedges[twinId].Start = v
	w.recompute(twinId)
	w.recompute(newTwinId)
	w.hedges[newId].Twin = newTwinId
	if owner := w.hedges[twinId].list; owner != nil {
		owner.ids = append(owner.ids, newTwinId)
	}
	return newId
}

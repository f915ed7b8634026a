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
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

// intersection is a place where partition line meets a hedge, or touches
// its end
type intersection struct {
	vertex VertexID
	// how far along the partition line the vertex is. Zero is at the
	// partition hedge's start, and it increases in the partition's direction
	along float64
	// whether the hedge that produced it is from a self-referencing line
	selfRef bool
	// sectors that are open before and after the vertex, going along the
	// partition. NO_INDEX if closed
	before int
	after  int
}

// cutList holds intersections with the current partition, sorted by along.
// Its storage is reused between partitions
type cutList struct {
	items []intersection
}

func (c *cutList) reset() {
	c.items = c.items[:0]
}

// addIntersection records that partition goes through vertex v. Each vertex
// is recorded once: when hedges of both a self-referencing line and a real
// one touch it, it counts as not self-referencing
func (w *NodesWork) addIntersection(v VertexID, part *HEdge, selfRef bool) {
	c := &w.cuts
	// check if vertex already present
	for i := range c.items {
		if c.items[i].vertex == v {
			if !selfRef {
				c.items[i].selfRef = false
			}
			return
		}
	}
	pos := w.vertices[v].Pos
	cut := intersection{
		vertex:  v,
		along:   paraDist(part, pos.X(), pos.Y()),
		selfRef: selfRef,
		before:  w.checkOpen(v, -part.pdx, -part.pdy),
		after:   w.checkOpen(v, part.pdx, part.pdy),
	}
	// insertion keeps it sorted, and equal ones in the order they came
	at := len(c.items)
	for at > 0 && cut.along < c.items[at-1].along {
		at--
	}
	c.items = append(c.items, intersection{})
	copy(c.items[at+1:], c.items[at:])
	c.items[at] = cut
}

// addMinisegs closes the gaps that partition line crosses through open
// space with pairs of minisegs. The one going in partition's direction is
// put on the right side, its twin on the left. Intersections are never
// merged, however close: hedges end at each of them, so minisegs must too
func (w *NodesWork) addMinisegs(partId HEdgeID, right, left *hedgeList) {
	items := w.cuts.items
	for i := 0; i+1 < len(items); i++ {
		cur := &items[i]
		next := &items[i+1]
		if cur.after == level.NO_INDEX && next.before == level.NO_INDEX {
			continue
		}
		if gap := next.along - cur.along; gap < SHORT_CUT_LEN {
			pos := w.vertices[cur.vertex].Pos
			w.mlog.Verbose(1, "Very short seg (len=%1.3f) near (%1.1f,%1.1f)\n",
				gap, pos.X(), pos.Y())
		}
		// check for some nasty OPEN/CLOSED or CLOSED/OPEN cases
		if cur.after != level.NO_INDEX && next.before == level.NO_INDEX {
			if !cur.selfRef {
				w.warnUnclosed(cur.after, cur.vertex, next.vertex)
			}
			continue
		} else if cur.after == level.NO_INDEX && next.before != level.NO_INDEX {
			if !next.selfRef {
				w.warnUnclosed(next.before, cur.vertex, next.vertex)
			}
			continue
		}

		// righteo, here we have definite open space.
		sector := cur.after
		if cur.after != next.before {
			if !cur.selfRef && !next.selfRef {
				p1 := w.vertices[cur.vertex].Pos
				p2 := w.vertices[next.vertex].Pos
				w.warn("sector mismatch: #%d (%1.1f,%1.1f) != #%d (%1.1f,%1.1f)\n",
					cur.after, p1.X(), p1.Y(), next.before, p2.X(), p2.Y())
			}
			// choose the non-self-referencing sector when we can
			if cur.selfRef && !next.selfRef {
				sector = next.before
			}
		}

		part := &w.hedges[partId]
		template := HEdge{
			Start:   cur.vertex,
			End:     next.vertex,
			Line:    level.NO_INDEX,
			Source:  part.Source,
			Sector:  sector,
			Twin:    NoHEdge,
			Miniseg: true,
			list:    right,
		}
		seg := w.newHEdge(template)
		template.Start, template.End = next.vertex, cur.vertex
		template.list = left
		buddy := w.newHEdge(template)
		w.hedges[seg].Twin = buddy
		w.hedges[buddy].Twin = seg
		w.recompute(seg)
		w.recompute(buddy)
		right.ids = append(right.ids, seg)
		left.ids = append(left.ids, buddy)
		w.totals.Minisegs += 2
	}
}

func (w *NodesWork) warnUnclosed(sector int, v1, v2 VertexID) {
	if w.warnedUnclosed[sector] {
		return
	}
	w.warnedUnclosed[sector] = true
	p1 := w.vertices[v1].Pos
	p2 := w.vertices[v2].Pos
	w.warn("sector %d is unclosed near (%1.1f,%1.1f)\n", sector,
		(p1.X()+p2.X())/2.0, (p1.Y()+p2.Y())/2.0)
}

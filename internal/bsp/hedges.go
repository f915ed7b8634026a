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
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

// createHEdges makes half-edges for every linedef that has a use as a wall,
// puts them all in one list, and records edge tips at their vertices
func (w *NodesWork) createHEdges() *hedgeList {
	m := w.m
	w.vertices = make([]Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		w.vertices[i] = Vertex{Pos: mgl64.Vec2{v.X, v.Y}}
	}
	all := &hedgeList{ids: make([]HEdgeID, 0, len(m.Linedefs)*2)}
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		x1, y1, x2, y2 := m.LineCoords(i)
		if ld.ZeroLength || (x1 == x2 && y1 == y2) {
			if !ld.ZeroLength {
				// not annotated, so nobody warned about it yet
				w.warn("linedef %d is zero-length, it will be ignored\n", i)
			}
			continue
		}
		if ld.Overlap {
			w.mlog.Verbose(1, "Linedef %d overlaps another one and will not get segs.\n", i)
			continue
		}
		if ld.Polyobj {
			w.mlog.Verbose(2, "Linedef %d belongs to a polyobject and will not get segs.\n", i)
			continue
		}
		front := m.SideSector(i, 0)
		back := m.SideSector(i, 1)
		selfRef := front != level.NO_INDEX && front == back
		if selfRef && w.cfg.SkipSelfRef {
			w.mlog.Verbose(1, "Linedef %d is self-referencing and will not get segs.\n", i)
			continue
		}
		if length := math.Hypot(x2-x1, y2-y1); length > w.cfg.LongLineWarn {
			w.warn("linedef %d is very long (%.0f units)\n", i, length)
		}
		if ld.IsTwoSided() && back == level.NO_INDEX {
			w.warn("linedef %d is marked as 2-sided but doesn't have back sidedef\n", i)
		}

		template := HEdge{
			Line:     i,
			Source:   i,
			Twin:     NoHEdge,
			SelfRef:  selfRef,
			Precious: ld.Precious,
			list:     all,
		}
		fid, bid := NoHEdge, NoHEdge
		if front != level.NO_INDEX {
			template.Start, template.End = VertexID(ld.V1), VertexID(ld.V2)
			template.Side = 0
			template.Sector = front
			fid = w.newHEdge(template)
			w.recompute(fid)
			all.ids = append(all.ids, fid)
		} else {
			w.warn("linedef %d doesn't have front sidedef\n", i)
		}
		tipBack := back
		if back != level.NO_INDEX {
			template.Start, template.End = VertexID(ld.V2), VertexID(ld.V1)
			template.Side = 1
			template.Sector = back
			bid = w.newHEdge(template)
			w.recompute(bid)
			all.ids = append(all.ids, bid)
		} else if ld.WindowEffect != level.NO_INDEX && front != level.NO_INDEX {
			// the sector seen through a one-sided window gets its own
			// edge, so that it is closed off properly
			template.Start, template.End = VertexID(ld.V2), VertexID(ld.V1)
			template.Line = level.NO_INDEX
			template.Side = 1
			template.Sector = ld.WindowEffect
			template.Window = true
			bid = w.newHEdge(template)
			w.recompute(bid)
			all.ids = append(all.ids, bid)
			tipBack = ld.WindowEffect
		}
		if fid != NoHEdge && bid != NoHEdge {
			w.hedges[fid].Twin = bid
			w.hedges[bid].Twin = fid
		}
		if fid != NoHEdge || bid != NoHEdge {
			w.addTip(VertexID(ld.V1), x2-x1, y2-y1, tipBack, front)
			w.addTip(VertexID(ld.V2), x1-x2, y1-y2, front, tipBack)
		}
	}
	return all
}

// recompute updates values used in partition math after hedge's vertices
// changed
func (w *NodesWork) recompute(id HEdgeID) {
	h := &w.hedges[id]
	start := w.vertices[h.Start].Pos
	end := w.vertices[h.End].Pos
	d := end.Sub(start)
	h.psx, h.psy = start.X(), start.Y()
	h.pex, h.pey = end.X(), end.Y()
	h.pdx, h.pdy = d.X(), d.Y()
	h.plen = d.Len()
	h.pperp = h.psy*h.pdx - h.psx*h.pdy
	h.ppara = -h.psx*h.pdx - h.psy*h.pdy
}

// perpDist is the signed distance of point from the line through part,
// positive is to the right
func perpDist(part *HEdge, x, y float64) float64 {
	return (x*part.pdy - y*part.pdx + part.pperp) / part.plen
}

// paraDist is the distance along the line through part, measured from its
// start
func paraDist(part *HEdge, x, y float64) float64 {
	return (x*part.pdx + y*part.pdy + part.ppara) / part.plen
}

// computeAngleDeg returns angle of direction in degrees, [0,360)
func computeAngleDeg(dx, dy float64) float64 {
	if dx == 0 && dy == 0 {
		return 0
	}
	a := math.Atan2(dy, dx) * 180.0 / math.Pi
	if a < 0 {
		a += 360.0
	}
	return a
}

// computeAngle returns binary angle measurement, as stored in segs
func computeAngle(dx, dy float64) int {
	w := math.Atan2(dy, dx) * float64(65536.0/(math.Pi*2))

	if w < 0 {
		w = 65536.0 + w
	}

	return int(w) & 0xFFFF
}

// addTip registers a wall going out of vertex v in direction (dx, dy)
func (w *NodesWork) addTip(v VertexID, dx, dy float64, left, right int) {
	vert := &w.vertices[v]
	tip := EdgeTip{
		Angle: computeAngleDeg(dx, dy),
		Left:  left,
		Right: right,
	}
	at := sort.Search(len(vert.tips), func(i int) bool {
		return vert.tips[i].Angle > tip.Angle
	})
	vert.tips = append(vert.tips, EdgeTip{})
	copy(vert.tips[at+1:], vert.tips[at:])
	vert.tips[at] = tip
}

// checkOpen returns the sector found when leaving vertex v in direction
// (dx, dy), or NO_INDEX if that direction is closed: it goes into the void,
// or right along some wall
func (w *NodesWork) checkOpen(v VertexID, dx, dy float64) int {
	tips := w.vertices[v].tips
	if len(tips) == 0 {
		return level.NO_INDEX
	}
	angle := computeAngleDeg(dx, dy)
	// first check whether there's a wall_tip that lies in the exact
	// direction of the given direction (which is relative to the vertex)
	for _, tip := range tips {
		diff := math.Abs(tip.Angle - angle)
		if diff < ANG_EPSILON || diff > 360.0-ANG_EPSILON {
			return level.NO_INDEX
		}
	}
	// otherwise the first tip whose angle is greater than the one we're
	// interested in has us on its right side
	for _, tip := range tips {
		if angle+ANG_EPSILON < tip.Angle {
			return tip.Right
		}
	}
	// no more tips, thus we must be on the left side of the tip with the
	// largest angle
	return tips[len(tips)-1].Left
}

// findLimits returns bounding box of all hedges in the list, indexed by
// BB_TOP etc.
func (w *NodesWork) findLimits(list *hedgeList) [4]float64 {
	box := [4]float64{-math.MaxFloat64, math.MaxFloat64, math.MaxFloat64, -math.MaxFloat64}
	for _, id := range list.ids {
		h := &w.hedges[id]
		box[BB_TOP] = math.Max(box[BB_TOP], math.Max(h.psy, h.pey))
		box[BB_BOTTOM] = math.Min(box[BB_BOTTOM], math.Min(h.psy, h.pey))
		box[BB_LEFT] = math.Min(box[BB_LEFT], math.Min(h.psx, h.pex))
		box[BB_RIGHT] = math.Max(box[BB_RIGHT], math.Max(h.psx, h.pex))
	}
	return box
}

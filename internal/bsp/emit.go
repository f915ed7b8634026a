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

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

// emit flattens the tree into output arrays. Subsectors are numbered in the
// order they are visited (right child before left), nodes in post-order so
// that the root comes last
func (w *NodesWork) emit(root treeRef) {
	w.result = &NodesResult{
		Nodes: make([]Node, 0, w.totals.NumNodes),
	}
	w.segIndex = make([]int, len(w.hedges))
	for i := range w.segIndex {
		w.segIndex[i] = -1
	}
	if root.node != nil {
		w.result.Root = w.reverseNodes(root.node)
	} else {
		w.result.Root = w.emitLeaf(root.leaf)
	}

	// partners are known only when both sides were emitted
	for i := range w.hedges {
		segIdx := w.segIndex[i]
		if segIdx < 0 {
			continue
		}
		twin := w.hedges[i].Twin
		if twin != NoHEdge && w.segIndex[twin] >= 0 {
			w.result.Segs[segIdx].Partner = w.segIndex[twin]
		}
	}

	w.result.Vertices = make([]level.Vertex, len(w.vertices))
	for i, v := range w.vertices {
		w.result.Vertices[i] = level.Vertex{X: v.Pos.X(), Y: v.Pos.Y()}
	}
	w.totals.NumSubsectors = len(w.result.Subsectors)
	w.totals.NumSegs = len(w.result.Segs)
	w.totals.NumVertices = len(w.vertices)
	w.result.Totals = w.totals
	w.result.Warnings = w.warnings
}

func (w *NodesWork) reverseNodes(node *nodeInProcess) Child {
	if node.nextR != nil {
		node.RChild = w.reverseNodes(node.nextR)
	} else {
		node.RChild = w.emitLeaf(node.leafR)
	}
	if node.nextL != nil {
		node.LChild = w.reverseNodes(node.nextL)
	} else {
		node.LChild = w.emitLeaf(node.leafL)
	}

	w.result.Nodes = append(w.result.Nodes, Node{
		X:      node.X,
		Y:      node.Y,
		Dx:     node.Dx,
		Dy:     node.Dy,
		Rbox:   node.Rbox,
		Lbox:   node.Lbox,
		RChild: node.RChild,
		LChild: node.LChild,
	})
	return Child(len(w.result.Nodes) - 1)
}

// segScore ranks hedges by how well they define the sector of the subsector
func (w *NodesWork) segScore(h *HEdge) int {
	switch {
	case h.Miniseg:
		return 0
	case h.Window || w.m.Linedefs[h.Line].WindowEffect != level.NO_INDEX:
		return 1
	case h.SelfRef:
		return 2
	}
	return 3
}

// emitLeaf appends a subsector with its segs sorted clockwise, starting
// with the one that defines the sector best
func (w *NodesWork) emitLeaf(list *hedgeList) Child {
	ids := append([]HEdgeID(nil), list.ids...)
	var cx, cy float64
	for _, id := range ids {
		h := &w.hedges[id]
		cx += h.psx + h.pex
		cy += h.psy + h.pey
	}
	cx /= float64(2 * len(ids))
	cy /= float64(2 * len(ids))
	angles := make(map[HEdgeID]float64, len(ids))
	for _, id := range ids {
		h := &w.hedges[id]
		angles[id] = computeAngleDeg(h.psx-cx, h.psy-cy)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return angles[ids[i]] > angles[ids[j]]
	})

	best := 0
	bestScore := -1
	for i, id := range ids {
		if score := w.segScore(&w.hedges[id]); score > bestScore {
			best, bestScore = i, score
		}
	}
	ids = append(ids[best:], ids[:best]...)

	ss := SubSector{
		FirstSeg: len(w.result.Segs),
		NumSegs:  len(ids),
		Sector:   w.hedges[ids[0]].Sector,
	}
	for _, id := range ids {
		w.segIndex[id] = len(w.result.Segs)
		w.result.Segs = append(w.result.Segs, w.makeSeg(&w.hedges[id]))
	}
	if ss.NumSegs > w.totals.MaxSegsInSubsector {
		w.totals.MaxSegsInSubsector = ss.NumSegs
	}
	w.result.Subsectors = append(w.result.Subsectors, ss)
	return LeafChild(len(w.result.Subsectors) - 1)
}

func (w *NodesWork) makeSeg(h *HEdge) Seg {
	seg := Seg{
		V1:      int(h.Start),
		V2:      int(h.End),
		Angle:   computeAngle(h.pdx, h.pdy),
		Line:    level.NO_INDEX,
		Side:    h.Side,
		Partner: -1,
		Sector:  h.Sector,
	}
	if h.Miniseg || h.Window {
		return seg
	}
	seg.Line = h.Line
	// offset is measured from the vertex the side starts at
	x1, y1, x2, y2 := w.m.LineCoords(h.Line)
	if h.Side == 0 {
		seg.Offset = math.Hypot(h.psx-x1, h.psy-y1)
	} else {
		seg.Offset = math.Hypot(h.psx-x2, h.psy-y2)
	}
	return seg
}

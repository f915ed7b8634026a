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
	"time"

	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

// Build produces nodes, subsectors and segs for the map. The map is not
// modified. Annotations on linedefs (as done by level.Analyze) are honored
// if present. Nothing is returned on failure
func Build(m *level.Map, cfg *config.BuildConfig, mlog *logger.MiniLogger) (res *NodesResult, err error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkGeometry(m); err != nil {
		return nil, err
	}
	w := newNodesWork(m, cfg, mlog)

	defer func() {
		if r := recover(); r != nil {
			ae, ok := r.(arenaExhausted)
			if !ok {
				panic(r)
			}
			mlog.Printf("Error: ran out of half-edges (limit %d) on %s\n", ae.limit, m.Name)
			res = nil
			err = errors.Wrapf(ErrArenaExhausted, "limit is %d", ae.limit)
		}
	}()

	all := w.createHEdges()
	if all.len() == 0 {
		mlog.Printf("Failed to create any SEGs (BAD).\n")
		return nil, errors.Wrapf(ErrNoHEdges, "%d linedefs", len(m.Linedefs))
	}
	mlog.Printf("Initial number of segs is %d.\n", all.len())
	rootBox := w.findLimits(all)
	mlog.Verbose(1, "Nodes: rendered part of map goes from (%.0f,%.0f) to (%.0f,%.0f)\n",
		rootBox[BB_LEFT], rootBox[BB_BOTTOM], rootBox[BB_RIGHT], rootBox[BB_TOP])
	w.vmap = CreateVertexMap(w, rootBox[BB_LEFT], rootBox[BB_BOTTOM],
		rootBox[BB_RIGHT], rootBox[BB_TOP])
	PopulateVertexMap(w.vmap, all)

	// The main act
	root, err := w.createChild(all)
	if err != nil {
		return nil, err
	}

	w.emit(root)
	totals := &w.result.Totals
	mlog.Printf("Created %d subsectors, %d nodes. Got %d segs, %d vertexes. Split segs %d times.\n",
		totals.NumSubsectors, totals.NumNodes, totals.NumSegs, totals.NumVertices,
		totals.SegSplits)
	if root.node != nil {
		if root.node.nextL != nil {
			totals.HeightLeft = HeightOfNodes(root.node.nextL) + 1
		}
		if root.node.nextR != nil {
			totals.HeightRight = HeightOfNodes(root.node.nextR) + 1
		}
	}
	mlog.Printf("Height of left and right subtrees = (%d,%d)\n",
		totals.HeightLeft, totals.HeightRight)
	mlog.Verbose(1, "Max seg count in subsector: %d\n", totals.MaxSegsInSubsector)
	mlog.Verbose(1, "Nodes took %s\n", time.Since(start))
	return w.result, nil
}

func newNodesWork(m *level.Map, cfg *config.BuildConfig, mlog *logger.MiniLogger) *NodesWork {
	w := &NodesWork{
		m:              m,
		cfg:            cfg,
		mlog:           mlog,
		hedges:         make([]HEdge, 0, minInt(len(m.Linedefs)*4, cfg.MaxHEdges)),
		segAliasObj:    new(SegAliasHolder),
		warnedUnclosed: make(map[int]bool),
	}
	w.segAliasObj.Init()
	return w
}

// checkGeometry rejects maps that would have linedefs point to nonexistent
// vertices or sectors
func checkGeometry(m *level.Map) error {
	for i := range m.Linedefs {
		ld := &m.Linedefs[i]
		if ld.V1 < 0 || ld.V1 >= len(m.Vertices) || ld.V2 < 0 || ld.V2 >= len(m.Vertices) {
			return errors.Wrapf(level.ErrBadReference,
				"linedef %d references vertex out of range (%d,%d)", i, ld.V1, ld.V2)
		}
		for side := 0; side < 2; side++ {
			sector := m.SideSector(i, side)
			if sector != level.NO_INDEX && (sector < 0 || sector >= len(m.Sectors)) {
				return errors.Wrapf(level.ErrBadReference,
					"linedef %d side %d references sector %d out of range", i, side, sector)
			}
		}
		if ld.WindowEffect >= len(m.Sectors) {
			return errors.Wrapf(level.ErrBadReference,
				"linedef %d window effect references sector %d out of range", i,
				ld.WindowEffect)
		}
	}
	return nil
}

// createChild makes either a subsector (when hedges in list form one) or a
// node subtree
func (w *NodesWork) createChild(list *hedgeList) (treeRef, error) {
	if w.isConvex(list) == CONVEX_SUBSECTOR {
		return treeRef{leaf: list}, nil
	}
	node, err := w.createNode(list)
	if err != nil {
		return treeRef{}, err
	}
	return treeRef{node: node}, nil
}

func (w *NodesWork) createNode(list *hedgeList) (*nodeInProcess, error) {
	super := w.buildSuperblock(list)
	partId := w.pickNode(list, super)
	w.destroySuperblock(super)
	if partId == NoHEdge {
		box := w.findLimits(list)
		w.mlog.Printf("Error: couldn't find a partition for %d segs within (%.0f,%.0f)-(%.0f,%.0f)\n",
			list.len(), box[BB_LEFT], box[BB_BOTTOM], box[BB_RIGHT], box[BB_TOP])
		return nil, errors.Wrapf(ErrUnbuildable, "%d segs near (%.0f,%.0f)",
			list.len(), box[BB_LEFT], box[BB_BOTTOM])
	}
	part := &w.hedges[partId]
	res := &nodeInProcess{
		X:  part.psx,
		Y:  part.psy,
		Dx: part.pdx,
		Dy: part.pdy,
	}
	w.mlog.Verbose(3, "Partition (%.1f,%.1f) (%.1f,%.1f) from line %d, %d segs\n",
		res.X, res.Y, res.Dx, res.Dy, part.Line, list.len())
	// Divide node in two
	w.totals.NumNodes++
	rights, lefts := w.divide(list, partId)
	res.Rbox = w.findLimits(rights)
	res.Lbox = w.findLimits(lefts)

	right, err := w.createChild(rights)
	if err != nil {
		return nil, err
	}
	res.nextR, res.leafR = right.node, right.leaf
	left, err := w.createChild(lefts)
	if err != nil {
		return nil, err
	}
	res.nextL, res.leafL = left.node, left.leaf
	return res, nil
}

// isConvex tells whether hedges of the list can be put in a subsector: they
// must come from the same sector (self-referencing lines aside) and every
// hedge must be on the same side of all the other hedges
func (w *NodesWork) isConvex(list *hedgeList) int {
	sector := level.NO_INDEX
	for _, id := range list.ids {
		h := &w.hedges[id]
		if h.SelfRef {
			continue
		}
		if sector == level.NO_INDEX {
			sector = h.Sector
		} else if h.Sector != sector {
			return NONCONVEX_MULTISECTOR // MUST SPLIT
		}
	}

	for _, partId := range list.ids {
		part := &w.hedges[partId]
		for _, checkId := range list.ids {
			if checkId == partId {
				continue
			}
			check := &w.hedges[checkId]
			var a, b float64
			if check.Source != part.Source {
				a = perpDist(part, check.psx, check.psy)
				b = perpDist(part, check.pex, check.pey)
			}
			if a < -DIST_EPSILON || b < -DIST_EPSILON {
				return NONCONVEX_ONESECTOR
			}
			if math.Abs(a) <= DIST_EPSILON && math.Abs(b) <= DIST_EPSILON &&
				check.pdx*part.pdx+check.pdy*part.pdy < 0 {
				// facing each other on the same line
				return NONCONVEX_ONESECTOR
			}
		}
	}

	// no need to split the list: these hedges can be put in a subsector
	return CONVEX_SUBSECTOR
}

func HeightOfNodes(node *nodeInProcess) int {
	lHeight := 1
	rHeight := 1
	if node.nextL != nil {
		lHeight = HeightOfNodes(node.nextL) + 1
	}
	if node.nextR != nil {
		rHeight = HeightOfNodes(node.nextR) + 1
	}
	if lHeight < rHeight {
		return rHeight
	}
	return lHeight
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

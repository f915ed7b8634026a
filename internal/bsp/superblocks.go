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
)

// The grand nodebuilding speed-up technique from AJ-BSP by Andrew Apted:
// superblocks.

const BLOCK_BITS = 7 // superblock sizes are multiples of 128

// Block holding more hedges than this directly gets split into halves, so
// that they can move down
const SUPER_SPLIT_THRESHOLD = 16

type Superblock struct {
	// parent of this block, or nil for a top-level block
	parent *Superblock
	// coordinates on map for this block, from lower-left corner to
	// upper-right corner.  Pseudo-inclusive, i.e (x,y) is inside block
	// if and only if x1 <= x < x2 and y1 <= y < y2.
	x1, y1 int
	x2, y2 int
	// sub-blocks. Nil when empty. [0] has the lower coordinates, and
	// [1] has the higher coordinates. Division of a square always
	// occurs horizontally (e.g. 512x512 -> 256x512 -> 256x256).
	subs [2]*Superblock
	// number of real hedges and minisegs contained by this block
	// (including all sub-blocks below it)
	realNum int
	miniNum int
	// hedges _directly_ contained by this block. Doesn't include those
	// contained in subblocks.
	hedges []HEdgeID
}

// SuperIsLeaf() == true defines when superblock is no longer divisible into
// subblocks
func (s *Superblock) SuperIsLeaf() bool {
	return (s.x2-s.x1) <= 256 && (s.y2-s.y1) <= 256
}

func (w *NodesWork) getNewSuperblock() *Superblock {
	if n := len(w.superPool); n > 0 {
		s := w.superPool[n-1]
		w.superPool = w.superPool[:n-1]
		return s
	}
	return &Superblock{}
}

// destroySuperblock returns block and all its sub-blocks to the pool.
// Hedges are not affected
func (w *NodesWork) destroySuperblock(s *Superblock) {
	for num := 0; num < 2; num++ {
		if s.subs[num] != nil {
			w.destroySuperblock(s.subs[num])
		}
	}
	hedges := s.hedges[:0]
	*s = Superblock{hedges: hedges}
	w.superPool = append(w.superPool, s)
}

// buildSuperblock indexes the list of hedges of the node being processed
func (w *NodesWork) buildSuperblock(list *hedgeList) *Superblock {
	box := w.findLimits(list)
	s := w.getNewSuperblock()
	s.SetBounds(int(math.Floor(box[BB_LEFT])), int(math.Floor(box[BB_BOTTOM])),
		int(math.Ceil(box[BB_RIGHT])), int(math.Ceil(box[BB_TOP])))
	for _, id := range list.ids {
		s.AddHEdge(w, id)
	}
	return s
}

// rounds the value _up_ to the nearest power of two.
func RoundPOW2(x int) int {
	if x <= 2 {
		return x
	}

	x--

	for tmp := x >> 1; tmp != 0; tmp >>= 1 {
		x |= tmp
	}

	return x + 1
}

func (s *Superblock) SetBounds(xmin, ymin, xmax, ymax int) {
	dx := (xmax - xmin + 1 + 127) >> BLOCK_BITS
	dy := (ymax - ymin + 1 + 127) >> BLOCK_BITS

	s.x1 = xmin
	s.x2 = xmin + (RoundPOW2(dx) << BLOCK_BITS)
	s.y1 = ymin
	s.y2 = ymin + (RoundPOW2(dy) << BLOCK_BITS)
}

// childFor returns which half of the block the hedge lies in, or -1 if it
// crosses the middle
func (s *Superblock) childFor(h *HEdge) int {
	var p1, p2 bool
	if s.x2-s.x1 >= s.y2-s.y1 {
		// block is wider than it is high, or square
		xMid := float64((s.x1 + s.x2) >> 1)
		p1 = h.psx >= xMid
		p2 = h.pex >= xMid
	} else {
		// block is higher than it is wide
		yMid := float64((s.y1 + s.y2) >> 1)
		p1 = h.psy >= yMid
		p2 = h.pey >= yMid
	}
	if p1 && p2 {
		return 1
	} else if !p1 && !p2 {
		return 0
	}
	return -1
}

func (s *Superblock) count(h *HEdge) {
	if h.Miniseg {
		s.miniNum++
	} else {
		s.realNum++
	}
}

// AddHEdge puts the hedge into the smallest existing block that encloses it
func (s *Superblock) AddHEdge(w *NodesWork, id HEdgeID) {
	h := &w.hedges[id]
	block := s
	for {
		block.count(h)
		if block.SuperIsLeaf() {
			break
		}
		child := block.childFor(h)
		if child < 0 || block.subs[child] == nil {
			break
		}
		block = block.subs[child]
	}
	block.hedges = append(block.hedges, id)
	if len(block.hedges) > SUPER_SPLIT_THRESHOLD && !block.SuperIsLeaf() {
		block.split(w)
	}
}

// split creates both halves of the block and moves down every hedge
// directly contained that fits in one of them
func (s *Superblock) split(w *NodesWork) {
	wide := s.x2-s.x1 >= s.y2-s.y1
	xMid := (s.x1 + s.x2) >> 1
	yMid := (s.y1 + s.y2) >> 1
	for child := 0; child < 2; child++ {
		if s.subs[child] != nil {
			continue
		}
		sub := w.getNewSuperblock()
		sub.parent = s
		sub.x1, sub.y1, sub.x2, sub.y2 = s.x1, s.y1, s.x2, s.y2
		if wide {
			if child == 1 {
				sub.x1 = xMid
			} else {
				sub.x2 = xMid
			}
		} else {
			if child == 1 {
				sub.y1 = yMid
			} else {
				sub.y2 = yMid
			}
		}
		s.subs[child] = sub
	}
	keep := s.hedges[:0]
	moved := make([]HEdgeID, 0, len(s.hedges))
	for _, id := range s.hedges {
		if s.childFor(&w.hedges[id]) < 0 {
			keep = append(keep, id)
		} else {
			moved = append(moved, id)
		}
	}
	s.hedges = keep
	for _, id := range moved {
		s.subs[s.childFor(&w.hedges[id])].AddHEdge(w, id)
	}
}

// Returns -1 for left, +1 for right, or 0 for intersect.
func PointOnLineSide(part *HEdge, x, y float64) int {
	perp := perpDist(part, x, y)
	if math.Abs(perp) <= DIST_EPSILON {
		return 0
	}
	if perp < 0 {
		return -1
	}
	return +1
}

// Which side of partition line is the superblock?
// Returns -1 for left, +1 for right, or 0 for intersect.
func BoxOnLineSide(box *Superblock, part *HEdge) int {
	x1 := float64(box.x1 - MARGIN_LEN)
	y1 := float64(box.y1 - MARGIN_LEN)
	x2 := float64(box.x2 + MARGIN_LEN)
	y2 := float64(box.y2 + MARGIN_LEN)

	var p1, p2 int

	// handle simple cases (vertical & horizontal lines)
	if part.pdx == 0 {
		if x1 > part.psx {
			p1 = +1
		} else {
			p1 = -1
		}
		if x2 > part.psx {
			p2 = +1
		} else {
			p2 = -1
		}
		if part.pdy < 0 {
			p1 = -p1
			p2 = -p2
		}
	} else if part.pdy == 0 {
		if y1 < part.psy {
			p1 = +1
		} else {
			p1 = -1
		}
		if y2 < part.psy {
			p2 = +1
		} else {
			p2 = -1
		}

		if part.pdx < 0 {
			p1 = -p1
			p2 = -p2
		}
	} else if part.pdx*part.pdy > 0 { // now handle the cases of positive and negative slope
		p1 = PointOnLineSide(part, x1, y2)
		p2 = PointOnLineSide(part, x2, y1)
	} else { // NEGATIVE
		p1 = PointOnLineSide(part, x1, y1)
		p2 = PointOnLineSide(part, x2, y2)
	}

	if p1 == p2 {
		return p1
	}
	return 0
}

// hedgeCount returns number of hedges stored in block and all its sub-blocks
func (s *Superblock) hedgeCount() int {
	n := len(s.hedges)
	for num := 0; num < 2; num++ {
		if s.subs[num] != nil {
			n += s.subs[num].hedgeCount()
		}
	}
	return n
}

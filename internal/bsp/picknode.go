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

// To be able to divide the nodes down, this routine must decide which is the
// best hedge to use as a nodeline. The cost model is the one of glBSP and
// AJ-BSP by Andrew Apted: splits, near misses and imbalance all cost, and
// each cost is scaled by factor.

// Superblocks (from AJ-BSP) and aliases (idea from Zennode) are used to
// speed things up.

// partitionInfo accumulates what a candidate partition does to the hedges
type partitionInfo struct {
	cost      int
	splits    int
	iffy      int
	nearMiss  int
	realLeft  int
	realRight int
	miniLeft  int
	miniRight int
}

func (info *partitionInfo) addLeft(h *HEdge) {
	if h.Miniseg {
		info.miniLeft++
	} else {
		info.realLeft++
	}
}

func (info *partitionInfo) addRight(h *HEdge) {
	if h.Miniseg {
		info.miniRight++
	} else {
		info.realRight++
	}
}

// isCandidate tells whether hedge may be tried as partition on the given
// pass. The first pass only tries edges of real walls, the second allows
// anything
func isCandidate(h *HEdge, pass int) bool {
	if pass > 0 {
		return true
	}
	return h.Line >= 0 && !h.SelfRef && !h.Window
}

func isAxisAligned(h *HEdge) bool {
	return h.pdx == 0 || h.pdy == 0
}

// pickNode returns the best partition among hedges of list, or NoHEdge if
// there is no valid one
func (w *NodesWork) pickNode(list *hedgeList, super *Superblock) HEdgeID {
	for pass := 0; pass < 2; pass++ {
		best := NoHEdge
		bestcost := INITIAL_BIG_COST
		w.segAliasObj.UnvisitAll() // remove marks from previous passes

		for _, id := range list.ids { // Use each hedge as partition
			part := &w.hedges[id]
			if !isCandidate(part, pass) {
				continue
			}
			if part.alias != 0 {
				if w.segAliasObj.MarkAndRecall(part.alias) {
					// a collinear hedge was tried already, it produces the
					// exact same nodeline
					continue
				}
			} else {
				// Aliases get copied in the inner loop: when a hedge we are
				// checking is collinear to partition, it "inherits" alias
				// from partition
				part.alias = w.segAliasObj.Generate()
			}

			cost, ok := w.evalPartition(super, part, bestcost)
			if !ok {
				continue
			}
			if cost < bestcost || (cost == bestcost && best != NoHEdge &&
				isAxisAligned(part) && !isAxisAligned(&w.hedges[best])) {
				// We have a new better choice
				bestcost = cost
				best = id
			}
		}
		if best != NoHEdge {
			if pass > 0 {
				w.mlog.Verbose(1, "No partition among real walls, settled for hedge %d (line %d).\n",
					best, w.hedges[best].Line)
			}
			return best
		}
	}
	return NoHEdge
}

// evalPartition returns the cost of using part as partition. ok is false if
// the partition is not valid or costs more than bestcost
func (w *NodesWork) evalPartition(super *Superblock, part *HEdge,
	bestcost int) (int, bool) {
	var info partitionInfo
	if w.evalPartitionWorker(super, part, bestcost, &info) {
		// pruned
		return 0, false
	}

	// make sure there is at least one real hedge on each side
	if info.realLeft == 0 || info.realRight == 0 {
		return 0, false
	}

	// increase cost by the difference between left & right
	info.cost += 100 * absInt(info.realLeft-info.realRight)

	// -AJA- allow miniseg counts to affect the outcome, but only to a
	//       lesser degree than real segs.
	info.cost += 50 * absInt(info.miniLeft-info.miniRight)

	// -AJA- Another little twist, here we show a slight preference for
	//       partition lines that lie either purely horizontally or
	//       purely vertically.
	if !isAxisAligned(part) {
		info.cost += w.cfg.DiagonalPenalty
	}
	if info.cost > bestcost {
		return 0, false
	}
	return info.cost, true
}

// evalPartitionWorker returns true when the partition can be pruned: cost
// exceeded bestcost
func (w *NodesWork) evalPartitionWorker(block *Superblock, part *HEdge,
	bestcost int, info *partitionInfo) bool {
	factor := w.cfg.Factor

	// -AJA- this is the heart of my superblock idea, it tests the
	//       _whole_ block against the partition line to quickly handle
	//       all the segs within it at once.  Only when the partition
	//       line intercepts the box do we need to go deeper into it.
	num := BoxOnLineSide(block, part)
	if num < 0 {
		// LEFT
		info.realLeft += block.realNum
		info.miniLeft += block.miniNum
		return false
	} else if num > 0 {
		// RIGHT
		info.realRight += block.realNum
		info.miniRight += block.miniNum
		return false
	}

	for _, checkId := range block.hedges {
		check := &w.hedges[checkId]
		// This is the heart of my pruning idea - it catches
		// bad segs early on. Killough
		if info.cost > bestcost {
			return true
		}

		var a, b, fa, fb float64
		if check.Source == part.Source {
			// same linedef (or minisegs along it)
			a, b = 0, 0
		} else {
			a = perpDist(part, check.psx, check.psy)
			b = perpDist(part, check.pex, check.pey)
			fa = math.Abs(a)
			fb = math.Abs(b)
		}

		// check for being on the same line
		if fa <= DIST_EPSILON && fb <= DIST_EPSILON {
			check.alias = part.alias
			// this hedge runs along the same line as the partition. Check
			// whether it goes in the same direction or the opposite.
			if check.pdx*part.pdx+check.pdy*part.pdy < 0 {
				info.addLeft(check)
			} else {
				info.addRight(check)
			}
			continue
		}

		// check for right side
		if a > -DIST_EPSILON && b > -DIST_EPSILON {
			info.addRight(check)
			info.cost += nearMissCost(a, b, factor, info)
			continue
		}

		// check for left side
		if a < DIST_EPSILON && b < DIST_EPSILON {
			info.addLeft(check)
			info.cost += nearMissCost(-a, -b, factor, info)
			continue
		}

		// When we reach here, we have a and b non-zero and opposite sign,
		// hence this hedge will be split by the partition line.
		info.splits++
		info.cost += 100 * factor
		if check.Precious {
			// don't split it unless all other options are exhausted. This
			// is used to protect deep water and invisible lifts/stairs from
			// being messed up accidentally by splits. - Killough
			info.cost += 100 * factor * PRECIOUS_MULTIPLY
		}

		// -AJA- check if the split point is very close to one end, which
		//       is quite an undesirable situation (producing really short
		//       segs).  This is perhaps _one_ source of those darn slime
		//       trails.  Hence the name "IFFY segs", and a rather hefty
		//       surcharge :->.
		if fa < IFFY_LEN || fb < IFFY_LEN {
			info.iffy++
			// the closer to the end, the higher the cost
			qnty := IFFY_LEN / math.Min(fa, fb)
			info.cost += int(70 * float64(factor) * (qnty*qnty - 1.0))
		}
	}

	// handle sub-blocks recursively
	for num := 0; num < 2; num++ {
		if block.subs[num] == nil {
			continue
		}
		if w.evalPartitionWorker(block.subs[num], part, bestcost, info) {
			return true
		}
	}

	// no "bad seg" was found
	return false
}

// nearMissCost is the surcharge for a hedge that lies on one side, with
// distances a and b (both non-negative, give or take epsilon) of its ends
// from partition line. Near misses are bad, since they have the potential
// to cause really short minisegs to be created in future processing
func nearMissCost(a, b float64, factor int, info *partitionInfo) int {
	if (a >= IFFY_LEN && b >= IFFY_LEN) ||
		(a <= DIST_EPSILON && b >= IFFY_LEN) ||
		(b <= DIST_EPSILON && a >= IFFY_LEN) {
		return 0
	}
	info.nearMiss++
	// the closer the near miss, the higher the cost
	var qnty float64
	if a <= DIST_EPSILON || b <= DIST_EPSILON {
		qnty = IFFY_LEN / math.Max(a, b)
	} else {
		qnty = IFFY_LEN / math.Min(a, b)
	}
	return int(100 * float64(factor) * (qnty*qnty - 1.0))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

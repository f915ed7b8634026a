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
	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

// Validate checks output arrays for consistency with each other and with
// the map they were built for. Returned error wraps ErrInvalidOutput
func Validate(res *NodesResult, m *level.Map) error {
	if err := validateSegs(res, m); err != nil {
		return err
	}
	if err := validateSubsectors(res, m); err != nil {
		return err
	}
	return validateNodes(res)
}

func invalid(format string, a ...interface{}) error {
	return errors.Wrapf(ErrInvalidOutput, format, a...)
}

func validateSegs(res *NodesResult, m *level.Map) error {
	for i, seg := range res.Segs {
		if seg.V1 < 0 || seg.V1 >= len(res.Vertices) || seg.V2 < 0 || seg.V2 >= len(res.Vertices) {
			return invalid("seg %d has vertices (%d,%d) out of range", i, seg.V1, seg.V2)
		}
		if seg.V1 == seg.V2 {
			return invalid("seg %d starts and ends at vertex %d", i, seg.V1)
		}
		if seg.Line < level.NO_INDEX || seg.Line >= len(m.Linedefs) {
			return invalid("seg %d references linedef %d out of range", i, seg.Line)
		}
		if seg.Side != 0 && seg.Side != 1 {
			return invalid("seg %d has side %d", i, seg.Side)
		}
		if seg.Sector < 0 || seg.Sector >= len(m.Sectors) {
			return invalid("seg %d references sector %d out of range", i, seg.Sector)
		}
		if seg.Line != level.NO_INDEX {
			if want := m.SideSector(seg.Line, seg.Side); want != seg.Sector {
				return invalid("seg %d has sector %d, but side %d of linedef %d faces sector %d",
					i, seg.Sector, seg.Side, seg.Line, want)
			}
		}
		if seg.Partner == -1 {
			continue
		}
		if seg.Partner < 0 || seg.Partner >= len(res.Segs) || seg.Partner == i {
			return invalid("seg %d has partner %d out of range", i, seg.Partner)
		}
		p := res.Segs[seg.Partner]
		if p.Partner != i {
			return invalid("seg %d has partner %d, but the partner's partner is %d",
				i, seg.Partner, p.Partner)
		}
		if p.V1 != seg.V2 || p.V2 != seg.V1 {
			return invalid("seg %d (%d->%d) and its partner %d (%d->%d) don't share vertices",
				i, seg.V1, seg.V2, seg.Partner, p.V1, p.V2)
		}
	}
	return nil
}

func isSelfRefSeg(seg Seg, m *level.Map) bool {
	if seg.Line == level.NO_INDEX {
		return false
	}
	front := m.SideSector(seg.Line, 0)
	return front != level.NO_INDEX && front == m.SideSector(seg.Line, 1)
}

func validateSubsectors(res *NodesResult, m *level.Map) error {
	if len(res.Subsectors) == 0 {
		return invalid("no subsectors")
	}
	next := 0
	for i, ss := range res.Subsectors {
		if ss.FirstSeg != next {
			return invalid("subsector %d starts at seg %d, expected %d", i, ss.FirstSeg, next)
		}
		if ss.NumSegs <= 0 || ss.FirstSeg+ss.NumSegs > len(res.Segs) {
			return invalid("subsector %d has seg range %d+%d out of range", i,
				ss.FirstSeg, ss.NumSegs)
		}
		next += ss.NumSegs
		segs := res.Segs[ss.FirstSeg : ss.FirstSeg+ss.NumSegs]
		for j, seg := range segs {
			following := segs[(j+1)%len(segs)]
			if seg.V2 != following.V1 {
				return invalid("subsector %d is not closed: seg %d ends at vertex %d, next one starts at %d",
					i, ss.FirstSeg+j, seg.V2, following.V1)
			}
			if seg.Sector != ss.Sector && !isSelfRefSeg(seg, m) {
				return invalid("subsector %d of sector %d has seg %d of sector %d",
					i, ss.Sector, ss.FirstSeg+j, seg.Sector)
			}
		}
	}
	if next != len(res.Segs) {
		return invalid("subsectors cover %d segs out of %d", next, len(res.Segs))
	}
	return nil
}

func validateNodes(res *NodesResult) error {
	usedNodes := make([]int, len(res.Nodes))
	usedLeaves := make([]int, len(res.Subsectors))
	checkChild := func(owner int, c Child) error {
		if c.IsLeaf() {
			if c.Index() >= len(res.Subsectors) {
				return invalid("node %d references subsector %d out of range", owner, c.Index())
			}
			usedLeaves[c.Index()]++
			return nil
		}
		if c.Index() >= owner {
			return invalid("node %d references node %d, which doesn't precede it", owner, c.Index())
		}
		usedNodes[c.Index()]++
		return nil
	}
	for i, node := range res.Nodes {
		if node.Dx == 0 && node.Dy == 0 {
			return invalid("node %d has zero-length partition", i)
		}
		if err := checkChild(i, node.RChild); err != nil {
			return err
		}
		if err := checkChild(i, node.LChild); err != nil {
			return err
		}
	}
	if len(res.Nodes) == 0 {
		if len(res.Subsectors) != 1 || res.Root != LeafChild(0) {
			return invalid("no nodes, but %d subsectors and root %#x", len(res.Subsectors), uint32(res.Root))
		}
		return nil
	}
	if res.Root != Child(len(res.Nodes)-1) {
		return invalid("root %#x is not the last node", uint32(res.Root))
	}
	usedNodes[len(res.Nodes)-1]++
	for i, n := range usedNodes {
		if n != 1 {
			return invalid("node %d is referenced %d times", i, n)
		}
	}
	for i, n := range usedLeaves {
		if n != 1 {
			return invalid("subsector %d is referenced %d times", i, n)
		}
	}
	return nil
}

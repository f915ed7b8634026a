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

	"github.com/go-gl/mathgl/mgl64"
)

const VMAP_BLOCK_SIZE = 256.0

const VMAP_SAFE_MARGIN = 2.0 // Floating point garbage

// VertexMap looks up existing vertices close enough to the one created as
// the result of intersection, so that splits at the same place share one
// vertex. It does not provide for concurrent access
type VertexMap struct {
	w          *NodesWork
	Grid       [][]VertexID
	BlocksWide int
	BlocksTall int
	MinX, MinY float64
	MaxX, MaxY float64
}

func CreateVertexMap(w *NodesWork, minx, miny, maxx, maxy float64) *VertexMap {
	minx = minx - VMAP_SAFE_MARGIN
	miny = miny - VMAP_SAFE_MARGIN
	maxx = maxx + VMAP_SAFE_MARGIN
	maxy = maxy + VMAP_SAFE_MARGIN

	vm := &VertexMap{
		w:          w,
		MinX:       minx,
		MinY:       miny,
		BlocksWide: int(math.Ceil((maxx - minx + 1) / VMAP_BLOCK_SIZE)),
		BlocksTall: int(math.Ceil((maxy - miny + 1) / VMAP_BLOCK_SIZE)),
	}
	vm.MaxX = vm.MinX + float64(vm.BlocksWide)*VMAP_BLOCK_SIZE
	vm.MaxY = vm.MinY + float64(vm.BlocksTall)*VMAP_BLOCK_SIZE
	vm.Grid = make([][]VertexID, vm.BlocksWide*vm.BlocksTall)
	return vm
}

func (vm *VertexMap) GetBlock(x, y float64) int {
	bx := int(math.Floor((x - vm.MinX) / VMAP_BLOCK_SIZE))
	by := int(math.Floor((y - vm.MinY) / VMAP_BLOCK_SIZE))
	if bx < 0 || bx >= vm.BlocksWide || by < 0 || by >= vm.BlocksTall {
		vm.w.mlog.Verbose(1, "Vertex map index out of range, source values: x=%f, y=%f xmin,ymin=(%f,%f) xmax,ymax=(%f,%f)\n",
			x, y, vm.MinX, vm.MinY, vm.MaxX, vm.MaxY)
		// keep working with the nearest block, should it happen
		bx = clampInt(bx, 0, vm.BlocksWide-1)
		by = clampInt(by, 0, vm.BlocksTall-1)
	}
	return bx + by*vm.BlocksWide
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SelectVertexExact registers vertex id at exactly (x, y), unless there's
// one already
func (vm *VertexMap) SelectVertexExact(x, y float64, id VertexID) VertexID {
	for _, it := range vm.Grid[vm.GetBlock(x, y)] {
		pos := vm.w.vertices[it].Pos
		if pos.X() == x && pos.Y() == y {
			return it
		}
	}
	vm.insertVertex(x, y, id)
	return id
}

// SelectVertexClose returns a vertex within VERTEX_EPSILON of (x, y),
// creating a new one if none exists
func (vm *VertexMap) SelectVertexClose(x, y float64) VertexID {
	for _, it := range vm.Grid[vm.GetBlock(x, y)] {
		pos := vm.w.vertices[it].Pos
		if math.Abs(pos.X()-x) < VERTEX_EPSILON &&
			math.Abs(pos.Y()-y) < VERTEX_EPSILON {
			return it
		}
	}
	w := vm.w
	w.vertices = append(w.vertices, Vertex{
		Pos:       mgl64.Vec2{x, y},
		Synthetic: true,
	})
	id := VertexID(len(w.vertices) - 1)
	w.totals.NewVertices++
	vm.insertVertex(x, y, id)
	return id
}

func (vm *VertexMap) insertVertex(x, y float64, id VertexID) {
	// If a vertex is near a block boundary, then it will be inserted on
	// both sides of the boundary so that SelectVertexClose can find
	// it by checking in only one block.
	blk := [4]int{
		vm.GetBlock(x-VERTEX_EPSILON, y-VERTEX_EPSILON),
		vm.GetBlock(x+VERTEX_EPSILON, y-VERTEX_EPSILON),
		vm.GetBlock(x-VERTEX_EPSILON, y+VERTEX_EPSILON),
		vm.GetBlock(x+VERTEX_EPSILON, y+VERTEX_EPSILON),
	}
	for i := 0; i < 4; i++ {
		dup := false
		for j := 0; j < i; j++ {
			if blk[j] == blk[i] {
				dup = true
				break
			}
		}
		if !dup {
			vm.Grid[blk[i]] = append(vm.Grid[blk[i]], id)
		}
	}
}

// PopulateVertexMap puts every vertex used by the map's lines in
func PopulateVertexMap(vm *VertexMap, list *hedgeList) {
	for _, id := range list.ids {
		h := &vm.w.hedges[id]
		vm.SelectVertexExact(h.psx, h.psy, h.Start)
		vm.SelectVertexExact(h.pex, h.pey, h.End)
	}
}

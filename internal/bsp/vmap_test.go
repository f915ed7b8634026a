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

// vmap_test.go
package bsp

import (
	"testing"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
)

func TestVertexMapReuse(t *testing.T) {
	w, _ := workFor(t, level.SquareRoom())
	vm := w.vmap
	if got := vm.SelectVertexClose(VERTEX_EPSILON/2, 0); got != 0 {
		t.Errorf("vertex close to (0,0) = %d, want 0", got)
	}
	if len(w.vertices) != 4 {
		t.Fatalf("existing vertex was duplicated")
	}
	v := vm.SelectVertexClose(100, 100)
	if v != 4 || !w.vertices[v].Synthetic {
		t.Errorf("new vertex = %d (%+v), want synthetic vertex 4", v, w.vertices[v])
	}
	if again := vm.SelectVertexClose(100, 100+VERTEX_EPSILON/2); again != v {
		t.Errorf("vertex %d created next to %d", again, v)
	}
	if far := vm.SelectVertexClose(100, 100+2*VERTEX_EPSILON); far == v {
		t.Errorf("vertex too far away was reused")
	}
	if w.totals.NewVertices != 2 {
		t.Errorf("NewVertices = %d, want 2", w.totals.NewVertices)
	}
}

func TestVertexMapBlockBoundary(t *testing.T) {
	w, _ := workFor(t, level.SquareRoom())
	vm := w.vmap
	// blocks start at MinX, so this one is on the boundary between the
	// first and the second column
	x := vm.MinX + VMAP_BLOCK_SIZE
	if vm.GetBlock(x-VERTEX_EPSILON/2, 10) == vm.GetBlock(x+VERTEX_EPSILON/2, 10) {
		t.Fatalf("test points are in the same block")
	}
	v := vm.SelectVertexClose(x, 10)
	if got := vm.SelectVertexClose(x-VERTEX_EPSILON/2, 10); got != v {
		t.Errorf("vertex across the boundary (left) not found: got %d, want %d", got, v)
	}
	if got := vm.SelectVertexClose(x+VERTEX_EPSILON/2, 10); got != v {
		t.Errorf("vertex across the boundary (right) not found: got %d, want %d", got, v)
	}
}

func TestVertexMapOutOfRange(t *testing.T) {
	w, _ := workFor(t, level.SquareRoom())
	vm := w.vmap
	if b := vm.GetBlock(-1e6, 1e6); b < 0 || b >= len(vm.Grid) {
		t.Errorf("GetBlock out of bounds = %d", b)
	}
}

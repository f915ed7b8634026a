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

// Package bsp builds BSP trees (nodes, subsectors, segs) for a map. It uses
// floating point half-edges split with double precision, superblocks from
// AJ-BSP to speed up partition evaluation, and closes subsectors with
// minisegs so that each one is a convex polygon.
package bsp

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
)

// smallest distance between two points before being considered equal
const DIST_EPSILON float64 = 1.0 / 128.0

// split points closer than this to an existing vertex reuse it
const VERTEX_EPSILON float64 = 1.0 / 1024.0

// smallest degrees between two angles before being considered equal
const ANG_EPSILON float64 = 1.0 / 1024.0

const IFFY_LEN = 4.0

const MARGIN_LEN = 6 // MUST EQUAL int(IFFY_LEN * 1.5)

// Minisegs shorter than this are logged
const SHORT_CUT_LEN = 0.2

// Cost multiplier for splitting a seg that should have remained unsplit
const PRECIOUS_MULTIPLY = 64

const INITIAL_BIG_COST = int(^uint(0) >> 1)

// Bounding box indices, same as in Doom's node format
const (
	BB_TOP = iota
	BB_BOTTOM
	BB_LEFT
	BB_RIGHT
)

// Results of isConvex
const (
	CONVEX_SUBSECTOR = iota
	NONCONVEX_ONESECTOR
	NONCONVEX_MULTISECTOR
)

var ErrUnbuildable = errors.New("no valid partition for a non-convex region")
var ErrNoHEdges = errors.New("no half-edges could be created")
var ErrArenaExhausted = errors.New("half-edge arena exhausted")
var ErrInvalidOutput = errors.New("invalid nodes output")

type HEdgeID int32

const NoHEdge HEdgeID = -1

type VertexID int32

// Vertex of the build copy. Ids of the map's vertices are their indices in
// the map, vertices created by splits are appended after them
type Vertex struct {
	Pos       mgl64.Vec2
	Synthetic bool
	tips      []EdgeTip
}

// EdgeTip is the end of some wall at a vertex: which way it goes out of the
// vertex, and what sectors are on its left and right (looking outward)
type EdgeTip struct {
	Angle       float64 // degrees, [0,360)
	Left, Right int     // sector or NO_INDEX
}

// HEdge is one side of a linedef (or part of it, after splits), a miniseg
// along a partition, or the back of a one-sided window
type HEdge struct {
	Start, End VertexID
	Line       int // linedef index, -1 for minisegs and windows
	Source     int // linedef this is derived from or collinear with
	Side       int // 0 front, 1 back
	Sector     int
	Twin       HEdgeID
	Miniseg    bool
	Window     bool
	SelfRef    bool
	Precious   bool

	list  *hedgeList
	alias int
	// partition values
	psx, psy, pex, pey float64
	pdx, pdy           float64
	plen, pperp, ppara float64
}

// Child references a node or a subsector
type Child uint32

const CHILD_LEAF = Child(0x80000000)

func (c Child) IsLeaf() bool {
	return c&CHILD_LEAF != 0
}

func (c Child) Index() int {
	return int(c &^ CHILD_LEAF)
}

func LeafChild(idx int) Child {
	return Child(idx) | CHILD_LEAF
}

type Seg struct {
	V1      int     `yaml:"v1"`
	V2      int     `yaml:"v2"`
	Angle   int     `yaml:"angle"` // binary angle, 0..65535
	Line    int     `yaml:"line"`  // -1 for minisegs and window segs
	Side    int     `yaml:"side"`
	Offset  float64 `yaml:"offset"`  // distance along linedef to start of seg
	Partner int     `yaml:"partner"` // seg on the other side, or -1
	Sector  int     `yaml:"sector"`
}

type SubSector struct {
	FirstSeg int `yaml:"first_seg"`
	NumSegs  int `yaml:"num_segs"`
	Sector   int `yaml:"sector"`
}

type Node struct {
	X      float64    `yaml:"x"`
	Y      float64    `yaml:"y"`
	Dx     float64    `yaml:"dx"`
	Dy     float64    `yaml:"dy"`
	Rbox   [4]float64 `yaml:"rbox,flow"` // right bounding box
	Lbox   [4]float64 `yaml:"lbox,flow"` // left bounding box
	RChild Child      `yaml:"rchild"`
	LChild Child      `yaml:"lchild"`
}

type NodesTotals struct {
	NumNodes           int `yaml:"nodes"`
	NumSubsectors      int `yaml:"subsectors"`
	NumSegs            int `yaml:"segs"`
	NumVertices        int `yaml:"vertices"`
	NewVertices        int `yaml:"new_vertices"`
	SegSplits          int `yaml:"seg_splits"`
	Minisegs           int `yaml:"minisegs"`
	MaxSegsInSubsector int `yaml:"max_segs_in_subsector"`
	HeightLeft         int `yaml:"height_left"`
	HeightRight        int `yaml:"height_right"`
}

// NodesResult is the flattened tree. Nodes are in post-order, so Root is the
// last node unless the whole map is a single subsector
type NodesResult struct {
	Vertices   []level.Vertex `yaml:"vertices,omitempty"`
	Segs       []Seg          `yaml:"segs,omitempty"`
	Subsectors []SubSector    `yaml:"subsectors,omitempty"`
	Nodes      []Node         `yaml:"nodes,omitempty"`
	Root       Child          `yaml:"root"`
	Totals     NodesTotals    `yaml:"totals"`
	Warnings   []string       `yaml:"warnings,omitempty"`
}

type hedgeList struct {
	ids []HEdgeID
}

func (l *hedgeList) len() int {
	return len(l.ids)
}

type nodeInProcess struct {
	X, Y, Dx, Dy float64
	Rbox, Lbox   [4]float64
	nextR, nextL *nodeInProcess
	leafR, leafL *hedgeList
	RChild       Child
	LChild       Child
}

// treeRef is what createChild produces: either a node or a leaf
type treeRef struct {
	node *nodeInProcess
	leaf *hedgeList
}

// NodesWork is the state of a single build. Nothing in it is shared with
// other builds
type NodesWork struct {
	m        *level.Map
	cfg      *config.BuildConfig
	mlog     *logger.MiniLogger
	hedges   []HEdge
	vertices []Vertex
	vmap     *VertexMap
	cuts     cutList

	segAliasObj *SegAliasHolder
	superPool   []*Superblock

	totals   NodesTotals
	warnings []string
	// sectors already reported as unclosed
	warnedUnclosed map[int]bool

	// emission
	result   *NodesResult
	segIndex []int
}

// arenaExhausted is the panic value that Build turns into ErrArenaExhausted
type arenaExhausted struct {
	limit int
}

// newHEdge allocates a copy of the template. Pointers to hedges obtained
// before the call are invalid after it
func (w *NodesWork) newHEdge(template HEdge) HEdgeID {
	if len(w.hedges) >= w.cfg.MaxHEdges {
		panic(arenaExhausted{limit: w.cfg.MaxHEdges})
	}
	w.hedges = append(w.hedges, template)
	return HEdgeID(len(w.hedges) - 1)
}

func (w *NodesWork) warn(format string, a ...interface{}) {
	s := fmt.Sprintf(format, a...)
	w.mlog.Printf("Warning: %s", s)
	w.warnings = append(w.warnings, strings.TrimRight(s, "\n"))
}

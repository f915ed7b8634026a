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

// nodegen_test.go
package bsp

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/utils"
)

func defaultConfig() *config.BuildConfig {
	cfg := config.DefaultBuild()
	return &cfg
}

// mustBuild builds nodes and validates them, failing the test on any error
func mustBuild(t *testing.T, m *level.Map, cfg *config.BuildConfig) *NodesResult {
	t.Helper()
	mlog := logger.CreateMiniLogger(0)
	res, err := Build(m, cfg, mlog)
	if err != nil {
		t.Fatalf("Build(%s): %s\nlog:\n%s", m.Name, err.Error(), mlog.String())
	}
	if err := Validate(res, m); err != nil {
		t.Fatalf("Validate(%s): %s\n%s", m.Name, err.Error(), utils.SDump(res))
	}
	return res
}

func analyzed(t *testing.T, m *level.Map) *level.Map {
	t.Helper()
	c := m.Clone()
	if _, err := level.Analyze(c, logger.CreateMiniLogger(0)); err != nil {
		t.Fatalf("Analyze(%s): %s", m.Name, err.Error())
	}
	return c
}

func TestSingleConvexSector(t *testing.T) {
	res := mustBuild(t, level.SquareRoom(), defaultConfig())
	if len(res.Nodes) != 0 || len(res.Subsectors) != 1 || len(res.Segs) != 4 {
		t.Fatalf("got %d nodes, %d subsectors, %d segs, want 0, 1, 4",
			len(res.Nodes), len(res.Subsectors), len(res.Segs))
	}
	if res.Root != LeafChild(0) {
		t.Errorf("root = %#x, want leaf 0", uint32(res.Root))
	}
	if len(res.Vertices) != 4 || res.Totals.NewVertices != 0 {
		t.Errorf("got %d vertices (%d new), want 4 (0 new)", len(res.Vertices),
			res.Totals.NewVertices)
	}
	for i, seg := range res.Segs {
		if seg.Partner != -1 || seg.Sector != 0 || seg.Side != 0 || seg.Offset != 0 {
			t.Errorf("seg %d = %+v", i, seg)
		}
	}
	if res.Totals.HeightLeft != 0 || res.Totals.HeightRight != 0 {
		t.Errorf("heights = (%d,%d), want (0,0)", res.Totals.HeightLeft, res.Totals.HeightRight)
	}
}

func TestTwoRooms(t *testing.T) {
	res := mustBuild(t, level.TwoRooms(), defaultConfig())
	if len(res.Nodes) != 1 || len(res.Subsectors) != 2 || len(res.Segs) != 8 {
		t.Fatalf("got %d nodes, %d subsectors, %d segs, want 1, 2, 8",
			len(res.Nodes), len(res.Subsectors), len(res.Segs))
	}
	node := res.Nodes[0]
	if node.X != 256 || node.Y != 256 || node.Dx != 0 || node.Dy != -256 {
		t.Errorf("partition = (%v,%v) (%v,%v), want the shared wall (256,256) (0,-256)",
			node.X, node.Y, node.Dx, node.Dy)
	}
	if node.RChild != LeafChild(0) || node.LChild != LeafChild(1) {
		t.Errorf("children = %#x, %#x", uint32(node.RChild), uint32(node.LChild))
	}
	if node.Rbox != [4]float64{256, 0, 0, 256} || node.Lbox != [4]float64{256, 0, 256, 512} {
		t.Errorf("boxes = %v %v", node.Rbox, node.Lbox)
	}
	if res.Root != Child(0) {
		t.Errorf("root = %#x, want node 0", uint32(res.Root))
	}
	if res.Subsectors[0].Sector != 0 || res.Subsectors[1].Sector != 1 {
		t.Errorf("subsector sectors = %d, %d", res.Subsectors[0].Sector, res.Subsectors[1].Sector)
	}
	partnered := 0
	for i, seg := range res.Segs {
		if seg.Partner == -1 {
			continue
		}
		partnered++
		if seg.Line != 2 {
			t.Errorf("seg %d of line %d has partner %d", i, seg.Line, seg.Partner)
		}
	}
	if partnered != 2 {
		t.Errorf("%d segs have partners, want 2", partnered)
	}
	if res.Totals.SegSplits != 0 || res.Totals.Minisegs != 0 {
		t.Errorf("totals = %+v", res.Totals)
	}
}

func TestNonConvexSingleSector(t *testing.T) {
	res := mustBuild(t, level.LRoom(), defaultConfig())
	if len(res.Nodes) != 1 || len(res.Subsectors) != 2 || len(res.Segs) != 9 {
		t.Fatalf("got %d nodes, %d subsectors, %d segs, want 1, 2, 9\n%s",
			len(res.Nodes), len(res.Subsectors), len(res.Segs), utils.SDump(res))
	}
	node := res.Nodes[0]
	if node.X != 64 || node.Y != 128 || node.Dx != 0 || node.Dy != -64 {
		t.Errorf("partition = (%v,%v) (%v,%v), want (64,128) (0,-64)",
			node.X, node.Y, node.Dx, node.Dy)
	}
	if len(res.Vertices) != 7 || res.Totals.NewVertices != 1 || res.Totals.SegSplits != 1 {
		t.Errorf("got %d vertices, totals %+v", len(res.Vertices), res.Totals)
	}
	if v := res.Vertices[6]; v.X != 64 || v.Y != 0 {
		t.Errorf("split vertex = %+v, want (64,0)", v)
	}
	minisegs := 0
	for i, seg := range res.Segs {
		if seg.Line != level.NO_INDEX {
			continue
		}
		minisegs++
		if seg.Partner == -1 {
			t.Errorf("miniseg %d has no partner", i)
		}
	}
	if minisegs != 2 || res.Totals.Minisegs != 2 {
		t.Errorf("got %d minisegs (totals say %d), want 2", minisegs, res.Totals.Minisegs)
	}
	// the second half of the bottom wall is measured from the line's start
	for _, seg := range res.Segs {
		if seg.Line == 5 && res.Vertices[seg.V1].X == 64 && seg.Offset != 64 {
			t.Errorf("split seg of line 5 has offset %v, want 64", seg.Offset)
		}
	}
}

func TestZeroLengthLineIgnored(t *testing.T) {
	res := mustBuild(t, level.ZeroLengthRoom(), defaultConfig())
	if len(res.Subsectors) != 1 || len(res.Segs) != 4 {
		t.Errorf("got %d subsectors, %d segs, want 1, 4", len(res.Subsectors), len(res.Segs))
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "linedef 4 is zero-length") {
			found = true
		}
	}
	if !found {
		t.Errorf("no zero-length warning among %q", res.Warnings)
	}
	// annotated lines are skipped without repeating the warning
	res = mustBuild(t, analyzed(t, level.ZeroLengthRoom()), defaultConfig())
	for _, w := range res.Warnings {
		if strings.Contains(w, "zero-length") {
			t.Errorf("unexpected warning %q", w)
		}
	}
}

func TestSelfRefFallback(t *testing.T) {
	res := mustBuild(t, level.SelfRefRoom(), defaultConfig())
	if len(res.Nodes) != 1 || len(res.Subsectors) != 2 {
		t.Fatalf("got %d nodes, %d subsectors, want 1, 2", len(res.Nodes), len(res.Subsectors))
	}
	node := res.Nodes[0]
	if node.X != 96 || node.Y != 128 || node.Dx != 64 || node.Dy != 0 {
		t.Errorf("partition = (%v,%v) (%v,%v), want the self-referencing line",
			node.X, node.Y, node.Dx, node.Dy)
	}
	if res.Totals.Minisegs != 4 || res.Totals.SegSplits != 2 {
		t.Errorf("totals = %+v, want 4 minisegs and 2 splits", res.Totals)
	}
	for i, ss := range res.Subsectors {
		if ss.Sector != 0 || ss.NumSegs != 6 {
			t.Errorf("subsector %d = %+v", i, ss)
		}
		first := res.Segs[ss.FirstSeg]
		if first.Line == level.NO_INDEX || first.Line == 4 {
			t.Errorf("subsector %d starts with seg of line %d", i, first.Line)
		}
	}
}

func TestSelfRefNotPreferred(t *testing.T) {
	res := mustBuild(t, level.SelfRefTwoRooms(), defaultConfig())
	if len(res.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(res.Nodes))
	}
	root := res.Nodes[res.Root.Index()]
	if root.X != 256 || root.Dx != 0 {
		t.Errorf("root partition = (%v,%v) (%v,%v), want the shared wall",
			root.X, root.Y, root.Dx, root.Dy)
	}
	// the shared wall was split in the right subtree, its other side lives
	// in a finished leaf and must have been split too
	sharedSegs := 0
	for _, seg := range res.Segs {
		if seg.Line == 2 {
			sharedSegs++
			if seg.Partner == -1 {
				t.Errorf("seg of the shared wall without partner: %+v", seg)
			}
		}
	}
	if sharedSegs != 4 {
		t.Errorf("shared wall has %d segs, want 4", sharedSegs)
	}
}

func TestSkipSelfRef(t *testing.T) {
	cfg := defaultConfig()
	cfg.SkipSelfRef = true
	res := mustBuild(t, level.SelfRefRoom(), cfg)
	if len(res.Nodes) != 0 || len(res.Segs) != 4 {
		t.Errorf("got %d nodes, %d segs, want 0, 4", len(res.Nodes), len(res.Segs))
	}
	for i, seg := range res.Segs {
		if seg.Line == 4 {
			t.Errorf("seg %d belongs to the skipped line", i)
		}
	}
}

func TestWindowEffect(t *testing.T) {
	m := analyzed(t, level.WindowRoom())
	res := mustBuild(t, m, defaultConfig())
	if len(res.Subsectors) != 2 {
		t.Fatalf("got %d subsectors, want 2", len(res.Subsectors))
	}
	root := res.Nodes[res.Root.Index()]
	if root.X != 256 || root.Dx != 0 {
		t.Errorf("root partition = (%v,%v) (%v,%v), want the window line",
			root.X, root.Y, root.Dx, root.Dy)
	}
	found := false
	for i, seg := range res.Segs {
		if seg.Line != level.NO_INDEX || seg.Sector != 1 || seg.Partner == -1 {
			continue
		}
		if p := res.Segs[seg.Partner]; p.Line == 2 {
			found = true
		} else {
			t.Errorf("window seg %d is partnered with seg of line %d", i, p.Line)
		}
	}
	if !found {
		t.Errorf("no window seg partnered with line 2\n%s", utils.SDump(res.Segs))
	}
	// best seg of the window subsector is a real wall of the far room
	for i, ss := range res.Subsectors {
		if first := res.Segs[ss.FirstSeg]; first.Line == level.NO_INDEX || first.Line == 2 {
			t.Errorf("subsector %d starts with seg %+v", i, first)
		}
	}
}

func TestCourtyard(t *testing.T) {
	m := analyzed(t, level.Courtyard())
	res := mustBuild(t, m, defaultConfig())
	if len(res.Nodes) == 0 {
		t.Errorf("courtyard built as a single subsector")
	}
	if len(res.Subsectors) != len(res.Nodes)+1 {
		t.Errorf("%d subsectors for %d nodes", len(res.Subsectors), len(res.Nodes))
	}
}

func TestFactorRange(t *testing.T) {
	for _, factor := range []int{config.BSP_FACTOR_MIN, config.BSP_FACTOR_MAX} {
		cfg := defaultConfig()
		cfg.Factor = factor
		for _, name := range level.SampleNames() {
			mustBuild(t, analyzed(t, level.Samples[name]()), cfg)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, name := range level.SampleNames() {
		m := analyzed(t, level.Samples[name]())
		orig := m.Clone()
		first := mustBuild(t, m, defaultConfig())
		second := mustBuild(t, m, defaultConfig())
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: two builds differ", name)
		}
		if !reflect.DeepEqual(orig, m) {
			t.Errorf("%s: Build modified the map", name)
		}
	}
}

func TestArenaExhausted(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxHEdges = 4
	res, err := Build(level.TwoRooms(), cfg, logger.CreateMiniLogger(0))
	if !errors.Is(err, ErrArenaExhausted) {
		t.Errorf("expected ErrArenaExhausted, got %v", err)
	}
	if res != nil {
		t.Errorf("partial result returned on failure")
	}
}

func TestNoHEdges(t *testing.T) {
	b := level.NewBuilder("EMPTY")
	s := b.Sector(0, 128)
	b.Line(64, 64, 64, 64, s, level.NO_INDEX)
	_, err := Build(b.Map(), defaultConfig(), logger.CreateMiniLogger(0))
	if !errors.Is(err, ErrNoHEdges) {
		t.Errorf("expected ErrNoHEdges, got %v", err)
	}
}

func TestUnbuildable(t *testing.T) {
	// a convex room whose walls disagree on the sector: every partition
	// candidate has all the walls on one side
	b := level.NewBuilder("MISMATCH")
	s0 := b.Sector(0, 128)
	s1 := b.Sector(0, 128)
	b.Line(0, 0, 0, 256, s0, level.NO_INDEX)
	b.Line(0, 256, 256, 256, s1, level.NO_INDEX)
	b.Line(256, 256, 256, 0, s1, level.NO_INDEX)
	b.Line(256, 0, 0, 0, s1, level.NO_INDEX)
	res, err := Build(b.Map(), defaultConfig(), logger.CreateMiniLogger(0))
	if !errors.Is(err, ErrUnbuildable) {
		t.Errorf("expected ErrUnbuildable, got %v", err)
	}
	if res != nil {
		t.Errorf("partial result returned on failure")
	}
}

func TestBadInput(t *testing.T) {
	m := level.SquareRoom()
	m.Linedefs[0].V2 = 100
	if _, err := Build(m, defaultConfig(), logger.CreateMiniLogger(0)); !errors.Is(err, level.ErrBadReference) {
		t.Errorf("expected ErrBadReference, got %v", err)
	}
	cfg := defaultConfig()
	cfg.Factor = 0
	if _, err := Build(level.SquareRoom(), cfg, logger.CreateMiniLogger(0)); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected config.ErrInvalid, got %v", err)
	}
}

func TestBuildLogs(t *testing.T) {
	mlog := logger.CreateMiniLogger(0)
	if _, err := Build(level.LRoom(), defaultConfig(), mlog); err != nil {
		t.Fatalf("Build: %s", err.Error())
	}
	out := mlog.String()
	for _, want := range []string{
		"Initial number of segs is 6.",
		"Created 2 subsectors, 1 nodes. Got 9 segs, 7 vertexes. Split segs 1 times.",
		"Height of left and right subtrees = (0,0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}

// pillarRoom has two square pillars inside a room, one ending gap units
// above the other's top wall, so partitions along their sides cross that
// gap
func pillarRoom(gap float64) *level.Map {
	b := level.NewBuilder("PILLARS")
	room := b.Sector(0, 256)
	b.Outline(room, [][2]float64{{0, 0}, {0, 512}, {512, 512}, {512, 0}}...)
	for _, r := range [][4]float64{{128, 200 + gap, 192, 300}, {64, 100, 160, 200}} {
		pillar := b.Sector(32, 256)
		pts := [][2]float64{{r[0], r[1]}, {r[0], r[3]}, {r[2], r[3]}, {r[2], r[1]}}
		// room goes around the pillar the other way
		b.Outline(room, pts[3], pts[2], pts[1], pts[0])
		b.Outline(pillar, pts...)
	}
	return b.Map()
}

func TestNearCoincidentCuts(t *testing.T) {
	for _, gap := range []float64{0.05, 0.1, 0.15, 0.19, 0.5} {
		for _, factor := range []int{config.BSP_FACTOR_MIN, config.BSP_FACTOR_DEFAULT, config.BSP_FACTOR_MAX} {
			cfg := defaultConfig()
			cfg.Factor = factor
			res := mustBuild(t, analyzed(t, pillarRoom(gap)), cfg)
			for _, warning := range res.Warnings {
				if strings.Contains(warning, "unclosed") {
					t.Errorf("gap %v, factor %d: %s", gap, factor, warning)
				}
			}
		}
	}
}

func TestMalformedLinesWarn(t *testing.T) {
	for _, tc := range []struct {
		name     string
		setup    func(m *level.Map, cfg *config.BuildConfig)
		warning  string
		warnings int
		// whether the output is expected to pass Validate
		valid bool
		check func(t *testing.T, res *NodesResult)
	}{
		{
			name: "no front sidedef",
			setup: func(m *level.Map, cfg *config.BuildConfig) {
				v := len(m.Vertices)
				m.Vertices = append(m.Vertices, level.Vertex{X: 96, Y: 128}, level.Vertex{X: 160, Y: 128})
				m.Sidedefs = append(m.Sidedefs, level.Sidedef{Sector: 0, Middle: "-"})
				ld := level.NewLinedef(v, v+1)
				ld.Back = len(m.Sidedefs) - 1
				m.Linedefs = append(m.Linedefs, ld)
			},
			warning:  "linedef 4 doesn't have front sidedef",
			warnings: 1,
			// nothing closes the room on the front side of that line
			valid: false,
			check: func(t *testing.T, res *NodesResult) {
				n := 0
				for _, seg := range res.Segs {
					if seg.Line == 4 {
						n++
						if seg.Side != 1 {
							t.Errorf("seg of linedef 4 is on side %d", seg.Side)
						}
					}
				}
				if n != 1 {
					t.Errorf("linedef 4 got %d segs, want 1", n)
				}
			},
		},
		{
			name: "two-sided without back sidedef",
			setup: func(m *level.Map, cfg *config.BuildConfig) {
				m.Linedefs[0].Flags |= level.LF_TWOSIDED
			},
			warning:  "linedef 0 is marked as 2-sided but doesn't have back sidedef",
			warnings: 1,
			valid:    true,
			check: func(t *testing.T, res *NodesResult) {
				if len(res.Segs) != 4 {
					t.Errorf("got %d segs, want 4", len(res.Segs))
				}
				for i, seg := range res.Segs {
					if seg.Partner != -1 {
						t.Errorf("seg %d of one-sided room has partner %d", i, seg.Partner)
					}
				}
			},
		},
		{
			name: "very long lines",
			setup: func(m *level.Map, cfg *config.BuildConfig) {
				cfg.LongLineWarn = 200
			},
			warning:  "is very long (256 units)",
			warnings: 4,
			valid:    true,
			check: func(t *testing.T, res *NodesResult) {
				if len(res.Segs) != 4 || len(res.Nodes) != 0 {
					t.Errorf("got %d segs and %d nodes, want 4 and 0", len(res.Segs), len(res.Nodes))
				}
			},
		},
	} {
		m := level.SquareRoom()
		cfg := defaultConfig()
		tc.setup(m, cfg)
		mlog := logger.CreateMiniLogger(0)
		res, err := Build(m, cfg, mlog)
		if err != nil {
			t.Errorf("%s: Build: %s", tc.name, err.Error())
			continue
		}
		n := 0
		for _, warning := range res.Warnings {
			if strings.Contains(warning, tc.warning) {
				n++
			}
		}
		if n != tc.warnings {
			t.Errorf("%s: %d warnings contain %q, want %d: %v", tc.name, n, tc.warning,
				tc.warnings, res.Warnings)
		}
		if !strings.Contains(mlog.String(), "Warning: ") {
			t.Errorf("%s: warning not logged", tc.name)
		}
		if err := Validate(res, m); (err == nil) != tc.valid {
			t.Errorf("%s: Validate returned %v", tc.name, err)
		}
		tc.check(t, res)
	}
}

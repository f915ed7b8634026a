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

// segalias
package bsp

// Cheap integer aliases for collinear hedges. A hedge evaluated as a
// partition gives its alias to all collinear hedges it runs into, and those
// are then not evaluated again while picking the same node, since they
// would produce the same partition
type SegAliasHolder struct {
	visited  []bool // indexed by alias
	maxAlias int    // max known alias so far. Incremented by Generate
}

// Init must be called before SegAliasHolder can be used for the first time
func (s *SegAliasHolder) Init() {
	s.visited = make([]bool, 1, 64)
	s.maxAlias = 0
}

// Generate returns a new available alias that was not in use AND marks
// it as visited. Minimal return value is 1, so that you can use 0 to mean
// "no alias was assigned"
func (s *SegAliasHolder) Generate() int {
	s.maxAlias++
	s.visited = append(s.visited, true)
	return s.maxAlias
}

// MarkAndRecall marks alias as visited but returns whether it was visited already
func (s *SegAliasHolder) MarkAndRecall(alias int) bool {
	b := s.visited[alias]
	s.visited[alias] = true
	return b
}

// UnvisitAll marks all aliases as not yet visited. Done before each pass
// over partition candidates, so that marks from previous passes are not
// retained
func (s *SegAliasHolder) UnvisitAll() {
	for i := range s.visited {
		s.visited[i] = false
	}
}

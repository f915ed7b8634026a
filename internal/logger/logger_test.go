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

// logger_test.go
package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerbosityFilter(t *testing.T) {
	var out, errOut bytes.Buffer
	log := CreateLogger(&out, &errOut, 1)
	log.Verbose(1, "shown\n")
	log.Verbose(2, "hidden\n")
	log.Error("bad thing\n")
	if !strings.Contains(out.String(), "shown") {
		t.Errorf("Verbose(1) was filtered out with verbosity 1: %q", out.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Errorf("Verbose(2) was printed with verbosity 1: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "bad thing") {
		t.Errorf("Error did not go to the error writer: %q", errOut.String())
	}
}

func TestMiniLoggerCommit(t *testing.T) {
	var out, errOut bytes.Buffer
	log := CreateLogger(&out, &errOut, 0)
	mlog := log.CreateMiniLogger()
	mlog.Printf("Warning: something about MAP01\n")
	mlog.Verbose(3, "too detailed\n")
	if out.Len() != 0 {
		t.Fatalf("mini logger leaked into main log before commit: %q", out.String())
	}
	mlog.Commit("MAP01\n")
	got := out.String()
	if !strings.HasPrefix(got, "MAP01\n") {
		t.Errorf("preface missing, got %q", got)
	}
	if !strings.Contains(got, "something about MAP01") {
		t.Errorf("buffered message missing, got %q", got)
	}
	if strings.Contains(got, "too detailed") {
		t.Errorf("verbosity of parent was not inherited, got %q", got)
	}
	if mlog.String() != "" {
		t.Errorf("buffer must be empty after commit")
	}
}

func TestSlotsClobber(t *testing.T) {
	var out, errOut bytes.Buffer
	log := CreateLogger(&out, &errOut, 0)
	log.Push(1, "first %d\n", 1)
	log.Push(1, "second %d\n", 2)
	log.Flush()
	if strings.Contains(out.String(), "first") || !strings.Contains(out.String(), "second 2") {
		t.Errorf("slot was not clobbered: %q", out.String())
	}
}

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

// main_test.go
package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
)

func readReport(t *testing.T, fileName string) *Report {
	t.Helper()
	data, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatalf("reading report: %s", err.Error())
	}
	rep := &Report{}
	if err := yaml.Unmarshal(data, rep); err != nil {
		t.Fatalf("decoding report: %s", err.Error())
	}
	return rep
}

func TestParseArgsPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cfg.yaml")
	err := os.WriteFile(cfgFile, []byte("build:\n  factor: 10\nverbosity: 2\njobs: 3\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	cfg, opts, err := parseArgs([]string{"-config", cfgFile, "-factor", "12",
		"-map", "e1m1, map01", "in.wad"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %s", err.Error())
	}
	if cfg.Build.Factor != 12 {
		t.Errorf("flag didn't override config file: factor %d", cfg.Build.Factor)
	}
	if cfg.VerbosityLevel != 2 || cfg.Jobs != 3 {
		t.Errorf("flags that weren't given overrode config file: %+v", *cfg)
	}
	if cfg.Build.DiagonalPenalty != config.DIAGONAL_PENALTY {
		t.Errorf("default lost: diagonal penalty %d", cfg.Build.DiagonalPenalty)
	}
	if want := []string{"E1M1", "MAP01"}; !reflect.DeepEqual(cfg.Maps, want) {
		t.Errorf("maps = %v, want %v", cfg.Maps, want)
	}
	if cfg.InputFileName != "in.wad" || opts.configFile != cfgFile {
		t.Errorf("input %q, config %q", cfg.InputFileName, opts.configFile)
	}
}

func TestParseArgsErrors(t *testing.T) {
	if _, _, err := parseArgs([]string{"-factor", "99", "in.wad"}, io.Discard); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("factor out of range: got %v", err)
	}
	for _, args := range [][]string{
		{},
		{"a.wad", "b.wad"},
		{"-sample", "tworooms", "a.wad"},
		{"-sample", "nosuchmap"},
		{"-nosuchflag"},
	} {
		if _, _, err := parseArgs(args, io.Discard); err == nil {
			t.Errorf("parseArgs(%v) succeeded", args)
		}
	}
}

func TestRunSample(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.yaml")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sample", "tworooms", "-check", "-j", "2", "-o", out},
		&stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), "Processing level tworooms:") {
		t.Errorf("level log was not merged:\n%s", stdout.String())
	}
	rep := readReport(t, out)
	if len(rep.Levels) != 1 {
		t.Fatalf("report has %d levels", len(rep.Levels))
	}
	lr := rep.Levels[0]
	if lr.Error != "" || lr.Totals.NumNodes != 1 || lr.Totals.NumSubsectors != 2 {
		t.Errorf("level report = %+v", *lr)
	}
	if lr.Output == nil || len(lr.Output.Nodes) != 1 || len(lr.Output.Segs) != 8 {
		t.Errorf("output arrays missing from report")
	}
	if rep.Build.Factor != config.BSP_FACTOR_DEFAULT {
		t.Errorf("report has factor %d", rep.Build.Factor)
	}
}

func TestRunYAMLMap(t *testing.T) {
	dir := t.TempDir()
	mapFile := filepath.Join(dir, "lroom.yaml")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sample", "lroom", "-writemap", mapFile}, &stdout, &stderr); code != 0 {
		t.Fatalf("writing map: exit code %d\n%s", code, stderr.String())
	}
	out := filepath.Join(dir, "report.yaml")
	if code := run([]string{"-check", "-o", out, mapFile}, &stdout, &stderr); code != 0 {
		t.Fatalf("building map: exit code %d\n%s", code, stderr.String())
	}
	lr := readReport(t, out).Levels[0]
	if lr.Name != "lroom.yaml" || lr.Totals.SegSplits != 1 || lr.Totals.Minisegs != 2 {
		t.Errorf("level report = %+v", *lr)
	}
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{filepath.Join(t.TempDir(), "nothere.wad")}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if stderr.Len() == 0 {
		t.Errorf("nothing reported to stderr")
	}
}

func TestRunReportOnStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sample", "tworooms"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d\nstderr:\n%s", code, stderr.String())
	}
	rep := &Report{}
	if err := yaml.Unmarshal(stdout.Bytes(), rep); err != nil {
		t.Fatalf("stdout is not a report: %s\n%s", err.Error(), stdout.String())
	}
	if len(rep.Levels) != 1 || rep.Levels[0].Totals.NumNodes != 1 {
		t.Errorf("report = %+v", *rep)
	}
	if !strings.Contains(stderr.String(), "Processing level tworooms:") {
		t.Errorf("level log didn't go to stderr:\n%s", stderr.String())
	}
}

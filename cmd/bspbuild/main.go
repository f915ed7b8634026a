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

// -- This file is where the program entry is.
// bspbuild loads levels from a wad or a YAML map, builds BSP nodes for each
// of them (several levels at once) and reports what was built.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/bsp"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/config"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/level"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/logger"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/utils"
	"github.com/MORTAL2000/Doomsday-Engine-sub001/internal/wad"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options that don't belong to the program configuration
type cmdOptions struct {
	configFile string
	sample     string
	writeMap   string
}

// parseArgs puts together configuration: defaults, then the config file if
// any, then the flags that were given explicitly
func parseArgs(args []string, errOut io.Writer) (*config.ProgramConfig, *cmdOptions, error) {
	fs := flag.NewFlagSet("bspbuild", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "bspbuild %s\nUsage: bspbuild [options] file.wad|file.yaml\n", config.VERSION)
		fs.PrintDefaults()
		fmt.Fprintf(errOut, "Built-in maps for -sample: %s\n", strings.Join(level.SampleNames(), ", "))
	}
	opts := &cmdOptions{}
	flagCfg := config.Default()
	var maps string
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration `file`")
	fs.StringVar(&opts.sample, "sample", "", "build a built-in map instead of reading a file")
	fs.StringVar(&opts.writeMap, "writemap", "", "write the (first) input map as YAML to `file` and exit")
	fs.IntVar(&flagCfg.Build.Factor, "factor", flagCfg.Build.Factor,
		fmt.Sprintf("seg split cost factor (%d..%d)", config.BSP_FACTOR_MIN, config.BSP_FACTOR_MAX))
	fs.IntVar(&flagCfg.VerbosityLevel, "v", flagCfg.VerbosityLevel, "verbosity level")
	fs.StringVar(&maps, "map", "", "comma-separated list of levels to build, default is all")
	fs.IntVar(&flagCfg.Jobs, "j", flagCfg.Jobs, "number of levels built at once, 0 is number of CPUs")
	fs.BoolVar(&flagCfg.Build.SkipSelfRef, "skipselfref", flagCfg.Build.SkipSelfRef,
		"don't create segs for self-referencing lines")
	fs.BoolVar(&flagCfg.Check, "check", flagCfg.Check, "validate output after building")
	fs.BoolVar(&flagCfg.Dump, "dump", flagCfg.Dump, "dump output arrays to the log")
	fs.StringVar(&flagCfg.OutputFileName, "o", flagCfg.OutputFileName,
		"write report with output arrays to `file`")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		cfg, err = config.LoadFile(opts.configFile)
		if err != nil {
			return nil, nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "factor":
			cfg.Build.Factor = flagCfg.Build.Factor
		case "v":
			cfg.VerbosityLevel = flagCfg.VerbosityLevel
		case "map":
			cfg.Maps = splitMaps(maps)
		case "j":
			cfg.Jobs = flagCfg.Jobs
		case "skipselfref":
			cfg.Build.SkipSelfRef = flagCfg.Build.SkipSelfRef
		case "check":
			cfg.Check = flagCfg.Check
		case "dump":
			cfg.Dump = flagCfg.Dump
		case "o":
			cfg.OutputFileName = flagCfg.OutputFileName
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch {
	case opts.sample != "" && fs.NArg() > 0:
		return nil, nil, errors.New("either -sample or an input file, not both")
	case opts.sample != "":
		if _, ok := level.Samples[opts.sample]; !ok {
			return nil, nil, errors.Errorf("unknown sample %q, have: %s", opts.sample,
				strings.Join(level.SampleNames(), ", "))
		}
	case fs.NArg() == 1:
		cfg.InputFileName = fs.Arg(0)
	case fs.NArg() == 0:
		return nil, nil, errors.New("you must specify an input file")
	default:
		return nil, nil, errors.New("only one input file is supported")
	}
	return cfg, opts, nil
}

func splitMaps(s string) []string {
	var res []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			res = append(res, strings.ToUpper(name))
		}
	}
	return res
}

// levelJob is one level to be built. Loading happens in the same goroutine
// as building
type levelJob struct {
	name   string
	load   func(mlog *logger.MiniLogger) (*level.Map, error)
	mlog   *logger.MiniLogger
	report *LevelReport
}

func wanted(cfg *config.ProgramConfig, name string) bool {
	if len(cfg.Maps) == 0 {
		return true
	}
	for _, m := range cfg.Maps {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// collectJobs lists levels of the input. Returned closer must be called when
// all jobs are done
func collectJobs(cfg *config.ProgramConfig, opts *cmdOptions,
	log *logger.MyLogger) ([]*levelJob, func(), error) {
	nothing := func() {}
	if opts.sample != "" {
		return []*levelJob{{
			name: opts.sample,
			load: func(*logger.MiniLogger) (*level.Map, error) {
				return level.Samples[opts.sample](), nil
			},
		}}, nothing, nil
	}

	ext := strings.ToLower(filepath.Ext(cfg.InputFileName))
	if ext == ".yaml" || ext == ".yml" {
		fileName := cfg.InputFileName
		return []*levelJob{{
			name: filepath.Base(fileName),
			load: func(*logger.MiniLogger) (*level.Map, error) {
				return level.LoadYAML(fileName)
			},
		}}, nothing, nil
	}

	f, err := os.Open(cfg.InputFileName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "an error has occured while trying to read %s",
			cfg.InputFileName)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, cfg.InputFileName)
	}
	mlog := log.CreateMiniLogger()
	w, err := wad.Open(f, st.Size(), mlog)
	mlog.Commit("")
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, cfg.InputFileName)
	}
	var jobs []*levelJob
	for _, name := range w.LevelNames() {
		if !wanted(cfg, name) {
			continue
		}
		name := name
		jobs = append(jobs, &levelJob{
			name: name,
			load: func(mlog *logger.MiniLogger) (*level.Map, error) {
				return w.LoadLevel(name, mlog)
			},
		})
	}
	if len(jobs) == 0 {
		f.Close()
		return nil, nil, errors.New("unable to find any valid levels")
	}
	return jobs, func() { f.Close() }, nil
}

// buildLevel does everything for one level. Only failures of the program
// itself are returned: a level that can't be built is reported and the
// other levels go on
func buildLevel(ctx context.Context, cfg *config.ProgramConfig, job *levelJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mlog := job.mlog
	rep := job.report
	start := time.Now()
	defer func() {
		rep.Elapsed = time.Since(start).Round(time.Microsecond).String()
	}()

	m, err := job.load(mlog)
	if err != nil {
		rep.fail(mlog, err)
		return nil
	}
	// analysis annotates, input stays as it was loaded
	am := m.Clone()
	rep.Analysis, err = level.Analyze(am, mlog)
	if err != nil {
		rep.fail(mlog, err)
		return nil
	}
	res, err := bsp.Build(am, &cfg.Build, mlog)
	if err != nil {
		rep.fail(mlog, err)
		return nil
	}
	rep.Totals = res.Totals
	rep.Warnings = res.Warnings
	if cfg.Check {
		if err := bsp.Validate(res, am); err != nil {
			return errors.Wrapf(err, "level %s", job.name)
		}
		mlog.Verbose(1, "Output passed validation.\n")
	}
	if cfg.Dump {
		mlog.Printf("%s\n", utils.SDump(res))
	}
	if cfg.OutputFileName != "" {
		rep.Output = res
	}
	return nil
}

func run(args []string, out, errOut io.Writer) int {
	timeStart := time.Now()
	cfg, opts, err := parseArgs(args, errOut)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(errOut, "%s\n", err.Error())
		return 2
	}
	logOut := out
	if cfg.OutputFileName == "" && opts.writeMap == "" {
		// the report takes stdout, so that it can be piped as YAML
		logOut = errOut
	}
	log := logger.CreateLogger(logOut, errOut, cfg.VerbosityLevel)

	jobs, closer, err := collectJobs(cfg, opts, log)
	if err != nil {
		log.Error("%s\n", err.Error())
		return 1
	}
	defer closer()

	if opts.writeMap != "" {
		return writeMap(opts.writeMap, jobs[0], log)
	}

	numJobs := cfg.Jobs
	if numJobs == 0 {
		numJobs = runtime.NumCPU()
	}
	log.Verbose(1, "Building %d level(s), up to %d at once.\n", len(jobs), numJobs)

	report := &Report{Input: cfg.InputFileName, Version: config.VERSION, Build: cfg.Build}
	if opts.sample != "" {
		report.Input = "sample:" + opts.sample
	}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(numJobs)
	for _, job := range jobs {
		job.mlog = log.CreateMiniLogger()
		job.report = &LevelReport{Name: job.name}
		report.Levels = append(report.Levels, job.report)
		job := job
		g.Go(func() error {
			return buildLevel(ctx, cfg, job)
		})
	}
	groupErr := g.Wait()
	failed := 0
	for _, job := range jobs {
		job.mlog.Commit(fmt.Sprintf("Processing level %s:\n", job.name))
		if job.report.Error != "" {
			failed++
		}
	}
	log.Flush()
	if groupErr != nil {
		log.Error("Fatal: %s\n", groupErr.Error())
		return 1
	}

	if cfg.OutputFileName != "" {
		if err := report.WriteFile(cfg.OutputFileName); err != nil {
			log.Error("%s\n", err.Error())
			return 1
		}
		log.Printf("Report written to %s\n", cfg.OutputFileName)
	} else if err := report.Write(out); err != nil {
		log.Error("%s\n", err.Error())
		return 1
	}
	log.Printf("Total time: %s\n", time.Since(timeStart))
	log.Sync()
	if failed > 0 {
		log.Error("%d level(s) failed to build.\n", failed)
		return 1
	}
	return 0
}

func writeMap(fileName string, job *levelJob, log *logger.MyLogger) int {
	mlog := log.CreateMiniLogger()
	m, err := job.load(mlog)
	mlog.Commit("")
	if err != nil {
		log.Error("%s\n", err.Error())
		return 1
	}
	f, err := os.Create(fileName)
	if err != nil {
		log.Error("%s\n", err.Error())
		return 1
	}
	if err := m.WriteYAML(f); err != nil {
		f.Close()
		log.Error("%s\n", err.Error())
		return 1
	}
	if err := f.Close(); err != nil {
		log.Error("%s\n", err.Error())
		return 1
	}
	log.Printf("Map %s written to %s\n", job.name, fileName)
	return 0
}

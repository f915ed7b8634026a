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

// Package logger is the central log (stdout/stderr) of the program, plus
// buffered logs for tasks that run concurrently with each other.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type MyLogger struct {
	// Writing to the same slot allows to clobber stuff so that we don't see the
	// same thing written over and over again
	slots []string
	// Mutex is used to order writes to stdout and stderr, as well as Sync call
	mu      sync.Mutex
	syslog  *log.Logger
	errlog  *log.Logger
	verbose int
}

// Logs specific to one task (one level being built). A task is always worked
// on by a single goroutine and never shared until complete. Their output is
// not forwarded to stdout, but is instead buffered until merged into the main
// log of MyLogger type. Verbosity is inherited from the creator
type MiniLogger struct {
	buf     bytes.Buffer
	slots   []string
	verbose int
	parent  *MyLogger
}

// CreateLogger creates a logger writing ordinary messages to out and errors to
// errOut.
func CreateLogger(out, errOut io.Writer, verbosity int) *MyLogger {
	return &MyLogger{
		syslog:  log.New(out, "", 0),
		errlog:  log.New(errOut, "", 0),
		verbose: verbosity,
	}
}

// Log is the program-wide logger. It is only the default destination: the
// builder receives its logger explicitly
var Log = CreateLogger(os.Stdout, os.Stderr, 0)

func (log *MyLogger) SetVerbosity(level int) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.verbose = level
}

func (log *MyLogger) Verbosity() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.verbose
}

// Your generic printf to let user see things
func (log *MyLogger) Printf(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.syslog.Printf(s, a...)
}

// As generic as printf, but writes to stderr instead of stdout
// Does NOT interrupt execution of the program
func (log *MyLogger) Error(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.errlog.Printf(s, a...)
}

// For advanced users or users that are curious, or programmers, there is
// stuff they might want to see but only when they can really bother to spend
// time reading it
func (log *MyLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if verbosityLevel <= log.verbose {
		log.syslog.Printf(s, a...)
	}
}

// Writes to the slot, clobbering whatever was there before us in that same slot
// Used when need to debug something in nodes builder but it's worthless to
// repeat if it concerns the same thing
func (log *MyLogger) Push(slotNumber int, s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	for slotNumber >= len(log.slots) {
		log.slots = append(log.slots, "")
	}
	log.slots[slotNumber] = fmt.Sprintf(s, a...)
}

// Now that slots have been written over multiple times, time to see what was
// written to begin with
func (log *MyLogger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	for _, slot := range log.slots {
		log.syslog.Print(slot)
	}
	log.slots = nil
}

// Sync is used to wait until all messages are written to the output
func (log *MyLogger) Sync() {
	log.mu.Lock()
	log.mu.Unlock()
}

// Merge writes the buffered content of a mini logger, optionally prefaced by
// a header line
func (log *MyLogger) Merge(mlog *MiniLogger, preface string) {
	if mlog == nil {
		return
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(preface) > 0 {
		log.syslog.Print(preface)
	}
	content := mlog.buf.String()
	if len(content) > 0 {
		log.syslog.Print(content)
	}
	if len(mlog.slots) > 0 {
		log.slots = append(log.slots, mlog.slots...)
	}
}

// CreateMiniLogger returns a buffered log with the same verbosity as log
func (log *MyLogger) CreateMiniLogger() *MiniLogger {
	return &MiniLogger{
		verbose: log.Verbosity(),
		parent:  log,
	}
}

// CreateMiniLogger with explicit verbosity that belongs to no parent. Nil
// receivers fall back to the program-wide Log, so this is what tests use when
// they want to inspect the output
func CreateMiniLogger(verbosity int) *MiniLogger {
	return &MiniLogger{verbose: verbosity}
}

func (mlog *MiniLogger) Printf(s string, a ...interface{}) {
	if mlog == nil {
		Log.Printf(s, a...)
		return
	}
	mlog.buf.WriteString(fmt.Sprintf(s, a...))
}

func (mlog *MiniLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	if mlog == nil {
		Log.Verbose(verbosityLevel, s, a...)
		return
	}
	if verbosityLevel <= mlog.verbose {
		mlog.buf.WriteString(fmt.Sprintf(s, a...))
	}
}

func (mlog *MiniLogger) Push(slotNumber int, s string, a ...interface{}) {
	if mlog == nil {
		Log.Push(slotNumber, s, a...)
		return
	}
	for slotNumber >= len(mlog.slots) {
		mlog.slots = append(mlog.slots, "")
	}
	mlog.slots[slotNumber] = fmt.Sprintf(s, a...)
}

// String returns everything buffered so far
func (mlog *MiniLogger) String() string {
	if mlog == nil {
		return ""
	}
	return mlog.buf.String()
}

// Commit merges the buffered log into the logger that created it
func (mlog *MiniLogger) Commit(preface string) {
	if mlog == nil || mlog.parent == nil {
		return
	}
	mlog.parent.Merge(mlog, preface)
	mlog.buf.Reset()
	mlog.slots = nil
}

// Package profile provides a simple way to generate pprof compatible
// expensive-gate profiles of circuit synthesis.
//
// The circuit builder operates in a single go-routine; this package is also
// NOT thread safe and is meant to be called in the same go-routine.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/pprof/profile"

	"github.com/qsyn/qsyn/logger"
)

var (
	sessions       []*Profile // active sessions
	activeSessions uint32
)

// Profile represents an active expensive-gate profiling session. Every AND
// gate the builder emits becomes one sample, attributed to its synthesis
// call site.
type Profile struct {
	// defaults to ./qsyn.pprof
	// if blank, profile is not written to disk
	filePath string

	// actual pprof profile struct
	// details on pprof format: https://github.com/google/pprof/blob/main/proto/README.md
	pprof profile.Profile

	functions map[string]*profile.Function
	locations map[uint64]*profile.Location

	chDone chan struct{}
}

// Option defines configuration Options for Profile.
type Option func(*Profile)

// WithPath controls the profile destination file. If blank, profile is not
// written.
//
// Defaults to ./qsyn.pprof.
func WithPath(path string) Option {
	return func(p *Profile) {
		p.filePath = path
	}
}

// WithNoOutput indicates that the profile is not going to be written to disk.
//
// This is equivalent to WithPath("")
func WithNoOutput() Option {
	return func(p *Profile) {
		p.filePath = ""
	}
}

// Start creates a new active profiling session. When Stop() is called, this
// session is removed from active profiling sessions and may be serialized to
// disk as a pprof compatible file (see WithPath option).
//
// All calls to profile.Start() and Stop() are meant to be executed in the
// same go routine that drives the circuit builder.
//
// It is allowed to create multiple overlapping profiling sessions.
func Start(options ...Option) *Profile {

	// start the worker first time a profiling session starts.
	onceInit.Do(func() {
		go worker()
	})

	p := Profile{
		functions: make(map[string]*profile.Function),
		locations: make(map[uint64]*profile.Location),
		filePath:  filepath.Join(".", "qsyn.pprof"),
		chDone:    make(chan struct{}),
	}
	p.pprof.SampleType = []*profile.ValueType{{
		Type: "and-gates",
		Unit: "count",
	}}
	p.pprof.Mapping = []*profile.Mapping{{ID: 1, File: "qsyn"}}

	for _, option := range options {
		option(&p)
	}

	log := logger.Logger()
	if p.filePath == "" {
		log.Warn().Msg("qsyn profiling enabled [not writing to disk]")
	} else {
		log.Info().Str("path", p.filePath).Msg("qsyn profiling enabled")
	}

	// add the session to active sessions
	chCommands <- command{p: &p}
	atomic.AddUint32(&activeSessions, 1)

	return &p
}

// Stop removes the profile from active sessions and may write the pprof file
// to disk. See WithPath option.
func (p *Profile) Stop() {
	log := logger.Logger()

	if p.chDone == nil {
		log.Fatal().Msg("qsyn profile stopped multiple times")
	}

	// ask worker routine to remove ourselves from the active sessions
	chCommands <- command{p: p, remove: true}

	// wait for worker routine to remove us.
	<-p.chDone
	p.chDone = nil

	// if filePath is set, serialize profile to disk in pprof format
	if p.filePath != "" {
		f, err := os.Create(p.filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create qsyn profile")
		}
		if err := p.pprof.Write(f); err != nil {
			log.Error().Err(err).Msg("writing profile")
		}
		f.Close()
		log.Info().Str("path", p.filePath).Msg("qsyn profiling disabled")
	} else {
		log.Warn().Msg("qsyn profiling disabled [not writing to disk]")
	}

}

// NbAnds returns the number of collected samples (expensive gates) in the
// profile session.
func (p *Profile) NbAnds() int {
	return len(p.pprof.Sample)
}

// Top returns a flat per-call-site summary of the collected samples, most
// expensive first.
func (p *Profile) Top() string {
	counts := make(map[string]int64)
	for _, s := range p.pprof.Sample {
		name := "unknown"
		if len(s.Location) > 0 && len(s.Location[0].Line) > 0 {
			name = s.Location[0].Line[0].Function.Name
		}
		counts[name] += s.Value[0]
	}
	type entry struct {
		name  string
		count int64
	}
	entries := make([]entry, 0, len(counts))
	var total int64
	for name, c := range counts {
		entries = append(entries, entry{name, c})
		total += c
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	var sbb bytes.Buffer
	fmt.Fprintf(&sbb, "%d and-gates total\n", total)
	for _, e := range entries {
		fmt.Fprintf(&sbb, "%12d  %s\n", e.count, e.name)
	}
	return sbb.String()
}

// RecordAnd adds a sample (with count == 1) to all the active profiling
// sessions. It is called by the circuit builder for every expensive gate.
func RecordAnd() {
	if n := atomic.LoadUint32(&activeSessions); n == 0 {
		return // do nothing, no active session.
	}

	// collect the stack and send it async to the worker
	pc := make([]uintptr, 20)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	pc = pc[:n]
	chCommands <- command{pc: pc}
}

func (p *Profile) getLocation(frame *runtime.Frame) *profile.Location {
	l, ok := p.locations[uint64(frame.PC)]
	if !ok {
		// first let's see if we have the function.
		f, ok := p.functions[frame.File+frame.Function]
		if !ok {
			fe := strings.Split(frame.Function, "/")
			fName := fe[len(fe)-1]
			f = &profile.Function{
				ID:         uint64(len(p.functions) + 1),
				Name:       fName,
				SystemName: frame.Function,
				Filename:   frame.File,
			}

			p.functions[frame.File+frame.Function] = f
			p.pprof.Function = append(p.pprof.Function, f)
		}

		l = &profile.Location{
			ID:   uint64(len(p.locations) + 1),
			Line: []profile.Line{{Function: f, Line: int64(frame.Line)}},
		}
		p.locations[uint64(frame.PC)] = l
		p.pprof.Location = append(p.pprof.Location, l)
	}

	return l
}

var onceInit sync.Once

// Package profile starts optional runtime profiling for blockcfg.
//
// Profiling is built on [github.com/pkg/profile] and is compiled in only with
// the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag [Modes] is empty and [Profiler.Start] returns a no-op.
//
// With the tag, the command accepts a mode and an output directory:
//
//	blockcfg --pprof-mode cpu --pprof-dir ./profiles dump app.cfg
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// The tagged build also imports [net/http/pprof], registering its handlers
// on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`

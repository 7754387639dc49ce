// Package testutils provides utilities for testing C-Lesh code in Go.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeloader/clesh"
)

// A TextCall records one OutputText call.
type TextCall struct {
	Text             string
	X, Y             int
	Red, Green, Blue int
}

// A DrawCall records one DrawImage call.
type DrawCall struct {
	Name                string
	X, Y, Width, Height int
	Angle, FlipX, FlipY int
}

// TestIO is a recording IOControl backend. Every call the simulator makes
// is captured, input signals are served from a queue, and the random source
// is deterministic, so tests can assert on exact machine behavior.
type TestIO struct {
	Texts     []TextCall
	Draws     []DrawCall
	Sounds    []string
	Music     []string
	Silences  int
	Refreshes int
	Timeouts  []int
	Colors    [][3]int
	// Signals is consumed front to back by ReadSignal; when empty,
	// ReadSignal reports no input.
	Signals []int
	// Randoms is consumed front to back by RandomNumber; when empty,
	// RandomNumber returns lo.
	Randoms []int
}

// OutputText records the call.
func (io *TestIO) OutputText(text string, x, y, red, green, blue int) {
	io.Texts = append(io.Texts, TextCall{Text: text, X: x, Y: y, Red: red, Green: green, Blue: blue})
}

// DrawImage records the call.
func (io *TestIO) DrawImage(name string, x, y, width, height, angle, flipX, flipY int) {
	io.Draws = append(io.Draws, DrawCall{Name: name, X: x, Y: y, Width: width, Height: height, Angle: angle, FlipX: flipX, FlipY: flipY})
}

// Refresh counts the call.
func (io *TestIO) Refresh() { io.Refreshes++ }

// PlaySound records the sound name.
func (io *TestIO) PlaySound(name string) { io.Sounds = append(io.Sounds, name) }

// PlayMusic records the track name.
func (io *TestIO) PlayMusic(name string) { io.Music = append(io.Music, name) }

// Silence counts the call.
func (io *TestIO) Silence() { io.Silences++ }

// ReadSignal pops the next queued signal, or reports no input.
func (io *TestIO) ReadSignal() clesh.Signal {
	if len(io.Signals) == 0 {
		return clesh.Signal{}
	}
	code := io.Signals[0]
	io.Signals = io.Signals[1:]
	return clesh.Signal{Code: code}
}

// Timeout records the requested pacing.
func (io *TestIO) Timeout(ms int) { io.Timeouts = append(io.Timeouts, ms) }

// Color records the color.
func (io *TestIO) Color(red, green, blue int) {
	io.Colors = append(io.Colors, [3]int{red, green, blue})
}

// RandomNumber pops the next queued random, or returns lo.
func (io *TestIO) RandomNumber(lo, hi int) int {
	if len(io.Randoms) == 0 {
		return lo
	}
	n := io.Randoms[0]
	io.Randoms = io.Randoms[1:]
	return n
}

// CompileString writes source to a temporary .clsh file and compiles it
// into a fresh memory of the given size.
func CompileString(t *testing.T, source string, size int) (*clesh.Memory, *clesh.Compiler) {
	t.Helper()
	dir := t.TempDir()
	name := filepath.Join(dir, "program")
	if err := os.WriteFile(name+".clsh", []byte(source), 0o666); err != nil {
		t.Fatalf("could not write source: %v", err)
	}
	memory := clesh.NewMemory(size)
	compiler, err := clesh.Compile(name, memory)
	if err != nil {
		t.Fatalf("could not compile %q: %v", source, err)
	}
	return memory, compiler
}

// RunProgram compiles source and runs it on a recording backend until the
// simulator is Done, starting at the address of the named label. It fails
// the test on compile or runtime errors and on programs that do not stop.
func RunProgram(t *testing.T, source string, size int, entry string, io *TestIO) (*clesh.Memory, *clesh.Simulator) {
	t.Helper()
	memory, compiler := CompileString(t, source, size)
	start, ok := compiler.Symbols["["+entry+"]"]
	if !ok {
		t.Fatalf("no label %q in program", entry)
	}
	sim := clesh.NewSimulator(memory, io, start)
	for slices := 0; sim.Status() != clesh.Done; slices++ {
		if slices > 1000 {
			t.Fatalf("program did not stop")
		}
		if err := sim.Run(10 * time.Millisecond); err != nil {
			t.Fatalf("runtime error: %v", err)
		}
	}
	return memory, sim
}

package clesh

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// A Signal is one unit of user input. Code 0 means no input is pending.
type Signal struct {
	Code int
}

// IOControl is the audiovisual backend the simulator drives. Implementations
// receive values by copy and must not mutate memory; any asynchrony is the
// backend's own concern, as the simulator calls are synchronous.
type IOControl interface {
	// OutputText renders text at a position in the given color.
	OutputText(text string, x, y, red, green, blue int)
	// DrawImage renders a named image with scaling, rotation, and flips.
	DrawImage(name string, x, y, width, height, angle, flipX, flipY int)
	// Refresh presents the frame.
	Refresh()
	// PlaySound plays a named sound effect.
	PlaySound(name string)
	// PlayMusic starts a named music track.
	PlayMusic(name string)
	// Silence stops all sound.
	Silence()
	// ReadSignal polls for input without blocking.
	ReadSignal() Signal
	// Timeout asks the backend to pace the next operation.
	Timeout(ms int)
	// Color sets the current drawing color.
	Color(red, green, blue int)
	// RandomNumber returns a uniform random integer in [lo, hi].
	RandomNumber(lo, hi int) int
}

// ConsoleIO is a headless IOControl for running programs without a windowed
// backend. Text output goes to a writer; images, sound, and input are
// no-ops.
type ConsoleIO struct {
	w   io.Writer
	rng *rand.Rand
}

// NewConsoleIO creates a console backend writing text output to w.
func NewConsoleIO(w io.Writer) *ConsoleIO {
	return &ConsoleIO{w: w, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// OutputText prints the text on its own line.
func (c *ConsoleIO) OutputText(text string, x, y, red, green, blue int) {
	fmt.Fprintln(c.w, text)
}

// DrawImage is a no-op.
func (c *ConsoleIO) DrawImage(name string, x, y, width, height, angle, flipX, flipY int) {}

// Refresh is a no-op.
func (c *ConsoleIO) Refresh() {}

// PlaySound is a no-op.
func (c *ConsoleIO) PlaySound(name string) {}

// PlayMusic is a no-op.
func (c *ConsoleIO) PlayMusic(name string) {}

// Silence is a no-op.
func (c *ConsoleIO) Silence() {}

// ReadSignal reports no input.
func (c *ConsoleIO) ReadSignal() Signal {
	return Signal{}
}

// Timeout sleeps for the requested milliseconds.
func (c *ConsoleIO) Timeout(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Color is a no-op.
func (c *ConsoleIO) Color(red, green, blue int) {}

// RandomNumber returns a uniform random integer in [lo, hi]. A reversed
// range collapses to lo.
func (c *ConsoleIO) RandomNumber(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.rng.Intn(hi-lo+1)
}

// Command clesh compiles and runs a C-Lesh program.
//
// Usage:
//
//	clesh [-config file] [-monitor] <program>
//
// The program name is given without its .clsh suffix. Host settings come
// from the config file (default "Config"): memory size, window dimensions,
// and the program entry address. Compile and runtime errors print to
// standard output and the process still exits cleanly.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/codeloader/clesh"
)

// sliceTime is the advisory budget for one simulator slice.
const sliceTime = 20 * time.Millisecond

func main() {
	config := flag.String("config", "Config", "host configuration file")
	monitor := flag.Bool("monitor", false, "inspect the machine after the program stops")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Printf("Usage: %s <program>\n", os.Args[0])
	} else if err := run(flag.Arg(0), *config, *monitor); err != nil {
		fmt.Println(err)
	}
	fmt.Println("Done.")
}

// run builds the machine, compiles the program, and drives the simulator in
// slices until it stops.
func run(program, configName string, monitor bool) error {
	config, err := clesh.LoadConfig(configName)
	if err != nil {
		return err
	}
	memory := clesh.NewMemory(config.Memory)
	compiler, err := clesh.Compile(program, memory)
	if err != nil {
		return err
	}
	sim := clesh.NewSimulator(memory, clesh.NewConsoleIO(os.Stdout), config.Program)
	var runErr error
	for sim.Status() != clesh.Done {
		if runErr = sim.Run(sliceTime); runErr != nil {
			break
		}
	}
	if monitor {
		runMonitor(compiler, memory, sim)
	}
	return runErr
}

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/codeloader/clesh"
)

const monitorHelp = `monitor commands:
  peek <addr>     show the block at an address
  fields <addr>   list a block's fields
  stack           show the call/value stack
  sym [text]      list symbols, optionally those containing text
  quit            leave the monitor
`

// runMonitor drops into an interactive inspector over the final machine
// state. It is a debugging surface only; nothing here mutates memory.
func runMonitor(compiler *clesh.Compiler, memory *clesh.Memory, sim *clesh.Simulator) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	fmt.Printf("monitor: %d blocks, pointer %d\n", memory.Size(), sim.Pointer())
	for {
		line, err := ln.Prompt("mon> ")
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		args := strings.Fields(line)
		switch args[0] {
		case "quit", "exit":
			return
		case "help":
			fmt.Print(monitorHelp)
		case "peek":
			withAddress(memory, args, func(address int, block *clesh.Block) {
				fmt.Printf("%d: code=%d value=%s fields=%d expressions=%d\n",
					address, block.Code, quoted(block.Value), len(block.Fields), len(block.Expressions))
			})
		case "fields":
			withAddress(memory, args, func(address int, block *clesh.Block) {
				keys := make([]string, 0, len(block.Fields))
				for key := range block.Fields {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Printf("%s=%s\n", key, quoted(block.Fields[key]))
				}
			})
		case "stack":
			fmt.Println(sim.Stack())
		case "sym":
			prefix := ""
			if len(args) > 1 {
				prefix = args[1]
			}
			names := make([]string, 0, len(compiler.Symbols))
			for name := range compiler.Symbols {
				if strings.Contains(name, prefix) {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s = %d\n", name, compiler.Symbols[name])
			}
		default:
			fmt.Print(monitorHelp)
		}
	}
}

// withAddress parses an address argument and hands the addressed block to
// the callback, printing errors instead of failing.
func withAddress(memory *clesh.Memory, args []string, f func(int, *clesh.Block)) {
	if len(args) < 2 {
		fmt.Println("need an address")
		return
	}
	address, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("bad address:", args[1])
		return
	}
	block, err := memory.At(address)
	if err != nil {
		fmt.Println(err)
		return
	}
	f(address, block)
}

// quoted renders a value for display, quoting strings.
func quoted(v clesh.Value) string {
	if v.Kind == clesh.KindString {
		return strconv.Quote(v.Str)
	}
	return strconv.Itoa(v.Num)
}

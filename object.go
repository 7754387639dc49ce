package clesh

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadObjects reads a line-oriented object file into memory. Each
// "object ... end" group clears and fills one block's fields, starting at
// address and advancing one block per group. It returns the number of
// groups loaded; the count expression a load command carries is ignored in
// favor of this count.
func LoadObjects(memory *Memory, name string, address int) (int, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("Could not load file %s.", name)
	}
	defer f.Close()
	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank lines between groups are tolerated.
		case line == "object":
			block, err := memory.At(address)
			if err != nil {
				return count, err
			}
			block.Clear()
		case line == "end":
			address++
			count++
		default:
			pair := strings.SplitN(line, "=", 2)
			if len(pair) != 2 {
				return count, fmt.Errorf("Invalid property format.")
			}
			block, err := memory.At(address)
			if err != nil {
				return count, err
			}
			block.SetField(pair[0], DetectValue(pair[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("Could not load file %s.", name)
	}
	return count, nil
}

// SaveObjects writes count blocks starting at address to a file in the
// object format. Fields are written in sorted key order so output is
// stable; loaders only depend on per-key values, not order.
func SaveObjects(memory *Memory, name string, address, count int) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("Could not save file %s.", name)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i := 0; i < count; i++ {
		block, err := memory.At(address + i)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "object")
		keys := make([]string, 0, len(block.Fields))
		for key := range block.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "%s=%s\n", key, block.Fields[key].Text())
		}
		fmt.Fprintln(w, "end")
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("Could not save file %s.", name)
	}
	return nil
}

// splitItems splits a composite string on a separator, treating the empty
// string as no items at all.
func splitItems(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// getObject unpacks a composite object serialization out of a source
// block's field into a destination block's fields. Top-level items separate
// on "|", properties on ";", and pairs on ":". Each item rewrites the
// destination wholesale, so the last item wins.
func (s *Simulator) getObject(command *Block) error {
	args, err := s.evalExpressions(command, 0, 3)
	if err != nil {
		return err
	}
	pointer, object, field := args[0], args[1], args[2]
	source, err := s.memory.At(object.Num)
	if err != nil {
		return s.fail(command, err)
	}
	dest, err := s.memory.At(pointer.Num)
	if err != nil {
		return s.fail(command, err)
	}
	raw, _ := source.Field(field.Str)
	dest.Fields = nil
	for _, item := range splitItems(raw.Str, "|") {
		dest.Fields = nil
		for _, property := range splitItems(item, ";") {
			pair := strings.Split(property, ":")
			if len(pair) != 2 {
				return s.execError(command, "Sub object property is invalid.")
			}
			dest.SetField(pair[0], DetectValue(pair[1]))
		}
	}
	return nil
}

// getList unpacks a comma-separated list out of a source block's field into
// consecutive block values starting at the destination address.
func (s *Simulator) getList(command *Block) error {
	args, err := s.evalExpressions(command, 0, 3)
	if err != nil {
		return err
	}
	pointer, object, field := args[0], args[1], args[2]
	source, err := s.memory.At(object.Num)
	if err != nil {
		return s.fail(command, err)
	}
	raw, _ := source.Field(field.Str)
	for i, item := range splitItems(raw.Str, ",") {
		block, err := s.memory.At(pointer.Num + i)
		if err != nil {
			return s.fail(command, err)
		}
		block.Value = DetectValue(item)
	}
	return nil
}

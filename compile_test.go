package clesh_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codeloader/clesh"
	"github.com/codeloader/clesh/testutils"
)

// TestPredefinedSymbols tests the symbols seeded before statement parsing.
func TestPredefinedSymbols(t *testing.T) {
	_, compiler := testutils.CompileString(t, "", 16)
	want := map[string]int{
		"[none]":         0,
		"[take-no-jump]": -1,
		"[true]":         1,
		"[false]":        0,
	}
	for name, value := range want {
		if have, ok := compiler.Symbols[name]; !ok || have != value {
			t.Errorf("symbol %s wrong; want %d, have %d (defined: %t)", name, value, have, ok)
		}
	}
}

// TestDeclarations tests define, map, and label updating the symbol table
// without advancing the write pointer.
func TestDeclarations(t *testing.T) {
	source := `
define limit as 3
map alpha beta gamma end
label start
stop
`
	_, compiler := testutils.CompileString(t, source, 16)
	want := map[string]int{
		"[limit]": 3,
		"[alpha]": 0,
		"[beta]":  1,
		"[gamma]": 2,
		"[start]": 0,
	}
	for name, value := range want {
		if have := compiler.Symbols[name]; have != value {
			t.Errorf("symbol %s wrong; want %d, have %d", name, value, have)
		}
	}
	if compiler.Pointer() != 1 {
		t.Errorf("only stop should advance the pointer; pointer is %d", compiler.Pointer())
	}
}

// TestDataStatements tests number, list, and object reserving data cells.
func TestDataStatements(t *testing.T) {
	source := `
number 07
list 3
object hp=10 name=bob end
`
	memory, compiler := testutils.CompileString(t, source, 16)
	if compiler.Pointer() != 5 {
		t.Fatalf("wrong pointer; want 5, have %d", compiler.Pointer())
	}
	b, _ := memory.At(0)
	if b.Value != clesh.NumberValue(7) {
		t.Errorf("number cell wrong: %#v", b.Value)
	}
	for address := 1; address <= 3; address++ {
		b, _ := memory.At(address)
		if b.Value != clesh.NumberValue(0) {
			t.Errorf("list cell %d wrong: %#v", address, b.Value)
		}
	}
	b, _ = memory.At(4)
	if hp, _ := b.Field("hp"); hp != clesh.NumberValue(10) {
		t.Errorf("object hp wrong: %#v", hp)
	}
	if name, _ := b.Field("name"); name != clesh.StringValue("bob") {
		t.Errorf("object name wrong: %#v", name)
	}
}

// TestStoreParse tests the emitted block for a store command with an
// operator chain.
func TestStoreParse(t *testing.T) {
	memory, _ := testutils.CompileString(t, "store #5 + #7 at 10", 16)
	b, _ := memory.At(0)
	if b.Code != clesh.OpStore {
		t.Fatalf("wrong opcode: %d", b.Code)
	}
	if len(b.Expressions) != 2 {
		t.Fatalf("want 2 expressions, have %d", len(b.Expressions))
	}
	value := b.Expressions[0]
	if len(value) != 3 {
		t.Fatalf("value expression wrong length: %d", len(value))
	}
	if value[0].Mode != clesh.ModeImmediate || value[0].Value != clesh.NumberValue(5) {
		t.Errorf("first operand wrong: %#v", value[0])
	}
	if value[1].Oper != clesh.OperAdd {
		t.Errorf("operator wrong: %#v", value[1])
	}
	if value[2].Mode != clesh.ModeImmediate || value[2].Value != clesh.NumberValue(7) {
		t.Errorf("second operand wrong: %#v", value[2])
	}
	dest := b.Expressions[1]
	if len(dest) != 1 || dest[0].Mode != clesh.ModeNumber || dest[0].Value != clesh.NumberValue(10) {
		t.Errorf("destination expression wrong: %#v", dest)
	}
}

// TestOperandModes tests each addressing-mode spelling.
func TestOperandModes(t *testing.T) {
	cases := map[string]struct {
		operand string
		mode    clesh.AddrMode
		value   clesh.Value
		field   string
	}{
		"Number":         {"12", clesh.ModeNumber, clesh.NumberValue(12), ""},
		"String":         {"$hi", clesh.ModeString, clesh.StringValue("hi"), ""},
		"Immediate":      {"#3", clesh.ModeImmediate, clesh.NumberValue(3), ""},
		"Pointer":        {"@3", clesh.ModePointer, clesh.NumberValue(3), ""},
		"ImmediateField": {"#3->hp", clesh.ModeImmediate, clesh.NumberValue(3), "hp"},
		"PointerField":   {"@3->hp", clesh.ModePointer, clesh.NumberValue(3), "hp"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			memory, _ := testutils.CompileString(t, "push "+c.operand, 16)
			b, _ := memory.At(0)
			operand := b.Expressions[0][0]
			if operand.Mode != c.mode || operand.Value != c.value || operand.Field != c.field {
				t.Errorf("%q parsed wrong: %#v", c.operand, operand)
			}
			if operand.Placeholder != "" {
				t.Errorf("%q left placeholder %q", c.operand, operand.Placeholder)
			}
		})
	}
}

// TestConditionalParse tests the conditional chain layout on a test
// command.
func TestConditionalParse(t *testing.T) {
	memory, _ := testutils.CompileString(t, "test 03 gt 02 and 01 eq 01 then [take-no-jump] otherwise [take-no-jump]", 16)
	b, _ := memory.At(0)
	if b.Code != clesh.OpTest {
		t.Fatalf("wrong opcode: %d", b.Code)
	}
	if len(b.Conditional) != 3 {
		t.Fatalf("conditional wrong length: %d", len(b.Conditional))
	}
	first := b.Conditional[0]
	if first.Left != 0 || first.Test != clesh.TestGreater || first.Right != 1 {
		t.Errorf("first condition wrong: %#v", first)
	}
	if b.Conditional[1].Logic != clesh.LogicAnd {
		t.Errorf("logic entry wrong: %#v", b.Conditional[1])
	}
	second := b.Conditional[2]
	if second.Left != 2 || second.Test != clesh.TestEquals || second.Right != 3 {
		t.Errorf("second condition wrong: %#v", second)
	}
	// Conditions claimed expressions 0-3; the branch targets follow.
	if len(b.Expressions) != 6 {
		t.Errorf("want 6 expressions, have %d", len(b.Expressions))
	}
}

// TestPlaceholderResolution tests that forward label references resolve
// after parsing and leave no placeholder behind.
func TestPlaceholderResolution(t *testing.T) {
	source := `
call [sub]
stop
label sub
return
`
	memory, compiler := testutils.CompileString(t, source, 16)
	if compiler.Symbols["[sub]"] != 2 {
		t.Fatalf("label sub wrong; want 2, have %d", compiler.Symbols["[sub]"])
	}
	b, _ := memory.At(0)
	operand := b.Expressions[0][0]
	if operand.Placeholder != "" {
		t.Errorf("placeholder not resolved: %q", operand.Placeholder)
	}
	if operand.Value != clesh.NumberValue(2) {
		t.Errorf("resolved value wrong: %#v", operand.Value)
	}
}

// TestRemarkSkipped tests that remark tokens never reach the statement
// parser.
func TestRemarkSkipped(t *testing.T) {
	source := `
{remark} this text would not parse 1 2 3 {end}
stop
`
	memory, compiler := testutils.CompileString(t, source, 16)
	if compiler.Pointer() != 1 {
		t.Fatalf("wrong pointer; want 1, have %d", compiler.Pointer())
	}
	b, _ := memory.At(0)
	if b.Code != clesh.OpStop {
		t.Errorf("want stop at 0, have opcode %d", b.Code)
	}
}

// TestImport tests that an imported file's tokens inline at the import
// point, and that malformed import lines fail.
func TestImport(t *testing.T) {
	dir := t.TempDir()
	lib := "define limit as 3\n"
	if err := os.WriteFile(filepath.Join(dir, "lib.clsh"), []byte(lib), 0o666); err != nil {
		t.Fatalf("could not write lib: %v", err)
	}
	main := "import lib\npush [limit]\nstop\n"
	name := filepath.Join(dir, "program")
	if err := os.WriteFile(name+".clsh", []byte(main), 0o666); err != nil {
		t.Fatalf("could not write program: %v", err)
	}
	memory := clesh.NewMemory(16)
	compiler, err := clesh.Compile(name, memory)
	if err != nil {
		t.Fatalf("could not compile: %v", err)
	}
	if compiler.Symbols["[limit]"] != 3 {
		t.Errorf("imported define missing; symbols: %v", compiler.Symbols)
	}
	b, _ := memory.At(0)
	if b.Expressions[0][0].Value != clesh.NumberValue(3) {
		t.Errorf("imported symbol did not resolve: %#v", b.Expressions[0][0])
	}

	bad := "import lib extra\n"
	if err := os.WriteFile(name+".clsh", []byte(bad), 0o666); err != nil {
		t.Fatalf("could not rewrite program: %v", err)
	}
	_, err = clesh.Compile(name, clesh.NewMemory(16))
	var pe *clesh.ParseError
	if !errors.As(err, &pe) || pe.Msg != "Invalid import statement." {
		t.Errorf("want invalid import error, have %v", err)
	}
}

// TestCompileErrors tests the compile failure diagnostics.
func TestCompileErrors(t *testing.T) {
	cases := map[string]struct {
		source string
		msg    string
	}{
		"InvalidStatement":  {"bogus", "Invalid statement bogus."},
		"MissingKeyword":    {"store 01 02", "Missing keyword at."},
		"InvalidOperand":    {"push x", "Invalid operand token."},
		"InvalidTest":       {"test 01 almost 02 then [take-no-jump] otherwise [take-no-jump]", "Invalid test."},
		"NumericField":      {"push 12->hp", "Cannot have object notation with numeric value."},
		"InvalidAddress":    {"push #1->hp->mp", "Invalid address 1->hp->mp."},
		"BadProperty":       {"object hp end", "Invalid property format."},
		"BadDefine":         {"define x as y", "Invalid number y."},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "program")
			if err := os.WriteFile(path+".clsh", []byte(c.source), 0o666); err != nil {
				t.Fatalf("could not write source: %v", err)
			}
			_, err := clesh.Compile(path, clesh.NewMemory(16))
			var pe *clesh.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("%q should fail with a ParseError, have %v", c.source, err)
			}
			if pe.Msg != c.msg {
				t.Errorf("wrong message; want %q, have %q", c.msg, pe.Msg)
			}
			if pe.Token.Source == "" && pe.Token.Text == "" {
				t.Errorf("diagnostic lost its token: %#v", pe)
			}
		})
	}
}

// TestUnresolvedPlaceholder tests the fatal error for a symbol that never
// gets defined.
func TestUnresolvedPlaceholder(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "program")
	if err := os.WriteFile(name+".clsh", []byte("call [nowhere]\n"), 0o666); err != nil {
		t.Fatalf("could not write source: %v", err)
	}
	_, err := clesh.Compile(name, clesh.NewMemory(16))
	if err == nil || !strings.Contains(err.Error(), "Could not find placeholder [nowhere].") {
		t.Errorf("want unresolved placeholder error, have %v", err)
	}
}

// TestExpressionShape tests the structural invariants of compiled
// expressions: non-empty, odd length, operators at odd positions.
func TestExpressionShape(t *testing.T) {
	source := "store 01 + 02 * 03 - 04 at 10\nstop\n"
	memory, compiler := testutils.CompileString(t, source, 16)
	for address := 0; address < compiler.Pointer(); address++ {
		b, _ := memory.At(address)
		for i, expression := range b.Expressions {
			if len(expression) == 0 || len(expression)%2 == 0 {
				t.Errorf("block %d expression %d has bad length %d", address, i, len(expression))
			}
			for j := 0; j < len(expression); j += 2 {
				if expression[j].Placeholder != "" {
					t.Errorf("block %d expression %d operand %d keeps placeholder %q", address, i, j, expression[j].Placeholder)
				}
			}
		}
	}
}

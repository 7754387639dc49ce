package clesh

// An Opcode selects the command a block executes when the instruction
// pointer reaches it.
type Opcode int

// Opcodes. The zero opcode is a no-op, so freshly cleared memory executes as
// an empty program.
const (
	OpNone Opcode = iota
	OpStore
	OpSet
	OpTest
	OpCall
	OpReturn
	OpStop
	OpOutput
	OpDraw
	OpRefresh
	OpSound
	OpMusic
	OpSilence
	OpInput
	OpTimeout
	OpColor
	OpLoad
	OpSave
	OpPush
	OpPop
	OpRepeat
	OpGetObject
	OpGetList
)

// An Operator combines an expression accumulator with the next operand.
type Operator int

// Expression operators, strictly left to right with no precedence.
const (
	OperAdd Operator = iota
	OperSub
	OperMul
	OperDiv
	OperRem
	OperRand
	OperCos
	OperSin
	OperCat
)

// An AddrMode selects how an operand produces its value.
type AddrMode int

// Addressing modes.
const (
	// ModeNumber yields the operand's own number.
	ModeNumber AddrMode = iota
	// ModeString yields the operand's own string.
	ModeString
	// ModeImmediate dereferences memory at the operand's number.
	ModeImmediate
	// ModePointer dereferences twice: memory at the operand's number holds
	// the address of the block to read.
	ModePointer
)

// A Term is one element of an Expression. Even positions are operands and
// use Mode, Value, Field, and Placeholder; odd positions are operators and
// use only Oper.
type Term struct {
	Oper        Operator
	Mode        AddrMode
	Value       Value
	Field       string
	Placeholder string
}

// An Expression is an operand followed by zero or more operator/operand
// pairs. Well-formed expressions are non-empty with odd length.
type Expression []Term

// A Test compares two expression results within a condition.
type Test int

// Condition tests.
const (
	TestEquals Test = iota
	TestNot
	TestLess
	TestGreater
	TestLessOrEqual
	TestGreaterOrEqual
)

// A Logic joins two conditions in a conditional chain.
type Logic int

// Logic codes. And multiplies condition results, Or adds them.
const (
	LogicAnd Logic = iota
	LogicOr
)

// A CondLogic is one element of a conditional chain. Even positions are
// conditions and use Left, Test, and Right (indices into the command's
// expressions plus a test code); odd positions are logic entries and use
// only Logic.
type CondLogic struct {
	Logic Logic
	Left  int
	Test  Test
	Right int
}

// A Block is the universal memory cell. Each address carries a scalar value,
// an opcode with its parsed operands, and a set of named fields, all at
// once; the same block can be executed as code and mutated as data.
type Block struct {
	Code        Opcode
	Expressions []Expression
	Conditional []CondLogic
	Fields      map[string]Value
	Value       Value
}

// Clear resets the block's value, opcode, and fields. Expressions and the
// conditional are left alone; a cleared command keeps its operands.
func (b *Block) Clear() {
	b.Value = Value{}
	b.Code = OpNone
	b.Fields = nil
}

// SetField assigns a named field, allocating the field map on first use.
func (b *Block) SetField(name string, v Value) {
	if b.Fields == nil {
		b.Fields = make(map[string]Value)
	}
	b.Fields[name] = v
}

// Field reads a named field.
func (b *Block) Field(name string) (Value, bool) {
	v, ok := b.Fields[name]
	return v, ok
}

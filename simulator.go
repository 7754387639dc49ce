package clesh

import (
	"fmt"
	"math"
	"time"
)

// TakeNoJump is the jump-target sentinel meaning "do not jump". The symbol
// [take-no-jump] resolves to it.
const TakeNoJump = -1

// pi matches the numerics C-Lesh programs were written against. Sharpening
// it changes observable trig results.
const pi = 3.14

// Status is the simulator's execution state.
type Status int

// Simulator states.
const (
	Idle Status = iota
	Running
	Done
)

// A Simulator interprets the blocks in memory, one command per step. It owns
// the instruction pointer and the call/value stack and dispatches I/O
// commands to an IOControl backend.
type Simulator struct {
	memory  *Memory
	io      IOControl
	pointer int
	stack   []int
	status  Status
}

// NewSimulator creates a simulator that will start executing at the program
// entry address. The simulator is Idle until the first Run.
func NewSimulator(memory *Memory, io IOControl, program int) *Simulator {
	return &Simulator{memory: memory, io: io, pointer: program}
}

// Status returns the simulator's execution state.
func (s *Simulator) Status() Status {
	return s.status
}

// Pointer returns the address of the next block to execute.
func (s *Simulator) Pointer() int {
	return s.pointer
}

// Stack returns a copy of the call/value stack, bottom first.
func (s *Simulator) Stack() []int {
	return append([]int(nil), s.stack...)
}

// Run executes commands for one slice. An Idle simulator starts running;
// a Done simulator returns immediately. The timeout is advisory: it is
// checked before each fetch, and a fetched command always completes, so a
// slice only ever ends on a command boundary. Runtime failures stop the
// slice and surface as an error; the status is left Running so the host
// decides whether to re-enter.
func (s *Simulator) Run(timeout time.Duration) error {
	if s.status == Idle {
		s.status = Running
	}
	start := time.Now()
	for s.status == Running {
		if time.Since(start) >= timeout {
			return nil
		}
		command, err := s.memory.At(s.pointer)
		if err != nil {
			return err
		}
		s.pointer++ // Jump commands overwrite the advanced pointer.
		if err := s.process(command); err != nil {
			return err
		}
	}
	return nil
}

// execError builds a runtime failure for the command being executed.
func (s *Simulator) execError(command *Block, format string, args ...interface{}) error {
	return &ExecError{Msg: fmt.Sprintf(format, args...), Code: command.Code, Pointer: s.pointer}
}

// fail wraps an evaluation error with the executing command's opcode and
// pointer unless it already carries them.
func (s *Simulator) fail(command *Block, err error) error {
	if _, ok := err.(*ExecError); ok {
		return err
	}
	return &ExecError{Msg: err.Error(), Code: command.Code, Pointer: s.pointer}
}

// process dispatches one command on its opcode.
func (s *Simulator) process(command *Block) error {
	switch command.Code {
	case OpNone:
		// Do nothing.
	case OpStore:
		result, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		pointer, err := s.evalExpression(command, 1)
		if err != nil {
			return err
		}
		block, err := s.memory.At(pointer.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block.Value = result
	case OpSet:
		pointer, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		field, err := s.evalExpression(command, 1)
		if err != nil {
			return err
		}
		value, err := s.evalExpression(command, 2)
		if err != nil {
			return err
		}
		block, err := s.memory.At(pointer.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block.SetField(field.Str, value)
	case OpTest:
		result, err := s.evalConditional(command)
		if err != nil {
			return err
		}
		passed, err := s.evalExpression(command, len(command.Expressions)-2)
		if err != nil {
			return err
		}
		failed, err := s.evalExpression(command, len(command.Expressions)-1)
		if err != nil {
			return err
		}
		if result != 0 {
			if passed.Num != TakeNoJump {
				s.pointer = passed.Num
			}
		} else {
			if failed.Num != TakeNoJump {
				s.pointer = failed.Num
			}
		}
	case OpCall:
		jump, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		s.stack = append(s.stack, s.pointer) // Next command's address.
		s.pointer = jump.Num
	case OpReturn:
		address, err := s.pop(command)
		if err != nil {
			return err
		}
		s.pointer = address
	case OpStop:
		s.status = Done
	case OpOutput:
		args, err := s.evalExpressions(command, 0, 6)
		if err != nil {
			return err
		}
		s.io.OutputText(args[0].Str, args[1].Num, args[2].Num, args[3].Num, args[4].Num, args[5].Num)
	case OpDraw:
		args, err := s.evalExpressions(command, 0, 8)
		if err != nil {
			return err
		}
		s.io.DrawImage(args[0].Str, args[1].Num, args[2].Num, args[3].Num, args[4].Num, args[5].Num, args[6].Num, args[7].Num)
	case OpRefresh:
		s.io.Refresh()
	case OpSound:
		name, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		s.io.PlaySound(name.Str)
	case OpMusic:
		name, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		s.io.PlayMusic(name.Str)
	case OpSilence:
		s.io.Silence()
	case OpInput:
		pointer, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		block, err := s.memory.At(pointer.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block.Value = NumberValue(s.io.ReadSignal().Code)
	case OpTimeout:
		timeout, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		s.io.Timeout(timeout.Num)
	case OpColor:
		args, err := s.evalExpressions(command, 0, 3)
		if err != nil {
			return err
		}
		s.io.Color(args[0].Num, args[1].Num, args[2].Num)
	case OpLoad:
		args, err := s.evalExpressions(command, 0, 3)
		if err != nil {
			return err
		}
		// args[2] is the count expression; the loader counts object groups
		// itself and the result lands in the first loaded block's value.
		name, address := args[0], args[1]
		count, err := LoadObjects(s.memory, name.Str, address.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block, err := s.memory.At(address.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block.Value = NumberValue(count)
	case OpSave:
		args, err := s.evalExpressions(command, 0, 3)
		if err != nil {
			return err
		}
		source, name, count := args[0], args[1], args[2]
		if err := SaveObjects(s.memory, name.Str, source.Num, count.Num); err != nil {
			return s.fail(command, err)
		}
	case OpPush:
		result, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		s.stack = append(s.stack, result.Num)
	case OpPop:
		pointer, err := s.evalExpression(command, 0)
		if err != nil {
			return err
		}
		value, err := s.pop(command)
		if err != nil {
			return err
		}
		block, err := s.memory.At(pointer.Num)
		if err != nil {
			return s.fail(command, err)
		}
		block.Value = NumberValue(value)
	case OpRepeat:
		args, err := s.evalExpressions(command, 0, 4)
		if err != nil {
			return err
		}
		lower, upper, pointer, jump := args[0], args[1], args[2], args[3]
		counter, err := s.memory.At(pointer.Num)
		if err != nil {
			return s.fail(command, err)
		}
		n := counter.Value.Num
		if n < lower.Num || n > upper.Num {
			// Out of bounds: reset the counter and start the loop body.
			counter.Value = NumberValue(lower.Num)
			s.pointer = jump.Num
		} else {
			n++
			counter.Value = NumberValue(n)
			if n <= upper.Num {
				s.pointer = jump.Num
			}
		}
	case OpGetObject:
		if err := s.getObject(command); err != nil {
			return err
		}
	case OpGetList:
		if err := s.getList(command); err != nil {
			return err
		}
	default:
		return s.execError(command, "Invalid command.")
	}
	return nil
}

// pop removes and returns the top of the stack.
func (s *Simulator) pop(command *Block) (int, error) {
	if len(s.stack) == 0 {
		return 0, s.execError(command, "Stack is empty.")
	}
	value := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return value, nil
}

// evalOperand produces an operand's value per its addressing mode.
func (s *Simulator) evalOperand(command *Block, operand Term) (Value, error) {
	switch operand.Mode {
	case ModeNumber:
		return NumberValue(operand.Value.Num), nil
	case ModeString:
		return StringValue(operand.Value.Str), nil
	case ModeImmediate:
		block, err := s.memory.At(operand.Value.Num)
		if err != nil {
			return Value{}, s.fail(command, err)
		}
		return s.readBlock(command, block, operand.Field)
	case ModePointer:
		pointer, err := s.memory.At(operand.Value.Num)
		if err != nil {
			return Value{}, s.fail(command, err)
		}
		block, err := s.memory.At(pointer.Value.Num)
		if err != nil {
			return Value{}, s.fail(command, err)
		}
		return s.readBlock(command, block, operand.Field)
	}
	return Value{}, s.execError(command, "Invalid address mode %d.", operand.Mode)
}

// readBlock reads a block's named field, or its value when no field is
// given.
func (s *Simulator) readBlock(command *Block, block *Block, field string) (Value, error) {
	if field == "" {
		return block.Value, nil
	}
	value, ok := block.Field(field)
	if !ok {
		return Value{}, s.execError(command, "Could not find field %s.", field)
	}
	return value, nil
}

// evalExpression evaluates the command's expression at the given index,
// folding operator/operand pairs into the accumulator left to right.
func (s *Simulator) evalExpression(command *Block, index int) (Value, error) {
	if index < 0 || index >= len(command.Expressions) {
		return Value{}, s.execError(command, "Expression does not exist at index %d.", index)
	}
	expression := command.Expressions[index]
	if len(expression) == 0 {
		return Value{}, s.execError(command, "Empty expression.")
	}
	value, err := s.evalOperand(command, expression[0])
	if err != nil {
		return Value{}, err
	}
	for i := 1; i < len(expression); i += 2 {
		oper := expression[i]
		operand, err := s.evalOperand(command, expression[i+1])
		if err != nil {
			return Value{}, err
		}
		switch oper.Oper {
		case OperAdd:
			value = NumberValue(value.Num + operand.Num)
		case OperSub:
			value = NumberValue(value.Num - operand.Num)
		case OperMul:
			value = NumberValue(value.Num * operand.Num)
		case OperDiv:
			// Dividing by zero keeps the left operand.
			if operand.Num == 0 {
				value = NumberValue(value.Num)
			} else {
				value = NumberValue(value.Num / operand.Num)
			}
		case OperRem:
			if operand.Num == 0 {
				value = NumberValue(value.Num)
			} else {
				value = NumberValue(value.Num % operand.Num)
			}
		case OperRand:
			value = NumberValue(s.io.RandomNumber(value.Num, operand.Num))
		case OperCos:
			value = NumberValue(int(float64(value.Num) * math.Cos(float64(operand.Num)*pi/180)))
		case OperSin:
			value = NumberValue(int(float64(value.Num) * math.Sin(float64(operand.Num)*pi/180)))
		case OperCat:
			value = StringValue(value.Text() + operand.Text())
		default:
			return Value{}, s.execError(command, "Invalid operator %d.", oper.Oper)
		}
	}
	return value, nil
}

// evalExpressions evaluates a run of consecutive expressions.
func (s *Simulator) evalExpressions(command *Block, from, n int) ([]Value, error) {
	values := make([]Value, n)
	for i := 0; i < n; i++ {
		value, err := s.evalExpression(command, from+i)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// evalCondition applies a condition's test to its two expression results.
// Equality tests follow the left side's type; ordering tests are numeric.
func (s *Simulator) evalCondition(command *Block, condition CondLogic) (bool, error) {
	left, err := s.evalExpression(command, condition.Left)
	if err != nil {
		return false, err
	}
	right, err := s.evalExpression(command, condition.Right)
	if err != nil {
		return false, err
	}
	switch condition.Test {
	case TestEquals:
		if left.Kind == KindString {
			return left.Str == right.Str, nil
		}
		return left.Num == right.Num, nil
	case TestNot:
		if left.Kind == KindString {
			return left.Str != right.Str, nil
		}
		return left.Num != right.Num, nil
	case TestLess:
		return left.Num < right.Num, nil
	case TestGreater:
		return left.Num > right.Num, nil
	case TestLessOrEqual:
		return left.Num <= right.Num, nil
	case TestGreaterOrEqual:
		return left.Num >= right.Num, nil
	}
	return false, s.execError(command, "Invalid test %d.", condition.Test)
}

// evalConditional folds the command's conditional chain into an integer.
// And multiplies and Or adds the 0/1 condition results, left to right with
// no short circuit, so chained ors can yield values above 1; any non-zero
// result is truthy.
func (s *Simulator) evalConditional(command *Block) (int, error) {
	if len(command.Conditional) == 0 {
		return 0, s.execError(command, "No conditional present.")
	}
	first, err := s.evalCondition(command, command.Conditional[0])
	if err != nil {
		return 0, err
	}
	result := boolToInt(first)
	for i := 1; i < len(command.Conditional); i += 2 {
		logic := command.Conditional[i]
		passed, err := s.evalCondition(command, command.Conditional[i+1])
		if err != nil {
			return 0, err
		}
		switch logic.Logic {
		case LogicAnd:
			result *= boolToInt(passed)
		case LogicOr:
			result += boolToInt(passed)
		default:
			return 0, s.execError(command, "Invalid logic code %d.", logic.Logic)
		}
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

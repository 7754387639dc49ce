package clesh

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// A Compiler translates C-Lesh source files into blocks in memory. It keeps
// the token queue and the symbol table; both are consumed at compile time
// and only the resolved symbol table remains useful afterward.
type Compiler struct {
	// Symbols maps bracketed names like "[player]" to addresses and
	// constants. It is pre-seeded before statement parsing and extended by
	// define, map, and label statements.
	Symbols map[string]int

	memory  *Memory
	pointer int
	tokens  []Token
	pos     int
	baseDir string
}

// Compile reads source+".clsh", compiles it into mem, and returns the
// compiler with its resolved symbol table. Imports named by the source are
// resolved relative to the source file's directory.
func Compile(source string, mem *Memory) (*Compiler, error) {
	c := &Compiler{
		Symbols: make(map[string]int),
		memory:  mem,
		baseDir: filepath.Dir(source),
	}
	if err := c.parseTokens(filepath.Base(source)); err != nil {
		return nil, err
	}
	c.preprocess()
	if err := c.parseStatements(); err != nil {
		return nil, err
	}
	if err := c.replacePlaceholders(); err != nil {
		return nil, err
	}
	return c, nil
}

// Pointer returns the compiler's final write pointer: the address one past
// the last emitted block or reserved data cell.
func (c *Compiler) Pointer() int {
	return c.pointer
}

// preprocess seeds the symbol table with the language's built-in names.
func (c *Compiler) preprocess() {
	c.Symbols["[none]"] = 0
	c.Symbols["[take-no-jump]"] = TakeNoJump
	c.Symbols["[true]"] = 1
	c.Symbols["[false]"] = 0
}

// parseTokens tokenizes one source file onto the token queue, recursively
// inlining imported files where an import line appears.
func (c *Compiler) parseTokens(source string) error {
	lines, err := readSource(filepath.Join(c.baseDir, source+".clsh"))
	if err != nil {
		return fmt.Errorf("Could not read source %s: %w", source, err)
	}
	for lineNo, line := range lines {
		toks := SplitLine(line)
		if strings.Contains(line, "import") {
			if len(toks) != 2 {
				return &ParseError{Msg: "Invalid import statement.", Token: Token{Text: line, Source: source, Line: lineNo}}
			}
			if err := c.parseTokens(toks[1]); err != nil {
				return err
			}
			continue
		}
		for _, tok := range toks {
			c.tokens = append(c.tokens, Token{Text: tok, Source: source, Line: lineNo})
		}
	}
	return nil
}

// parseToken removes and returns the next token from the queue.
func (c *Compiler) parseToken() (Token, error) {
	if c.pos >= len(c.tokens) {
		return Token{}, fmt.Errorf("No more tokens to parse!")
	}
	tok := c.tokens[c.pos]
	c.pos++
	return tok, nil
}

// peekToken returns the next token without removing it. At the end of the
// queue it returns a zero token.
func (c *Compiler) peekToken() Token {
	if c.pos >= len(c.tokens) {
		return Token{}
	}
	return c.tokens[c.pos]
}

// parseKeyword consumes the next token and checks that it matches.
func (c *Compiler) parseKeyword(keyword string) error {
	tok, err := c.parseToken()
	if err != nil {
		return err
	}
	if tok.Text != keyword {
		return &ParseError{Msg: "Missing keyword " + keyword + ".", Token: tok}
	}
	return nil
}

// emit claims the block at the write pointer and advances the pointer.
func (c *Compiler) emit() (*Block, error) {
	b, err := c.memory.At(c.pointer)
	if err != nil {
		return nil, err
	}
	c.pointer++
	return b, nil
}

// parseExpression parses Operand (Operator Operand)* onto the command and
// returns the new expression's index. Statement parsers consume expressions
// positionally, so the index is usually ignored.
func (c *Compiler) parseExpression(command *Block) (int, error) {
	var expression Expression
	operand, err := c.parseOperand()
	if err != nil {
		return 0, err
	}
	expression = append(expression, operand)
	for c.isOperator() {
		oper, err := c.parseOperator()
		if err != nil {
			return 0, err
		}
		operand, err := c.parseOperand()
		if err != nil {
			return 0, err
		}
		expression = append(expression, oper, operand)
	}
	command.Expressions = append(command.Expressions, expression)
	return len(command.Expressions) - 1, nil
}

// parseOperand parses a single operand token. The leading character selects
// the addressing mode: '#' immediate, '@' pointer, '$' literal string, and
// anything else a literal number or symbol placeholder.
func (c *Compiler) parseOperand() (Term, error) {
	tok, err := c.parseToken()
	if err != nil {
		return Term{}, err
	}
	if len(tok.Text) < 2 {
		return Term{}, &ParseError{Msg: "Invalid operand token.", Token: tok}
	}
	var operand Term
	address := tok.Text[1:]
	switch tok.Text[0] {
	case '#':
		operand.Mode = ModeImmediate
		err = c.parseAddress(address, &operand, tok)
	case '@':
		operand.Mode = ModePointer
		err = c.parseAddress(address, &operand, tok)
	case '$':
		operand.Mode = ModeString
		operand.Value = StringValue(address) // No placeholder in strings.
	default:
		operand.Mode = ModeNumber
		err = c.parseAddress(tok.Text, &operand, tok)
	}
	if err != nil {
		return Term{}, err
	}
	return operand, nil
}

// parseAddress fills in an operand from its address text. The text may carry
// an object field suffix ("addr->field") and may name a symbol, which is
// stored as a placeholder for the resolution pass.
func (c *Compiler) parseAddress(address string, operand *Term, tok Token) error {
	parts := strings.Split(address, "->")
	var addr string
	switch len(parts) {
	case 1:
		addr = parts[0]
	case 2:
		addr = parts[0]
		operand.Field = parts[1]
		if operand.Mode == ModeNumber {
			return &ParseError{Msg: "Cannot have object notation with numeric value.", Token: tok}
		}
	default:
		return &ParseError{Msg: "Invalid address " + address + ".", Token: tok}
	}
	if n, err := strconv.Atoi(addr); err == nil {
		operand.Value = NumberValue(n)
	} else {
		operand.Placeholder = addr
	}
	return nil
}

// operators maps operator tokens to their codes.
var operators = map[string]Operator{
	"+":    OperAdd,
	"-":    OperSub,
	"*":    OperMul,
	"/":    OperDiv,
	"rem":  OperRem,
	"rand": OperRand,
	"cos":  OperCos,
	"sin":  OperSin,
	"cat":  OperCat,
}

// parseOperator parses an operator token into an operator term.
func (c *Compiler) parseOperator() (Term, error) {
	tok, err := c.parseToken()
	if err != nil {
		return Term{}, err
	}
	oper, ok := operators[tok.Text]
	if !ok {
		return Term{}, &ParseError{Msg: "Invalid operator.", Token: tok}
	}
	return Term{Oper: oper}, nil
}

// isOperator reports whether the next token is an operator, without
// removing it.
func (c *Compiler) isOperator() bool {
	_, ok := operators[c.peekToken().Text]
	return ok
}

// tests maps test tokens to their codes.
var tests = map[string]Test{
	"eq":  TestEquals,
	"not": TestNot,
	"lt":  TestLess,
	"gt":  TestGreater,
	"le":  TestLessOrEqual,
	"ge":  TestGreaterOrEqual,
}

// parseConditional parses Cond (Logic Cond)* onto the command.
func (c *Compiler) parseConditional(command *Block) error {
	condition, err := c.parseCondition(command)
	if err != nil {
		return err
	}
	command.Conditional = append(command.Conditional, condition)
	for c.isLogic() {
		logic, err := c.parseLogic()
		if err != nil {
			return err
		}
		condition, err := c.parseCondition(command)
		if err != nil {
			return err
		}
		command.Conditional = append(command.Conditional, logic, condition)
	}
	return nil
}

// parseCondition parses "expression test expression" and records the two
// expression indices with the test code.
func (c *Compiler) parseCondition(command *Block) (CondLogic, error) {
	var condition CondLogic
	left, err := c.parseExpression(command)
	if err != nil {
		return condition, err
	}
	condition.Left = left
	tok, err := c.parseToken()
	if err != nil {
		return condition, err
	}
	test, ok := tests[tok.Text]
	if !ok {
		return condition, &ParseError{Msg: "Invalid test.", Token: tok}
	}
	condition.Test = test
	right, err := c.parseExpression(command)
	if err != nil {
		return condition, err
	}
	condition.Right = right
	return condition, nil
}

// parseLogic parses an "and" or "or" token into a logic entry.
func (c *Compiler) parseLogic() (CondLogic, error) {
	tok, err := c.parseToken()
	if err != nil {
		return CondLogic{}, err
	}
	switch tok.Text {
	case "and":
		return CondLogic{Logic: LogicAnd}, nil
	case "or":
		return CondLogic{Logic: LogicOr}, nil
	}
	return CondLogic{}, &ParseError{Msg: "Invalid logic token.", Token: tok}
}

// isLogic reports whether the next token is a logic token, without
// removing it.
func (c *Compiler) isLogic() bool {
	tok := c.peekToken().Text
	return tok == "and" || tok == "or"
}

// parseNumber parses a token's text as an integer.
func (c *Compiler) parseNumber(tok Token) (int, error) {
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return 0, &ParseError{Msg: "Invalid number " + tok.Text + ".", Token: tok}
	}
	return n, nil
}

// parseStatements processes the token queue in order. Declarative statements
// update the symbol table or reserve data cells; command statements each
// emit one block and advance the write pointer.
func (c *Compiler) parseStatements() error {
	for c.pos < len(c.tokens) {
		tok, err := c.parseToken()
		if err != nil {
			return err
		}
		switch tok.Text {
		case "define":
			name, err := c.parseToken()
			if err != nil {
				return err
			}
			if err := c.parseKeyword("as"); err != nil {
				return err
			}
			value, err := c.parseToken()
			if err != nil {
				return err
			}
			n, err := c.parseNumber(value)
			if err != nil {
				return err
			}
			c.Symbols["["+name.Text+"]"] = n
		case "map":
			item, err := c.parseToken()
			if err != nil {
				return err
			}
			index := 0
			for item.Text != "end" {
				c.Symbols["["+item.Text+"]"] = index
				index++
				if item, err = c.parseToken(); err != nil {
					return err
				}
			}
		case "label":
			name, err := c.parseToken()
			if err != nil {
				return err
			}
			c.Symbols["["+name.Text+"]"] = c.pointer
		case "number":
			number, err := c.parseToken()
			if err != nil {
				return err
			}
			n, err := c.parseNumber(number)
			if err != nil {
				return err
			}
			block, err := c.emit()
			if err != nil {
				return err
			}
			block.Value = NumberValue(n)
		case "list":
			count, err := c.parseToken()
			if err != nil {
				return err
			}
			n, err := c.parseNumber(count)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				block, err := c.emit()
				if err != nil {
					return err
				}
				block.Value = NumberValue(0)
			}
		case "object":
			block, err := c.emit()
			if err != nil {
				return err
			}
			property, err := c.parseToken()
			if err != nil {
				return err
			}
			for property.Text != "end" {
				pair := strings.Split(property.Text, "=")
				if len(pair) != 2 {
					return &ParseError{Msg: "Invalid property format.", Token: property}
				}
				block.SetField(pair[0], DetectValue(pair[1]))
				if property, err = c.parseToken(); err != nil {
					return err
				}
			}
		case "{remark}":
			remark, err := c.parseToken()
			if err != nil {
				return err
			}
			for remark.Text != "{end}" {
				if remark, err = c.parseToken(); err != nil {
					return err
				}
			}
		default:
			if err := c.parseCommand(tok); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseCommand parses one command statement, emitting its block with the
// opcode and operand expressions the simulator will execute.
func (c *Compiler) parseCommand(tok Token) error {
	type step struct {
		keyword string // consume a keyword when set
		expr    bool   // parse an expression when true
		cond    bool   // parse a conditional when true
	}
	kw := func(s string) step { return step{keyword: s} }
	expr := step{expr: true}
	cond := step{cond: true}
	var code Opcode
	var steps []step
	switch tok.Text {
	case "store":
		code, steps = OpStore, []step{expr, kw("at"), expr}
	case "set":
		code, steps = OpSet, []step{expr, expr, kw("to"), expr}
	case "test":
		code, steps = OpTest, []step{cond, kw("then"), expr, kw("otherwise"), expr}
	case "call":
		code, steps = OpCall, []step{expr}
	case "return":
		code = OpReturn
	case "stop":
		code = OpStop
	case "output":
		code, steps = OpOutput, []step{expr, kw("at"), expr, expr, kw("color"), expr, expr, expr}
	case "draw":
		code, steps = OpDraw, []step{expr, kw("at"), expr, expr, expr, expr, kw("angle"), expr, kw("flip"), expr, expr}
	case "refresh":
		code = OpRefresh
	case "sound":
		code, steps = OpSound, []step{expr}
	case "music":
		code, steps = OpMusic, []step{expr}
	case "silence":
		code = OpSilence
	case "input":
		code, steps = OpInput, []step{expr}
	case "timeout":
		code, steps = OpTimeout, []step{expr}
	case "color":
		code, steps = OpColor, []step{expr, expr, expr}
	case "load":
		code, steps = OpLoad, []step{expr, kw("at"), expr, kw("count"), expr}
	case "save":
		code, steps = OpSave, []step{expr, kw("to"), expr, kw("count"), expr}
	case "push":
		code, steps = OpPush, []step{expr}
	case "pop":
		code, steps = OpPop, []step{expr}
	case "repeat":
		code, steps = OpRepeat, []step{expr, kw("to"), expr, kw("for"), expr, kw("jump"), expr}
	case "get-object":
		code, steps = OpGetObject, []step{expr, kw("from"), expr, expr}
	case "get-list":
		code, steps = OpGetList, []step{expr, kw("from"), expr, expr}
	default:
		return &ParseError{Msg: "Invalid statement " + tok.Text + ".", Token: tok}
	}
	command, err := c.emit()
	if err != nil {
		return err
	}
	command.Code = code
	for _, s := range steps {
		switch {
		case s.keyword != "":
			err = c.parseKeyword(s.keyword)
		case s.cond:
			err = c.parseConditional(command)
		default:
			_, err = c.parseExpression(command)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// replacePlaceholders resolves every operand placeholder against the symbol
// table. Labels may be referenced before they are declared, so this runs
// only after all files have parsed.
func (c *Compiler) replacePlaceholders() error {
	for address := 0; address < c.memory.Size(); address++ {
		block, err := c.memory.At(address)
		if err != nil {
			return err
		}
		for i := range block.Expressions {
			expression := block.Expressions[i]
			for j := 0; j < len(expression); j += 2 { // Every other term is an operand.
				operand := &expression[j]
				if operand.Placeholder == "" {
					continue
				}
				value, ok := c.Symbols[operand.Placeholder]
				if !ok {
					// Symbol table keys are bracketed; operands may name
					// symbols bare or bracketed.
					value, ok = c.Symbols["["+operand.Placeholder+"]"]
				}
				if !ok {
					return fmt.Errorf("Could not find placeholder %s.", operand.Placeholder)
				}
				operand.Value = NumberValue(value)
				operand.Placeholder = ""
			}
		}
	}
	return nil
}

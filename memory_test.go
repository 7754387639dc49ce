package clesh

import (
	"errors"
	"testing"
)

// TestMemoryBounds tests that out-of-range addresses fail with an
// AddressError and in-range addresses do not.
func TestMemoryBounds(t *testing.T) {
	m := NewMemory(4)
	for _, address := range []int{0, 3} {
		if _, err := m.At(address); err != nil {
			t.Errorf("address %d should be valid: %v", address, err)
		}
	}
	for _, address := range []int{-1, 4, 100} {
		_, err := m.At(address)
		var ae *AddressError
		if !errors.As(err, &ae) {
			t.Errorf("address %d should fail with AddressError, have %v", address, err)
		} else if ae.Address != address {
			t.Errorf("error reports address %d, want %d", ae.Address, address)
		}
	}
	if want := "Invalid memory address 4."; want != (&AddressError{Address: 4}).Error() {
		t.Errorf("wrong error text: %q", (&AddressError{Address: 4}).Error())
	}
}

// TestMemoryClear tests bulk reset.
func TestMemoryClear(t *testing.T) {
	m := NewMemory(2)
	b, _ := m.At(1)
	b.Value = NumberValue(9)
	b.Code = OpStop
	b.SetField("hp", NumberValue(1))
	m.Clear()
	b, _ = m.At(1)
	if b.Value != (Value{}) || b.Code != OpNone || b.Fields != nil {
		t.Errorf("clear left state behind: %#v", b)
	}
}

// TestBlockClearKeepsOperands tests that clearing a block resets its value,
// code, and fields but leaves expressions and the conditional alone.
func TestBlockClearKeepsOperands(t *testing.T) {
	b := Block{
		Code:        OpStore,
		Value:       NumberValue(3),
		Expressions: []Expression{{Term{Mode: ModeNumber, Value: NumberValue(1)}}},
		Conditional: []CondLogic{{Test: TestEquals}},
	}
	b.SetField("hp", NumberValue(10))
	b.Clear()
	if b.Code != OpNone || b.Value != (Value{}) || b.Fields != nil {
		t.Errorf("clear missed value state: %#v", b)
	}
	if len(b.Expressions) != 1 || len(b.Conditional) != 1 {
		t.Errorf("clear should keep operands; have %d expressions, %d conditional entries", len(b.Expressions), len(b.Conditional))
	}
}

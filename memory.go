package clesh

// Memory is the machine's only data store: a fixed-size flat array of blocks
// indexed by non-negative address. The compiler populates it from address 0
// upward and the simulator mutates it freely afterward.
type Memory struct {
	blocks []Block
}

// NewMemory allocates a memory of the given size with every block cleared.
func NewMemory(size int) *Memory {
	return &Memory{blocks: make([]Block, size)}
}

// Size returns the number of addressable blocks.
func (m *Memory) Size() int {
	return len(m.blocks)
}

// At returns the block at the given address. Addresses outside [0, size)
// fail with an AddressError.
func (m *Memory) At(address int) (*Block, error) {
	if address < 0 || address >= len(m.blocks) {
		return nil, &AddressError{Address: address}
	}
	return &m.blocks[address], nil
}

// Clear resets every block to its defaults.
func (m *Memory) Clear() {
	for i := range m.blocks {
		m.blocks[i] = Block{}
	}
}

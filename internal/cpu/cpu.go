// Package cpu implements the 6502 CPU emulation for the NES (no decimal mode,
// no unofficial opcodes).
package cpu

// AddressingMode identifies how an instruction's operand address is formed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask = 0x80
	vFlagMask = 0x40
	uFlagMask = 0x20
	bFlagMask = 0x10
	dFlagMask = 0x08
	iFlagMask = 0x04
	zFlagMask = 0x02
	cFlagMask = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// opcodeInfo is the static per-opcode metadata: addressing mode and base
// cycle cost. It is populated once, at package init, and doubles as a
// disassembly table; instruction semantics live in execute's switch, not
// in this table, per the function-pointer-table-considered-harmful note.
type opcodeInfo struct {
	mode   AddressingMode
	cycles uint8
}

var opcodeTable [256]opcodeInfo

// MemoryInterface is everything the CPU needs from the system bus.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is a MOS 6502 (the NES's 2A03, decimal mode permanently disabled).
type CPU struct {
	A, X, Y, SP uint8
	PC          uint16

	C, Z, I, D, B, V, N bool // U (bit 5) is not stored; it always reads 1.

	memory MemoryInterface
	cycles uint64

	nmiPending bool
	irqPending bool

	// Strict terminal-jam behavior for illegal opcodes. When false
	// (default), illegal opcodes execute as a 2-cycle NOP.
	Strict bool
	Jammed bool
}

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = opcodeInfo{mode: Implied, cycles: 2}
	}
	set := func(op uint8, mode AddressingMode, cycles uint8) {
		opcodeTable[op] = opcodeInfo{mode: mode, cycles: cycles}
	}

	// Load/Store
	set(0xA9, Immediate, 2)
	set(0xA5, ZeroPage, 3)
	set(0xB5, ZeroPageX, 4)
	set(0xAD, Absolute, 4)
	set(0xBD, AbsoluteX, 4)
	set(0xB9, AbsoluteY, 4)
	set(0xA1, IndexedIndirect, 6)
	set(0xB1, IndirectIndexed, 5)

	set(0xA2, Immediate, 2)
	set(0xA6, ZeroPage, 3)
	set(0xB6, ZeroPageY, 4)
	set(0xAE, Absolute, 4)
	set(0xBE, AbsoluteY, 4)

	set(0xA0, Immediate, 2)
	set(0xA4, ZeroPage, 3)
	set(0xB4, ZeroPageX, 4)
	set(0xAC, Absolute, 4)
	set(0xBC, AbsoluteX, 4)

	set(0x85, ZeroPage, 3)
	set(0x95, ZeroPageX, 4)
	set(0x8D, Absolute, 4)
	set(0x9D, AbsoluteX, 5)
	set(0x99, AbsoluteY, 5)
	set(0x81, IndexedIndirect, 6)
	set(0x91, IndirectIndexed, 6)

	set(0x86, ZeroPage, 3)
	set(0x96, ZeroPageY, 4)
	set(0x8E, Absolute, 4)

	set(0x84, ZeroPage, 3)
	set(0x94, ZeroPageX, 4)
	set(0x8C, Absolute, 4)

	// Arithmetic
	set(0x69, Immediate, 2)
	set(0x65, ZeroPage, 3)
	set(0x75, ZeroPageX, 4)
	set(0x6D, Absolute, 4)
	set(0x7D, AbsoluteX, 4)
	set(0x79, AbsoluteY, 4)
	set(0x61, IndexedIndirect, 6)
	set(0x71, IndirectIndexed, 5)

	set(0xE9, Immediate, 2)
	set(0xE5, ZeroPage, 3)
	set(0xF5, ZeroPageX, 4)
	set(0xED, Absolute, 4)
	set(0xFD, AbsoluteX, 4)
	set(0xF9, AbsoluteY, 4)
	set(0xE1, IndexedIndirect, 6)
	set(0xF1, IndirectIndexed, 5)

	// Logical
	set(0x29, Immediate, 2)
	set(0x25, ZeroPage, 3)
	set(0x35, ZeroPageX, 4)
	set(0x2D, Absolute, 4)
	set(0x3D, AbsoluteX, 4)
	set(0x39, AbsoluteY, 4)
	set(0x21, IndexedIndirect, 6)
	set(0x31, IndirectIndexed, 5)

	set(0x09, Immediate, 2)
	set(0x05, ZeroPage, 3)
	set(0x15, ZeroPageX, 4)
	set(0x0D, Absolute, 4)
	set(0x1D, AbsoluteX, 4)
	set(0x19, AbsoluteY, 4)
	set(0x01, IndexedIndirect, 6)
	set(0x11, IndirectIndexed, 5)

	set(0x49, Immediate, 2)
	set(0x45, ZeroPage, 3)
	set(0x55, ZeroPageX, 4)
	set(0x4D, Absolute, 4)
	set(0x5D, AbsoluteX, 4)
	set(0x59, AbsoluteY, 4)
	set(0x41, IndexedIndirect, 6)
	set(0x51, IndirectIndexed, 5)

	// Shifts/rotates
	set(0x0A, Accumulator, 2)
	set(0x06, ZeroPage, 5)
	set(0x16, ZeroPageX, 6)
	set(0x0E, Absolute, 6)
	set(0x1E, AbsoluteX, 7)

	set(0x4A, Accumulator, 2)
	set(0x46, ZeroPage, 5)
	set(0x56, ZeroPageX, 6)
	set(0x4E, Absolute, 6)
	set(0x5E, AbsoluteX, 7)

	set(0x2A, Accumulator, 2)
	set(0x26, ZeroPage, 5)
	set(0x36, ZeroPageX, 6)
	set(0x2E, Absolute, 6)
	set(0x3E, AbsoluteX, 7)

	set(0x6A, Accumulator, 2)
	set(0x66, ZeroPage, 5)
	set(0x76, ZeroPageX, 6)
	set(0x6E, Absolute, 6)
	set(0x7E, AbsoluteX, 7)

	// Compare
	set(0xC9, Immediate, 2)
	set(0xC5, ZeroPage, 3)
	set(0xD5, ZeroPageX, 4)
	set(0xCD, Absolute, 4)
	set(0xDD, AbsoluteX, 4)
	set(0xD9, AbsoluteY, 4)
	set(0xC1, IndexedIndirect, 6)
	set(0xD1, IndirectIndexed, 5)

	set(0xE0, Immediate, 2)
	set(0xE4, ZeroPage, 3)
	set(0xEC, Absolute, 4)

	set(0xC0, Immediate, 2)
	set(0xC4, ZeroPage, 3)
	set(0xCC, Absolute, 4)

	// Inc/Dec
	set(0xE6, ZeroPage, 5)
	set(0xF6, ZeroPageX, 6)
	set(0xEE, Absolute, 6)
	set(0xFE, AbsoluteX, 7)

	set(0xC6, ZeroPage, 5)
	set(0xD6, ZeroPageX, 6)
	set(0xCE, Absolute, 6)
	set(0xDE, AbsoluteX, 7)

	set(0xE8, Implied, 2)
	set(0xCA, Implied, 2)
	set(0xC8, Implied, 2)
	set(0x88, Implied, 2)

	// Register transfers / stack
	set(0xAA, Implied, 2)
	set(0x8A, Implied, 2)
	set(0xA8, Implied, 2)
	set(0x98, Implied, 2)
	set(0xBA, Implied, 2)
	set(0x9A, Implied, 2)
	set(0x48, Implied, 3)
	set(0x68, Implied, 4)
	set(0x08, Implied, 3)
	set(0x28, Implied, 4)

	// Flags
	set(0x18, Implied, 2)
	set(0x38, Implied, 2)
	set(0x58, Implied, 2)
	set(0x78, Implied, 2)
	set(0xB8, Implied, 2)
	set(0xD8, Implied, 2)
	set(0xF8, Implied, 2)

	// Jumps/calls
	set(0x4C, Absolute, 3)
	set(0x6C, Indirect, 5)
	set(0x20, Absolute, 6)
	set(0x60, Implied, 6)
	set(0x40, Implied, 6)

	// Branches (base cycle is the no-branch-taken cost; branch() adds extra)
	for _, op := range []uint8{0x90, 0xB0, 0xD0, 0xF0, 0x10, 0x30, 0x50, 0x70} {
		set(op, Relative, 2)
	}

	// Bit test
	set(0x24, ZeroPage, 3)
	set(0x2C, Absolute, 4)

	// NOP / BRK
	set(0xEA, Implied, 2)
	set(0x00, Implied, 7)

	// Multi-byte NOPs in undefined opcode slots: these are the only
	// illegal opcodes this core recognizes explicitly, purely so PC
	// skips the right number of operand bytes. Per the documented
	// failure semantics every illegal opcode still costs a flat 2
	// cycles, same as an implied NOP, regardless of operand width.
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(op, Implied, 2)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2, 0x04, 0x44, 0x64} {
		set(op, ZeroPage, 2)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(op, ZeroPageX, 2)
	}
	set(0x0C, Absolute, 2)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(op, AbsoluteX, 2)
	}
}

// New creates a CPU wired to the given bus/memory implementation.
func New(memory MemoryInterface) *CPU {
	return &CPU{memory: memory, SP: 0xFD}
}

// Reset establishes the documented 6502 power-up/reset state: PC loaded
// from the reset vector, I set, SP=$FD.
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true
	cpu.Jammed = false

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.cycles += 7
}

// RequestNMI latches a (already edge-detected by the caller) NMI.
func (cpu *CPU) RequestNMI() {
	cpu.nmiPending = true
}

// SetIRQLine mirrors the level of the system's shared IRQ line.
func (cpu *CPU) SetIRQLine(asserted bool) {
	cpu.irqPending = asserted
}

// Cycles returns the cumulative cycle count since construction. Reset
// adds its own 7 cycles and does not clear the count.
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

// Step executes one interrupt-service sequence or one instruction and
// returns the number of CPU cycles it consumed.
func (cpu *CPU) Step() uint64 {
	if cpu.Jammed {
		return 1
	}

	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.serviceInterrupt(nmiVector)
		cpu.cycles += 7
		return 7
	}
	if cpu.irqPending && !cpu.I {
		cpu.irqPending = false
		cpu.serviceInterrupt(irqVector)
		cpu.cycles += 7
		return 7
	}

	opcode := cpu.memory.Read(cpu.PC)
	info := opcodeTable[opcode]

	address, pageCrossed := cpu.getOperandAddress(info.mode)
	extra := cpu.execute(opcode, address, pageCrossed)

	total := uint64(info.cycles) + uint64(extra)
	cpu.cycles += total
	return total
}

func (cpu *CPU) serviceInterrupt(vector uint16) {
	cpu.pushWord(cpu.PC)
	status := cpu.statusByte() &^ uint8(bFlagMask)
	status |= uFlagMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = (high << 8) | low
}

// getOperandAddress resolves the effective address for mode, advancing PC
// past the instruction's operand bytes, and reports whether an indexed
// read crossed a page boundary.
func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.X) & zeroPageMask), false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		cpu.PC += 2
		return uint16((base + cpu.Y) & zeroPageMask), false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		return newPC, (oldPC & pageMask) != (newPC & pageMask)

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return (high << 8) | low, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case Indirect: // JMP only, reproduces the page-boundary bug.
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr
		cpu.PC += 3

		var low, high uint16
		if (ptr & zeroPageMask) == zeroPageMask {
			low = uint16(cpu.memory.Read(ptr))
			high = uint16(cpu.memory.Read(ptr & pageMask))
		} else {
			low = uint16(cpu.memory.Read(ptr))
			high = uint16(cpu.memory.Read(ptr + 1))
		}
		return (high << 8) | low, false

	case IndexedIndirect:
		base := cpu.memory.Read(cpu.PC + 1)
		cpu.PC += 2
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask)))
		return (high << 8) | low, false

	case IndirectIndexed:
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		return address, (base & pageMask) != (address & pageMask)

	default:
		return 0, false
	}
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = (value & nFlagMask) != 0
}

// statusByte packs the flags into the P register layout; bit 5 (U)
// always reads as 1.
func (cpu *CPU) statusByte() uint8 {
	var s uint8
	if cpu.N {
		s |= nFlagMask
	}
	if cpu.V {
		s |= vFlagMask
	}
	s |= uFlagMask
	if cpu.B {
		s |= bFlagMask
	}
	if cpu.D {
		s |= dFlagMask
	}
	if cpu.I {
		s |= iFlagMask
	}
	if cpu.Z {
		s |= zFlagMask
	}
	if cpu.C {
		s |= cFlagMask
	}
	return s
}

// Status returns the packed processor status byte (U always 1).
func (cpu *CPU) Status() uint8 { return cpu.statusByte() }

func (cpu *CPU) setStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.B = status&bFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}

func isReadPenaltyOpcode(opcode uint8) bool {
	switch opcode {
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC,
		0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
		0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51,
		0xDD, 0xD9, 0xD1,
		0xFD, 0xF9, 0xF1:
		return true
	}
	return false
}

// execute dispatches on opcode and returns any extra cycles beyond the
// opcode table's base cost (page-cross penalties, taken branches).
func (cpu *CPU) execute(opcode uint8, address uint16, pageCrossed bool) uint8 {
	var extra uint8
	if pageCrossed {
		switch {
		case opcode == 0x9D || opcode == 0x99 || opcode == 0x91:
			// Indexed stores always pay the page-cross cost.
		case isReadPenaltyOpcode(opcode):
			extra++
		}
	}

	switch opcode {
	// Loads
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.A = cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.X = cpu.memory.Read(address)
		cpu.setZN(cpu.X)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.Y = cpu.memory.Read(address)
		cpu.setZN(cpu.Y)

	// Stores
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.memory.Write(address, cpu.A)
	case 0x86, 0x96, 0x8E:
		cpu.memory.Write(address, cpu.X)
	case 0x84, 0x94, 0x8C:
		cpu.memory.Write(address, cpu.Y)

	// Arithmetic
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(cpu.memory.Read(address))
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.adc(cpu.memory.Read(address) ^ 0xFF)

	// Logical
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.A &= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.A |= cpu.memory.Read(address)
		cpu.setZN(cpu.A)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.A ^= cpu.memory.Read(address)
		cpu.setZN(cpu.A)

	// Shifts/rotates
	case 0x0A:
		cpu.A = cpu.asl(cpu.A)
	case 0x06, 0x16, 0x0E, 0x1E:
		cpu.memory.Write(address, cpu.asl(cpu.memory.Read(address)))
	case 0x4A:
		cpu.A = cpu.lsr(cpu.A)
	case 0x46, 0x56, 0x4E, 0x5E:
		cpu.memory.Write(address, cpu.lsr(cpu.memory.Read(address)))
	case 0x2A:
		cpu.A = cpu.rol(cpu.A)
	case 0x26, 0x36, 0x2E, 0x3E:
		cpu.memory.Write(address, cpu.rol(cpu.memory.Read(address)))
	case 0x6A:
		cpu.A = cpu.ror(cpu.A)
	case 0x66, 0x76, 0x6E, 0x7E:
		cpu.memory.Write(address, cpu.ror(cpu.memory.Read(address)))

	// Compare
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.compare(cpu.A, cpu.memory.Read(address))
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, cpu.memory.Read(address))
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, cpu.memory.Read(address))

	// Inc/Dec memory
	case 0xE6, 0xF6, 0xEE, 0xFE:
		v := cpu.memory.Read(address) + 1
		cpu.memory.Write(address, v)
		cpu.setZN(v)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		v := cpu.memory.Read(address) - 1
		cpu.memory.Write(address, v)
		cpu.setZN(v)

	// Inc/Dec registers
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)

	// Register transfers
	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
	case 0x9A:
		cpu.SP = cpu.X

	// Stack
	case 0x48:
		cpu.push(cpu.A)
	case 0x68:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
	case 0x08:
		cpu.push(cpu.statusByte() | bFlagMask | uFlagMask)
	case 0x28:
		cpu.setStatusByte(cpu.pop())
		cpu.B = false

	// Flags
	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xB8:
		cpu.V = false
	case 0xD8:
		cpu.D = false
	case 0xF8:
		cpu.D = true

	// Jumps/calls
	case 0x4C, 0x6C:
		cpu.PC = address
	case 0x20:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
	case 0x60:
		cpu.PC = cpu.popWord() + 1
	case 0x40:
		cpu.setStatusByte(cpu.pop())
		cpu.B = false
		cpu.PC = cpu.popWord()

	// Branches
	case 0x90:
		extra += cpu.branch(!cpu.C, address, pageCrossed)
	case 0xB0:
		extra += cpu.branch(cpu.C, address, pageCrossed)
	case 0xD0:
		extra += cpu.branch(!cpu.Z, address, pageCrossed)
	case 0xF0:
		extra += cpu.branch(cpu.Z, address, pageCrossed)
	case 0x10:
		extra += cpu.branch(!cpu.N, address, pageCrossed)
	case 0x30:
		extra += cpu.branch(cpu.N, address, pageCrossed)
	case 0x50:
		extra += cpu.branch(!cpu.V, address, pageCrossed)
	case 0x70:
		extra += cpu.branch(cpu.V, address, pageCrossed)

	// Bit test
	case 0x24, 0x2C:
		v := cpu.memory.Read(address)
		cpu.Z = (cpu.A & v) == 0
		cpu.V = v&vFlagMask != 0
		cpu.N = v&nFlagMask != 0

	case 0xEA:
		// NOP

	case 0x00:
		cpu.brk()

	default:
		cpu.illegal(opcode)
	}

	return extra
}

func (cpu *CPU) adc(value uint8) {
	carry := uint16(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(value) + carry
	cpu.V = (cpu.A^uint8(result))&0x80 != 0 && (cpu.A^value)&0x80 == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) asl(v uint8) uint8 {
	cpu.C = v&0x80 != 0
	v <<= 1
	cpu.setZN(v)
	return v
}

func (cpu *CPU) lsr(v uint8) uint8 {
	cpu.C = v&0x01 != 0
	v >>= 1
	cpu.setZN(v)
	return v
}

func (cpu *CPU) rol(v uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 1
	}
	cpu.C = v&0x80 != 0
	v = (v << 1) | carryIn
	cpu.setZN(v)
	return v
}

func (cpu *CPU) ror(v uint8) uint8 {
	carryIn := uint8(0)
	if cpu.C {
		carryIn = 0x80
	}
	cpu.C = v&0x01 != 0
	v = (v >> 1) | carryIn
	cpu.setZN(v)
	return v
}

func (cpu *CPU) compare(reg, value uint8) {
	cpu.C = reg >= value
	result := reg - value
	cpu.setZN(result)
}

func (cpu *CPU) branch(taken bool, address uint16, pageCrossed bool) uint8 {
	if !taken {
		return 0
	}
	extra := uint8(1)
	if pageCrossed {
		extra++
	}
	cpu.PC = address
	return extra
}

func (cpu *CPU) brk() {
	cpu.pushWord(cpu.PC + 1)
	cpu.push(cpu.statusByte() | bFlagMask | uFlagMask)
	cpu.I = true
	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
}

// illegal handles every undefined opcode value, including the
// multi-byte-NOP slots the opcode table names: a NOP in non-strict mode,
// or a terminal jam in strict mode.
func (cpu *CPU) illegal(opcode uint8) {
	if cpu.Strict {
		cpu.Jammed = true
	}
}

package vm

import "fmt"

// Instruction is one decoded operation. The set of implementations is closed;
// the engine dispatches on the concrete type.
type Instruction interface {
	fmt.Stringer
	instruction()
}

type (
	// 0nnn - legacy machine code call, not supported
	SysCall struct{ Addr Address }
	// 00E0
	ClearScreen struct{}
	// 00EE
	Return struct{}
	// 1nnn
	Jump struct{ Addr Address }
	// 2nnn
	Call struct{ Addr Address }
	// 3xnn
	SkipEqualImm struct {
		X     Register
		Value uint8
	}
	// 4xnn
	SkipNotEqualImm struct {
		X     Register
		Value uint8
	}
	// 5xy0
	SkipEqualReg struct{ X, Y Register }
	// 6xnn
	LoadImm struct {
		X     Register
		Value uint8
	}
	// 7xnn
	AddImm struct {
		X     Register
		Value uint8
	}
	// 8xy0
	Move struct{ X, Y Register }
	// 8xy1
	Or struct{ X, Y Register }
	// 8xy2
	And struct{ X, Y Register }
	// 8xy3
	Xor struct{ X, Y Register }
	// 8xy4
	AddReg struct{ X, Y Register }
	// 8xy5
	Sub struct{ X, Y Register }
	// 8xy6
	ShiftRight struct{ X, Y Register }
	// 8xy7
	SubReverse struct{ X, Y Register }
	// 8xyE
	ShiftLeft struct{ X, Y Register }
	// 9xy0
	SkipNotEqualReg struct{ X, Y Register }
	// Annn
	LoadIndex struct{ Addr Address }
	// Bnnn
	JumpOffset struct{ Addr Address }
	// Cxnn
	Random struct {
		X    Register
		Mask uint8
	}
	// Dxyn
	Draw struct {
		X, Y   Register
		Height uint8
	}
	// Ex9E
	SkipKeyPressed struct{ X Register }
	// ExA1
	SkipKeyNotPressed struct{ X Register }
	// Fx07
	LoadDelay struct{ X Register }
	// Fx0A
	WaitKey struct{ X Register }
	// Fx15
	SetDelay struct{ X Register }
	// Fx18
	SetSound struct{ X Register }
	// Fx1E
	AddIndex struct{ X Register }
	// Fx29
	LoadGlyph struct{ X Register }
	// Fx33
	StoreBCD struct{ X Register }
	// Fx55
	StoreRegisters struct{ X Register }
	// Fx65
	LoadRegisters struct{ X Register }
)

func (SysCall) instruction()           {}
func (ClearScreen) instruction()       {}
func (Return) instruction()            {}
func (Jump) instruction()              {}
func (Call) instruction()              {}
func (SkipEqualImm) instruction()      {}
func (SkipNotEqualImm) instruction()   {}
func (SkipEqualReg) instruction()      {}
func (LoadImm) instruction()           {}
func (AddImm) instruction()            {}
func (Move) instruction()              {}
func (Or) instruction()                {}
func (And) instruction()               {}
func (Xor) instruction()               {}
func (AddReg) instruction()            {}
func (Sub) instruction()               {}
func (ShiftRight) instruction()        {}
func (SubReverse) instruction()        {}
func (ShiftLeft) instruction()         {}
func (SkipNotEqualReg) instruction()   {}
func (LoadIndex) instruction()         {}
func (JumpOffset) instruction()        {}
func (Random) instruction()            {}
func (Draw) instruction()              {}
func (SkipKeyPressed) instruction()    {}
func (SkipKeyNotPressed) instruction() {}
func (LoadDelay) instruction()         {}
func (WaitKey) instruction()           {}
func (SetDelay) instruction()          {}
func (SetSound) instruction()          {}
func (AddIndex) instruction()          {}
func (LoadGlyph) instruction()         {}
func (StoreBCD) instruction()          {}
func (StoreRegisters) instruction()    {}
func (LoadRegisters) instruction()     {}

func (i SysCall) String() string         { return fmt.Sprintf("sys %s", i.Addr) }
func (ClearScreen) String() string       { return "cls" }
func (Return) String() string            { return "rts" }
func (i Jump) String() string            { return fmt.Sprintf("jmp %s", i.Addr) }
func (i Call) String() string            { return fmt.Sprintf("jsr %s", i.Addr) }
func (i SkipEqualImm) String() string    { return fmt.Sprintf("skeq v%x, %d", i.X, i.Value) }
func (i SkipNotEqualImm) String() string { return fmt.Sprintf("skne v%x, %d", i.X, i.Value) }
func (i SkipEqualReg) String() string    { return fmt.Sprintf("skeq v%x, v%x", i.X, i.Y) }
func (i LoadImm) String() string         { return fmt.Sprintf("mov v%x, %d", i.X, i.Value) }
func (i AddImm) String() string          { return fmt.Sprintf("add v%x, %d", i.X, i.Value) }
func (i Move) String() string            { return fmt.Sprintf("mov v%x, v%x", i.X, i.Y) }
func (i Or) String() string              { return fmt.Sprintf("or v%x, v%x", i.X, i.Y) }
func (i And) String() string             { return fmt.Sprintf("and v%x, v%x", i.X, i.Y) }
func (i Xor) String() string             { return fmt.Sprintf("xor v%x, v%x", i.X, i.Y) }
func (i AddReg) String() string          { return fmt.Sprintf("add v%x, v%x", i.X, i.Y) }
func (i Sub) String() string             { return fmt.Sprintf("sub v%x, v%x", i.X, i.Y) }
func (i ShiftRight) String() string      { return fmt.Sprintf("shr v%x", i.X) }
func (i SubReverse) String() string      { return fmt.Sprintf("rsb v%x, v%x", i.X, i.Y) }
func (i ShiftLeft) String() string       { return fmt.Sprintf("shl v%x", i.X) }
func (i SkipNotEqualReg) String() string { return fmt.Sprintf("skne v%x, v%x", i.X, i.Y) }
func (i LoadIndex) String() string       { return fmt.Sprintf("mvi %s", i.Addr) }
func (i JumpOffset) String() string      { return fmt.Sprintf("jmi %s", i.Addr) }
func (i Random) String() string          { return fmt.Sprintf("rand v%x, 0x%02x", i.X, i.Mask) }
func (i Draw) String() string            { return fmt.Sprintf("sprite v%x, v%x, %d", i.X, i.Y, i.Height) }
func (i SkipKeyPressed) String() string  { return fmt.Sprintf("skpr v%x", i.X) }
func (i SkipKeyNotPressed) String() string {
	return fmt.Sprintf("skup v%x", i.X)
}
func (i LoadDelay) String() string      { return fmt.Sprintf("gdelay v%x", i.X) }
func (i WaitKey) String() string        { return fmt.Sprintf("key v%x", i.X) }
func (i SetDelay) String() string       { return fmt.Sprintf("sdelay v%x", i.X) }
func (i SetSound) String() string       { return fmt.Sprintf("ssound v%x", i.X) }
func (i AddIndex) String() string       { return fmt.Sprintf("adi v%x", i.X) }
func (i LoadGlyph) String() string      { return fmt.Sprintf("font v%x", i.X) }
func (i StoreBCD) String() string       { return fmt.Sprintf("bcd v%x", i.X) }
func (i StoreRegisters) String() string { return fmt.Sprintf("str %d", i.X) }
func (i LoadRegisters) String() string  { return fmt.Sprintf("ldr %d", i.X) }

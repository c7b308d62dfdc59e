package dvi

// DVI opcodes. Names and numbering follow the DVI specification; the
// constants name the first opcode of each group.
const (
	opSetChar0 = 0   // typeset character 0 and move right
	opSet1     = 128 // typeset a character and move right
	opSetRule  = 132 // typeset a rule and move right
	opPut1     = 133 // typeset a character
	opPutRule  = 137 // typeset a rule
	opNop      = 138 // no operation
	opBop      = 139 // beginning of page
	opEop      = 140 // ending of page
	opPush     = 141 // save the current positions
	opPop      = 142 // restore previous positions
	opRight1   = 143 // move right
	opW0       = 147 // move right by w
	opW1       = 148 // move right and set w
	opX0       = 152 // move right by x
	opX1       = 153 // move right and set x
	opDown1    = 157 // move down
	opY0       = 161 // move down by y
	opY1       = 162 // move down and set y
	opZ0       = 166 // move down by z
	opZ1       = 167 // move down and set z
	opFntNum0  = 171 // set current font to 0
	opFnt1     = 235 // set current font
	opXXX1     = 239 // extension to DVI primitives
	opFntDef1  = 243 // the meaning of a font number
	opPre      = 247 // preamble
	opPost     = 248 // postamble beginning
	opPostPost = 249 // postamble ending

	idByte = 2 // format identifier expected in pre and post_post

	trailerByte = 223 // padding at the very end of the file

	stackSize = 100 // DVI files shouldn't push beyond this depth
)

// firstPar returns the first parameter of opcode o, consuming its bytes
// from the reader but performing no other side effects on the machine.
//
// The 4-byte forms of fnt, fnt_def and xxx read a signed quad here even
// though the DVI specification declares the fnt_def and xxx parameters
// unsigned; the Lua-enabled engines' own decoder reads a signed quad for
// all of them and we stay wire-compatible with it.
func (m *machine) firstPar(o int) int {
	switch {
	case o >= opSetChar0 && o < opSetChar0+128:
		return o - opSetChar0
	case o >= opFntNum0 && o < opFntNum0+64:
		return o - opFntNum0
	}
	switch o {
	case opSet1, opPut1, opFnt1, opXXX1, opFntDef1:
		return m.r.u8()
	case opSet1 + 1, opPut1 + 1, opFnt1 + 1, opXXX1 + 1, opFntDef1 + 1:
		return m.r.u16()
	case opSet1 + 2, opPut1 + 2, opFnt1 + 2, opXXX1 + 2, opFntDef1 + 2:
		return m.r.u24()
	case opRight1, opW1, opX1, opDown1, opY1, opZ1:
		return m.r.i8()
	case opRight1 + 1, opW1 + 1, opX1 + 1, opDown1 + 1, opY1 + 1, opZ1 + 1:
		return m.r.i16()
	case opRight1 + 2, opW1 + 2, opX1 + 2, opDown1 + 2, opY1 + 2, opZ1 + 2:
		return m.r.i24()
	case opSet1 + 3, opSetRule, opPut1 + 3, opPutRule,
		opRight1 + 3, opW1 + 3, opX1 + 3, opDown1 + 3, opY1 + 3, opZ1 + 3,
		opFnt1 + 3, opXXX1 + 3, opFntDef1 + 3:
		return m.r.i32()
	case opW0:
		return m.w
	case opX0:
		return m.x
	case opY0:
		return m.y
	case opZ0:
		return m.z
	}
	// nop, bop, eop, push, pop, pre, post, post_post and the undefined
	// opcodes 250..255 carry no leading parameter.
	return 0
}

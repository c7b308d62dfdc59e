package dvi

// The DVI stack machine: six position registers in DVI units, their two
// pixel companions, a register stack, and the current-font register. One
// machine instance is threaded through both passes of a decode; no state
// lives outside it.

// interpState tracks where in the file the machine currently is.
type interpState int

const (
	statePre         interpState = iota // before the preamble
	statePostFinding                    // walking back from EOF past the 223 trailer
	statePost                           // processing font defs inside the postamble
	stateScanning                       // between pages
	statePage                           // between bop and eop
	stateDone
)

// regs is one stack entry: the six DVI-unit registers and their pixel
// companions. The current font is deliberately not part of it.
type regs struct {
	h, v, w, x, y, z, hh, vv int
}

type machine struct {
	r    *reader
	diag *diagSink

	// conversion factors, established at preamble time
	num, den, mag int
	dpi           int
	conv          float64 // pixels per DVI unit
	trueConv      float64 // unmagnified pixels per DVI unit

	// registers
	h, v, w, x, y, z, hh, vv int
	stack                    []regs
	curFont                  *dviFont

	fonts *fontRegistry

	// postamble claims and observed maxima
	maxV, maxH, maxS                int
	maxVSoFar, maxHSoFar, maxSSoFar int
	totalPages                      int

	state    interpState
	maxDrift int // 0 disables drift control
	debug    bool

	page *Page // page under construction, nil outside bop..eop
}

func newMachine(data []byte, diag *diagSink) *machine {
	return &machine{
		r:     &reader{data: data},
		diag:  diag,
		fonts: newFontRegistry(),
		stack: make([]regs, 0, stackSize),
		state: statePre,
	}
}

// trace emits a debug trace line prefixed with the byte offset of the
// opcode being processed.
func (m *machine) trace(a int, format string, args ...interface{}) {
	if !m.debug {
		return
	}
	tracer().Debugf("%d: "+format, append([]interface{}{a}, args...)...)
}

// resetPage initializes the register bank for a new page. The current
// font is undefined at page start.
func (m *machine) resetPage() {
	m.h, m.v, m.w, m.x, m.y, m.z = 0, 0, 0, 0, 0, 0
	m.hh, m.vv = 0, 0
	m.stack = m.stack[:0]
	m.curFont = nil
}

// doPage translates opcodes until eop, filling in m.page. The ten count
// registers and the backpointer of the bop have already been consumed by
// the driver.
func (m *machine) doPage() error {
	m.resetPage()
	m.state = statePage
	for {
		if m.r.atEnd() {
			return badDVI(ErrPageEndedWithoutEop, m.r.loc(), "the file ended prematurely")
		}
		a := m.r.loc()
		o := m.r.u8()
		p := m.firstPar(o)
		done, err := m.step(a, o, p)
		if err != nil {
			return err
		}
		if done {
			m.state = stateScanning
			return nil
		}
	}
}

// step executes one opcode inside a page. It reports true once the eop
// has been processed.
func (m *machine) step(a, o, p int) (bool, error) {
	switch {
	case o < opSet1:
		m.trace(a, "setchar%d", p)
		m.setChar(a, p, true)
		return false, nil
	case o >= opFntNum0 && o < opFntNum0+64:
		m.trace(a, "fntnum%d", p)
		m.setFont(a, p)
		return false, nil
	}
	switch o {
	case opSet1, opSet1 + 1, opSet1 + 2, opSet1 + 3:
		m.trace(a, "set%d %d", o-opSet1+1, p)
		m.setChar(a, p, true)
	case opPut1, opPut1 + 1, opPut1 + 2, opPut1 + 3:
		m.trace(a, "put%d %d", o-opPut1+1, p)
		m.setChar(a, p, false)
	case opSetRule:
		m.trace(a, "setrule")
		m.rule(a, p, true)
	case opPutRule:
		m.trace(a, "putrule")
		m.rule(a, p, false)
	case opNop:
		m.trace(a, "nop")
	case opBop:
		return false, badDVI(ErrBopWithinPage, a, "bop occurred before eop")
	case opEop:
		m.trace(a, "eop")
		if len(m.stack) != 0 {
			m.diag.warnf(a, "stack not empty at end of page (level %d)!", len(m.stack))
		}
		return true, nil
	case opPush:
		m.trace(a, "push")
		if err := m.push(a); err != nil {
			return false, err
		}
	case opPop:
		m.trace(a, "pop")
		m.pop(a)
	case opRight1, opRight1 + 1, opRight1 + 2, opRight1 + 3:
		m.trace(a, "right%d %d", o-opRight1+1, p)
		m.outSpace(a, p)
	case opW0, opW1, opW1 + 1, opW1 + 2, opW1 + 3:
		m.trace(a, "w%d %d", o-opW0, p)
		m.w = p
		m.outSpace(a, p)
	case opX0, opX1, opX1 + 1, opX1 + 2, opX1 + 3:
		m.trace(a, "x%d %d", o-opX0, p)
		m.x = p
		m.outSpace(a, p)
	case opDown1, opDown1 + 1, opDown1 + 2, opDown1 + 3:
		m.trace(a, "down%d %d", o-opDown1+1, p)
		m.moveDown(a, p)
	case opY0, opY1, opY1 + 1, opY1 + 2, opY1 + 3:
		m.trace(a, "y%d %d", o-opY0, p)
		m.y = p
		m.moveDown(a, p)
	case opZ0, opZ1, opZ1 + 1, opZ1 + 2, opZ1 + 3:
		m.trace(a, "z%d %d", o-opZ0, p)
		m.z = p
		m.moveDown(a, p)
	case opFnt1, opFnt1 + 1, opFnt1 + 2, opFnt1 + 3:
		m.trace(a, "fnt%d %d", o-opFnt1+1, p)
		m.setFont(a, p)
	case opFntDef1, opFntDef1 + 1, opFntDef1 + 2, opFntDef1 + 3:
		m.trace(a, "fntdef%d %d", o-opFntDef1+1, p)
		if _, isNew := m.defineFont(p); isNew {
			m.diag.warnf(a, "font %d wasn't defined in the postamble", p)
		}
	case opXXX1, opXXX1 + 1, opXXX1 + 2, opXXX1 + 3:
		m.trace(a, "xxx %d", p)
		m.special(a, p)
	case opPre:
		return false, badDVI(ErrPreOrPostWithinPage, a, "preamble command within a page")
	case opPost, opPostPost:
		return false, badDVI(ErrPreOrPostWithinPage, a, "postamble command within a page")
	default:
		m.diag.warnf(a, "undefined command %d!", o)
	}
	return false, nil
}

// setChar typesets the glyph selected by DVI character parameter p at
// the current position. When advance is set (set_char and set1..set4),
// h moves right by the glyph's width in DVI units and hh by its pixel
// width; put1..put4 leave the position alone.
func (m *machine) setChar(a, p int, advance bool) {
	f := m.curFont
	if f == nil {
		m.diag.warnf(a, "character %d invalid: no font selected", p)
		return
	}
	gid, ok := m.resolveGlyph(f, a, p)
	if ok {
		m.placeGlyph(f, gid)
	}
	if !advance {
		return
	}
	// An unknown character advances by width 0.
	var q, pw int
	if ok {
		q = f.width[gid]
		pw = f.pixelWidth[gid]
	}
	m.hh += pw
	m.moveRight(a, q)
}

// rule typesets a rule of height p. The width is the second parameter of
// the opcode and is read here. Rules with a nonpositive dimension are
// invisible, but set_rule still advances the position by the full width.
func (m *machine) rule(a, p int, advance bool) {
	q := m.r.i32()
	if p > 0 && q > 0 {
		w := m.rulePixels(q)
		h := m.rulePixels(p)
		m.page.Rules = append(m.page.Rules, Rule{
			X: m.hh,
			Y: m.vv - h, // DVI rules are anchored bottom-left
			W: w,
			H: h,
		})
	}
	if !advance {
		return
	}
	m.hh += m.rulePixels(q)
	m.moveRight(a, q)
}

func (m *machine) push(a int) error {
	s := len(m.stack)
	if s == m.maxSSoFar {
		m.maxSSoFar = s + 1
		if s == m.maxS {
			m.diag.warnf(a, "deeper than claimed in postamble!")
		}
		if s == stackSize {
			return badDVI(ErrStackOverflow, a, "capacity exceeded (stack size=%d)", stackSize)
		}
	}
	m.stack = append(m.stack, regs{m.h, m.v, m.w, m.x, m.y, m.z, m.hh, m.vv})
	return nil
}

func (m *machine) pop(a int) {
	if len(m.stack) == 0 {
		m.diag.warnf(a, "pop illegal at level zero!")
		return
	}
	t := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.h, m.v, m.w, m.x, m.y, m.z = t.h, t.v, t.w, t.x, t.y, t.z
	m.hh, m.vv = t.hh, t.vv
}

func (m *machine) setFont(a, e int) {
	f := m.fonts.font(e)
	if f == nil {
		m.diag.warnf(a, "invalid font selection: font %d was never defined!", e)
	}
	m.curFont = f
}

// placeGlyph records a placement of glyph gid of font f at the current
// pixel position, under the font's scaled pixel size. Entries are
// created on first use; the consolidator merges and sorts later.
func (m *machine) placeGlyph(f *dviFont, gid int) {
	var pf *PageFont
	for i := range m.page.PageFonts {
		if m.page.PageFonts[i].FontNum == f.num {
			pf = &m.page.PageFonts[i]
			break
		}
	}
	if pf == nil {
		m.page.PageFonts = append(m.page.PageFonts, PageFont{FontNum: f.num})
		pf = &m.page.PageFonts[len(m.page.PageFonts)-1]
	}
	var g *Glyph
	for i := range pf.Glyphs {
		if pf.Glyphs[i].GlyphIndex == gid {
			g = &pf.Glyphs[i]
			break
		}
	}
	if g == nil {
		pf.Glyphs = append(pf.Glyphs, Glyph{GlyphIndex: gid})
		g = &pf.Glyphs[len(pf.Glyphs)-1]
	}
	var gs *GlyphSize
	for i := range g.GlyphSizes {
		if g.GlyphSizes[i].Sz == f.scaledPixelSize {
			gs = &g.GlyphSizes[i]
			break
		}
	}
	if gs == nil {
		g.GlyphSizes = append(g.GlyphSizes, GlyphSize{Sz: f.scaledPixelSize})
		gs = &g.GlyphSizes[len(g.GlyphSizes)-1]
	}
	gs.GlyphPlacements = append(gs.GlyphPlacements, GlyphPlacement{X: m.hh, Y: m.vv})
}

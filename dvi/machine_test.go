package dvi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Registers must survive a push / move / pop round trip exactly,
// including the pixel companions.
func TestPushPopRoundTrip(t *testing.T) {
	m := testMachine()
	m.h, m.v, m.w, m.x, m.y, m.z = 1000, 2000, 3, 4, 5, 6
	m.hh, m.vv = m.pixelRound(1000), m.pixelRound(2000)
	saved := regs{m.h, m.v, m.w, m.x, m.y, m.z, m.hh, m.vv}

	require.NoError(t, m.push(0))
	m.outSpace(0, 50)
	m.moveDown(0, 60)
	m.pop(0)

	require.Equal(t, saved, regs{m.h, m.v, m.w, m.x, m.y, m.z, m.hh, m.vv},
		"expected all eight registers restored")
}

func TestPopAtLevelZero(t *testing.T) {
	m := testMachine()
	m.h = 42
	m.pop(0)
	require.Equal(t, 42, m.h, "expected the registers untouched")
	require.True(t, m.diag.hasWarnings(), "expected an illegal-pop diagnostic")
}

func TestStackDepthClaims(t *testing.T) {
	m := testMachine()
	m.maxS = 1
	require.NoError(t, m.push(0))
	require.False(t, m.diag.hasWarnings())
	require.NoError(t, m.push(0)) // deeper than claimed
	require.True(t, m.diag.hasWarnings(), "expected a deeper-than-claimed diagnostic")
}

func TestStackOverflowIsFatal(t *testing.T) {
	m := testMachine()
	m.maxS = stackSize + 1
	var err error
	for i := 0; i <= stackSize && err == nil; i++ {
		err = m.push(0)
	}
	require.Error(t, err, "expected push number %d to fail", stackSize+1)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, ErrStackOverflow, derr.Kind)
}

func TestInvisibleRuleStillAdvances(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	// set_rule with height 0: invisible, but the width still advances h
	d := &dviBuilder{}
	d.quad(1310720) // the width operand read by the handler
	m.r.data = d.b
	m.rule(0, 0, true)
	require.Empty(t, m.page.Rules, "expected no rule for height 0")
	require.Equal(t, 1310720, m.h, "expected set_rule to advance h regardless")
	require.Equal(t, m.rulePixels(1310720), m.hh)
}

func TestPutRuleDoesNotAdvance(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	d := &dviBuilder{}
	d.quad(1310720)
	m.r.data = d.b
	m.rule(0, 655360, false)
	require.Len(t, m.page.Rules, 1)
	require.Equal(t, Rule{X: 0, Y: -10, W: 20, H: 10}, m.page.Rules[0])
	require.Zero(t, m.h, "expected put_rule to leave the position alone")
	require.Zero(t, m.hh)
}

func TestSetCharWithoutFont(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	m.setChar(0, 65, true)
	require.Empty(t, m.page.PageFonts, "expected nothing typeset without a font")
	require.Zero(t, m.h, "expected no advance without a font")
	require.True(t, m.diag.hasWarnings())
}

func TestSetCharUnknownCodeAdvancesZero(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	f := &dviFont{num: 0, name: "Test.otf", glyphs: GlyphTable{}, ec: 9,
		width: map[int]int{}, pixelWidth: map[int]int{}}
	m.curFont = f
	m.setChar(0, 99, true)
	require.Empty(t, m.page.PageFonts, "expected no placement for an undescribed code")
	require.Zero(t, m.h)
	require.Zero(t, m.hh)
}

func TestGlyphBeyondEcSubstitutesNotdef(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	f := &dviFont{num: 0, name: "Test.otf", ec: 3,
		glyphs:     GlyphTable{"65": {Index: 9}},
		width:      map[int]int{},
		pixelWidth: map[int]int{}}
	m.curFont = f
	m.setChar(0, 65, true)
	require.Len(t, m.page.PageFonts, 1)
	require.Equal(t, 0, m.page.PageFonts[0].Glyphs[0].GlyphIndex, "expected .notdef")
	require.True(t, m.diag.hasWarnings(), "expected an invalid-glyph diagnostic")
}

func TestSetFontUndefinedWarns(t *testing.T) {
	m := testMachine()
	m.setFont(0, 5)
	require.Nil(t, m.curFont)
	require.True(t, m.diag.hasWarnings())
}

// put must typeset without moving; set must move by the glyph's width.
func TestSetVersusPut(t *testing.T) {
	m := testMachine()
	m.page = &Page{}
	f := &dviFont{num: 0, name: "Test.otf", ec: 9, scaledPixelSize: 10,
		glyphs:     GlyphTable{"66": {Index: 2}},
		width:      map[int]int{2: 393216},
		pixelWidth: map[int]int{2: 6}}
	m.curFont = f

	m.setChar(0, 66, false) // put
	require.Zero(t, m.h)
	require.Zero(t, m.hh)

	m.setChar(0, 66, true) // set
	require.Equal(t, 393216, m.h)
	require.Equal(t, 6, m.hh)

	places := m.page.PageFonts[0].Glyphs[0].GlyphSizes[0].GlyphPlacements
	require.Len(t, places, 2)
	require.Equal(t, places[0], places[1], "expected both placements at the same spot")
}

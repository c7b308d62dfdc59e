package dvi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitFontSpec(t *testing.T) {
	for _, tc := range []struct {
		spec                 string
		path, name, features string
	}{
		{"fonts/lm/lmroman10-regular.otf:mode=harf;shaper=ot",
			"fonts/lm", "lmroman10-regular.otf", "mode=harf;shaper=ot"},
		{"Test.otf", "", "Test.otf", ""},
		{"a/b/c.otf", "a/b", "c.otf", ""},
		{"c.otf:+liga", "", "c.otf", "+liga"},
	} {
		path, name, features := splitFontSpec(tc.spec)
		require.Equal(t, tc.path, path, "path of %q", tc.spec)
		require.Equal(t, tc.name, name, "name of %q", tc.spec)
		require.Equal(t, tc.features, features, "features of %q", tc.spec)
	}
}

// fnt_def bodies wrap the name in brackets on the wire; the brackets
// are elided.
func TestDefineFontElidesBrackets(t *testing.T) {
	d := &dviBuilder{}
	name := "[Test.otf]:mode=harf;shaper=ot"
	d.quad(4711).quad(655360).quad(655360)
	d.op(0).op(len(name))
	d.b = append(d.b, name...)

	m := testMachine()
	m.r.data = d.b
	f, isNew := m.defineFont(33)
	require.True(t, isNew)
	require.Equal(t, "Test.otf", f.name)
	require.Equal(t, "mode=harf;shaper=ot", f.features)
	require.Equal(t, 4711, f.checksum)
	require.Equal(t, 655360, f.scaledSize)
	require.Equal(t, 655360/6, f.fontSpace, "expected the 3-unit thin space q/6")
	require.Equal(t, 10.0, f.scaledPointSize, "expected 10pt for q=10·2^16 at mag 1000")
	require.Equal(t, 10, f.scaledPixelSize, "expected round(conv·q) at 72dpi")
}

func TestDefineFontNoReplace(t *testing.T) {
	body := func(q int) []byte {
		d := &dviBuilder{}
		name := "Test.otf"
		d.quad(1).quad(q).quad(655360)
		d.op(0).op(len(name))
		d.b = append(d.b, name...)
		return d.b
	}
	m := testMachine()
	m.r.data = body(655360)
	first, isNew := m.defineFont(7)
	require.True(t, isNew)

	m.r.data = body(1310720)
	m.r.peekSet(0)
	second, isNew := m.defineFont(7)
	require.False(t, isNew, "expected the redefinition to be rejected")
	require.Same(t, first, second, "expected the first descriptor retained")
	require.Equal(t, 655360, second.scaledSize)
	require.True(t, m.diag.hasWarnings(), "expected mismatch diagnostics")
}

func TestDefineFontBadScale(t *testing.T) {
	d := &dviBuilder{}
	name := "Test.otf"
	d.quad(0).quad(-5).quad(1 << 27)
	d.op(0).op(len(name))
	d.b = append(d.b, name...)

	m := testMachine()
	m.r.data = d.b
	f, isNew := m.defineFont(0)
	require.True(t, isNew, "a bad scale still defines the font number")
	require.True(t, m.diag.hasWarnings(), "expected bad-scale and bad-design-size diagnostics")
	require.Equal(t, 0, f.scaledPixelSize)
}

func TestAttachAssetWidths(t *testing.T) {
	m := testMachine()
	m.r.data = func() []byte {
		d := &dviBuilder{}
		name := "Test.otf"
		d.quad(0).quad(655360).quad(655360)
		d.op(0).op(len(name))
		d.b = append(d.b, name...)
		return d.b
	}()
	f, _ := m.defineFont(0)

	asset := stubAsset{
		upem:     1000,
		nglyphs:  4,
		advances: map[int]int{1: 500, 2: 1000},
		cmap:     map[rune]int{},
	}
	m.attachAsset(f, asset, GlyphTable{})
	require.Equal(t, 1000, f.unitsPerEm)
	require.Equal(t, 3, f.ec)
	require.Zero(t, f.width[3], "expected width 0 for a glyph without advance")
	require.Zero(t, f.pixelWidth[3])
	// a full-em advance spans dviUnitsPerEm DVI units
	pixelsPerEm := f.scaledPointSize * float64(m.dpi) / 72.27
	wantEm := round(pixelsPerEm / m.conv)
	require.Equal(t, wantEm, f.width[2], "expected a 1000-unit advance to span one em")
	require.Equal(t, f.width[2]/2, f.width[1], "expected half an em for a 500-unit advance")
	require.Equal(t, round(m.conv*float64(f.width[2])), f.pixelWidth[2])
}

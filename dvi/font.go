package dvi

import (
	"strings"
)

// The font registry: DVI font number → descriptor. Fonts are created on
// the first fnt_def for a given number and persist; a later fnt_def for
// the same number is sanity-checked against the first but never replaces
// it.

const maxFontDimen = 1 << 27 // scaled and design sizes must stay below 2^27

// dviFont is the descriptor of one font as defined by a fnt_def command,
// enriched with the metrics of its external asset once that has loaded.
type dviFont struct {
	num      int    // DVI font number
	name     string // external name (final basename)
	path     string // directory part of the composite name
	features string // feature-option substring after ':'

	checksum   int
	scaledSize int // q, in DVI units
	designSize int // d, in DVI units

	scaledPointSize float64 // (mag/1000 · q) / 2^16
	scaledPixelSize int     // round(conv · q)
	fontSpace       int     // q/6, the "3-unit thin space" threshold

	unitsPerEm int
	unitConv   float64 // DVI units per font unit

	bc, ec int // legal glyph range

	width      map[int]int // glyph index → advance in DVI units
	pixelWidth map[int]int // glyph index → advance in pixels

	glyphs GlyphTable // DVI char code (decimal string) → description
	asset  FontAsset  // nil until the asset load has completed
}

// space returns the thin-space threshold of f, with 0 standing in for an
// undefined current font.
func (f *dviFont) space() int {
	if f == nil {
		return 0
	}
	return f.fontSpace
}

// fontRegistry owns all font descriptors of one decode, keyed by DVI
// font number, in definition order.
type fontRegistry struct {
	byNum map[int]*dviFont
	order []int
}

func newFontRegistry() *fontRegistry {
	return &fontRegistry{byNum: make(map[int]*dviFont)}
}

func (reg *fontRegistry) font(e int) *dviFont {
	return reg.byNum[e]
}

func (reg *fontRegistry) add(f *dviFont) {
	reg.byNum[f.num] = f
	reg.order = append(reg.order, f.num)
}

// splitFontSpec splits the composite name string of a fnt_def body into
// directory path, basename and feature substring. The wire form is
// "<path>/<basename>:<features>"; both path and features may be absent.
func splitFontSpec(spec string) (path, name, features string) {
	name = spec
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		features = name[i+1:]
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		path = name[:i]
		name = name[i+1:]
	}
	return path, name, features
}

// defineFont reads the body of a fnt_def command for font number e and
// registers a new descriptor, or checks the body against an existing
// definition. The boolean result reports whether the font is new; asset
// loading is the driver's business.
//
// The name bytes 0o133 '[' and 0o135 ']' are elided, as the engine wraps
// file names in brackets on the wire.
func (m *machine) defineFont(e int) (*dviFont, bool) {
	a := m.r.loc()
	c := m.r.i32()
	q := m.r.i32()
	d := m.r.i32()
	dirLen := m.r.u8()
	nameLen := m.r.u8()
	raw := m.r.bytes(dirLen + nameLen)
	var sb strings.Builder
	for _, b := range raw {
		if b == 0o133 || b == 0o135 {
			continue
		}
		sb.WriteByte(b)
	}
	path, name, features := splitFontSpec(sb.String())

	if prev := m.fonts.font(e); prev != nil {
		// Sanity-check against the first definition; never replace.
		if prev.checksum != c {
			m.diag.warnf(a, "font %d: check sum doesn't match previous definition", e)
		}
		if prev.scaledSize != q {
			m.diag.warnf(a, "font %d: scaled size doesn't match previous definition", e)
		}
		if prev.designSize != d {
			m.diag.warnf(a, "font %d: design size doesn't match previous definition", e)
		}
		if prev.name != name {
			m.diag.warnf(a, "font %d: font name %q doesn't match previous definition %q", e, name, prev.name)
		}
		return prev, false
	}

	if q <= 0 || q >= maxFontDimen {
		m.diag.warnf(a, "font %d (%s): bad scale %d", e, name, q)
	}
	if d <= 0 || d >= maxFontDimen {
		m.diag.warnf(a, "font %d (%s): bad design size %d", e, name, d)
	}
	if !strings.Contains(features, "mode=harf") || !strings.Contains(features, "shaper=ot") {
		// The engine used to enforce mode=harf;shaper=ot here; recent
		// versions only note the absence.
		tracer().Debugf("font %d (%s): features %q without mode=harf/shaper=ot", e, name, features)
	}

	f := &dviFont{
		num:        e,
		name:       name,
		path:       path,
		features:   features,
		checksum:   c,
		scaledSize: q,
		designSize: d,
		width:      make(map[int]int),
		pixelWidth: make(map[int]int),
	}
	if q > 0 {
		f.scaledPointSize = (float64(m.mag) / 1000.0 * float64(q)) / 65536.0
		f.scaledPixelSize = round(m.conv * float64(q))
		f.fontSpace = q / 6
	}
	m.fonts.add(f)
	tracer().Debugf("font %d defined: %s at %d DVI units", e, name, q)
	return f, true
}

// attachAsset installs the loaded external font and glyph table into f
// and derives the per-glyph width tables.
func (m *machine) attachAsset(f *dviFont, asset FontAsset, glyphs GlyphTable) {
	f.asset = asset
	f.glyphs = glyphs
	f.unitsPerEm = asset.UnitsPerEm()
	f.bc = 0
	f.ec = asset.NumGlyphs() - 1

	pixelsPerEm := f.scaledPointSize * float64(m.dpi) / 72.27
	dviUnitsPerEm := pixelsPerEm / m.conv
	if f.unitsPerEm > 0 {
		f.unitConv = dviUnitsPerEm / float64(f.unitsPerEm)
	}
	for gid := f.bc; gid <= f.ec; gid++ {
		aw, ok := asset.AdvanceWidth(gid)
		if !ok {
			continue
		}
		w := round(float64(aw) * f.unitConv)
		f.width[gid] = w
		if w != 0 {
			f.pixelWidth[gid] = round(m.conv * float64(w))
		}
	}
	tracer().Debugf("font %d (%s): %d glyphs, units/em %d", f.num, f.name, f.ec+1, f.unitsPerEm)
}

// Package fontload parses OpenType font assets and exposes the metric
// view the DVI decoder consumes: units per em, per-glyph advance widths,
// and cmap lookups.
package fontload

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ScalableFont is a parsed scalable font with original bytes and SFNT view.
type ScalableFont struct {
	Fontname string
	Binary   []byte
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	return ParseOpenTypeFont(bytez)
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}

// Metrics is the metric view of a loaded font. It satisfies the
// decoder's FontAsset interface. Not safe for concurrent use: the sfnt
// buffer is shared between calls.
type Metrics struct {
	sf  *ScalableFont
	buf sfnt.Buffer
}

// NewMetrics wraps a parsed font in its metric view.
func NewMetrics(sf *ScalableFont) *Metrics {
	return &Metrics{sf: sf}
}

// UnitsPerEm returns the font's design grid resolution.
func (m *Metrics) UnitsPerEm() int {
	return int(m.sf.SFNT.UnitsPerEm())
}

// NumGlyphs returns the number of glyphs in the font.
func (m *Metrics) NumGlyphs() int {
	return m.sf.SFNT.NumGlyphs()
}

// AdvanceWidth returns the advance width of glyph gid in font units.
// Requesting the advance at ppem = unitsPerEm makes the scaled result
// equal the design-grid value.
func (m *Metrics) AdvanceWidth(gid int) (int, bool) {
	if gid < 0 || gid >= m.sf.SFNT.NumGlyphs() {
		return 0, false
	}
	upem := fixed.Int26_6(m.sf.SFNT.UnitsPerEm()) << 6
	adv, err := m.sf.SFNT.GlyphAdvance(&m.buf, sfnt.GlyphIndex(gid), upem, font.HintingNone)
	if err != nil {
		return 0, false
	}
	return int(adv >> 6), true
}

// GlyphIndex looks up the glyph for a code point in the font's cmap.
// The second result is false for unmapped code points.
func (m *Metrics) GlyphIndex(r rune) (int, bool) {
	gid, err := m.sf.SFNT.GlyphIndex(&m.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return int(gid), true
}

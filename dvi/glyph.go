package dvi

import "strconv"

// Resolving a DVI character parameter to an output glyph index.
//
// The extended engines do not put character codes into set/put commands;
// they put the keys of the font's auxiliary glyph-description table
// there. An entry with a scalar unicode value goes through the font's
// cmap so that the renderer sees the glyph the code point maps to; a
// ligature entry (or one without a unicode value) already carries the
// final glyph index.

// resolveGlyph resolves the DVI character parameter p against font f.
// The second result is false when the parameter has no entry in the
// glyph-description table, in which case nothing is typeset.
func (m *machine) resolveGlyph(f *dviFont, a, p int) (int, bool) {
	entry, ok := f.glyphs[strconv.Itoa(p)]
	if !ok {
		return 0, false
	}
	gid := entry.Index
	if len(entry.Unicode) == 1 && f.asset != nil {
		if g, ok := f.asset.GlyphIndex(entry.Unicode[0]); ok {
			gid = g
		}
	}
	if gid > f.ec {
		m.diag.warnf(a, "glyph %d invalid in font %s, substituting .notdef", gid, f.name)
		gid = 0
	}
	return gid, true
}

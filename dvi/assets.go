package dvi

import "context"

// The decoder does not read font files and does not evaluate the
// auxiliary glyph-description tables itself; both arrive through the
// interfaces below. Loads are the only operations of a decode that may
// suspend, which is why they take a Context.

// FontAsset is the metric view of a parsed external font file. Glyph
// indices are font-local, with 0 being .notdef.
type FontAsset interface {
	UnitsPerEm() int
	NumGlyphs() int
	AdvanceWidth(gid int) (int, bool) // advance in font units; false if unknown
	GlyphIndex(r rune) (int, bool)    // cmap lookup; false if unmapped
}

// GlyphEntry is one entry of the auxiliary per-font glyph-description
// table: the output glyph index for a DVI character code, plus the code
// point (or code-point sequence, for a ligature) it renders.
type GlyphEntry struct {
	Index   int
	Unicode []rune // nil if absent; len > 1 for ligatures
}

// GlyphTable maps the DVI character parameter, as a decimal string, to
// its glyph description.
type GlyphTable map[string]GlyphEntry

// AssetLoader resolves a font name to its external assets: the font file
// itself and the auxiliary glyph-description table.
type AssetLoader interface {
	LoadFont(ctx context.Context, name, dir string) (FontAsset, error)
	LoadGlyphTable(ctx context.Context, fontName string) (GlyphTable, error)
}

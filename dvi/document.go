package dvi

// The output model. Purely data: integer pixel coordinates throughout,
// UTF-8 encodable file names, and after consolidation every
// PageFont.FontNum indexes a valid entry of Document.Fonts.

// Document is the decoded form of a DVI file: the set of fonts used and,
// for every page, the pixel placements of all glyphs, rules and images.
// Pages appear in stream order.
type Document struct {
	Fonts   []Font `json:"fonts"`
	Pages   []Page `json:"pages"`
	Comment string `json:"comment,omitempty"`
}

// Font identifies one logical font after consolidation. Scaled sizes do
// not appear here; they are captured per glyph by GlyphSize.Sz.
type Font struct {
	FontNum      int    `json:"fontNum"`
	FontName     string `json:"fontName"`
	FontPath     string `json:"fontPath"`
	FontFeatures string `json:"fontFeatures"`
}

// Page holds everything typeset between one bop and its eop. Counts are
// TeX's ten \count registers as recorded at the bop.
type Page struct {
	Counts    [10]int32  `json:"counts"`
	PageFonts []PageFont `json:"pageFonts"`
	Rules     []Rule     `json:"rules"`
	Images    []Image    `json:"images"`
}

// PageFont collects the glyphs of one font on one page.
type PageFont struct {
	FontNum int     `json:"fontNum"`
	Glyphs  []Glyph `json:"glyphs"`
}

// Glyph collects the placements of one glyph index, grouped by the
// scaled pixel size it was typeset at.
type Glyph struct {
	GlyphIndex int         `json:"glyphIndex"`
	GlyphSizes []GlyphSize `json:"glyphSizes"`
}

// GlyphSize groups placements of a glyph at one scaled pixel size.
// Placements stay in DVI stream order; they are neither deduplicated nor
// reordered.
type GlyphSize struct {
	Sz              int              `json:"sz"`
	GlyphPlacements []GlyphPlacement `json:"glyphPlacements"`
}

// GlyphPlacement is the pixel position of one typeset glyph, recorded at
// emit time.
type GlyphPlacement struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rule is a solid rectangle, anchored at its top-left corner.
type Rule struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Image is the placement of an embedded PostScript image requested by a
// PSfile special, anchored at its top-left corner.
type Image struct {
	FileName string `json:"fileName"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	W        int    `json:"w"`
	H        int    `json:"h"`
}

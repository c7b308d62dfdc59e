package dvi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func consolidationFixture() *Document {
	// Font numbers 3 and 8 denote the same external font at different
	// scales; 5 is a different font.
	return &Document{
		Fonts: []Font{
			{FontNum: 3, FontName: "lmroman10-regular.otf", FontPath: "fonts/lm"},
			{FontNum: 5, FontName: "lmmono10-regular.otf", FontPath: "fonts/lm"},
			{FontNum: 8, FontName: "lmroman10-regular.otf", FontPath: "fonts/lm"},
		},
		Pages: []Page{{
			PageFonts: []PageFont{
				{FontNum: 8, Glyphs: []Glyph{
					{GlyphIndex: 7, GlyphSizes: []GlyphSize{
						{Sz: 14, GlyphPlacements: []GlyphPlacement{{X: 30, Y: 40}}},
					}},
				}},
				{FontNum: 5, Glyphs: []Glyph{
					{GlyphIndex: 2, GlyphSizes: []GlyphSize{
						{Sz: 10, GlyphPlacements: []GlyphPlacement{{X: 5, Y: 6}}},
					}},
				}},
				{FontNum: 3, Glyphs: []Glyph{
					{GlyphIndex: 7, GlyphSizes: []GlyphSize{
						{Sz: 10, GlyphPlacements: []GlyphPlacement{{X: 1, Y: 2}}},
					}},
					{GlyphIndex: 4, GlyphSizes: []GlyphSize{
						{Sz: 10, GlyphPlacements: []GlyphPlacement{{X: 3, Y: 4}}},
					}},
				}},
			},
		}},
	}
}

func TestConsolidateMergesFontsByName(t *testing.T) {
	doc := consolidationFixture()
	consolidate(doc)

	require.Len(t, doc.Fonts, 2, "expected one entry per unique font name")
	require.Equal(t, "lmroman10-regular.otf", doc.Fonts[0].FontName,
		"expected first-encounter order")
	require.Equal(t, 0, doc.Fonts[0].FontNum)
	require.Equal(t, "lmmono10-regular.otf", doc.Fonts[1].FontName)
	require.Equal(t, 1, doc.Fonts[1].FontNum)

	page := doc.Pages[0]
	require.Len(t, page.PageFonts, 2, "expected the duplicate page fonts merged")
	require.Equal(t, 0, page.PageFonts[0].FontNum, "expected page fonts sorted by number")
	require.Equal(t, 1, page.PageFonts[1].FontNum)

	// font 0 collects the glyphs of old numbers 8 and 3
	glyphs := page.PageFonts[0].Glyphs
	require.Len(t, glyphs, 2)
	require.Equal(t, 4, glyphs[0].GlyphIndex, "expected glyphs sorted by index")
	require.Equal(t, 7, glyphs[1].GlyphIndex)
	// glyph 7 was typeset at two sizes; both survive
	require.Len(t, glyphs[1].GlyphSizes, 2)
}

func TestConsolidatePlacementsKeepStreamOrder(t *testing.T) {
	doc := &Document{
		Fonts: []Font{
			{FontNum: 1, FontName: "a.otf"},
			{FontNum: 2, FontName: "a.otf"},
		},
		Pages: []Page{{
			PageFonts: []PageFont{
				{FontNum: 1, Glyphs: []Glyph{{GlyphIndex: 3, GlyphSizes: []GlyphSize{
					{Sz: 10, GlyphPlacements: []GlyphPlacement{{X: 1, Y: 1}, {X: 2, Y: 2}}},
				}}}},
				{FontNum: 2, Glyphs: []Glyph{{GlyphIndex: 3, GlyphSizes: []GlyphSize{
					{Sz: 10, GlyphPlacements: []GlyphPlacement{{X: 3, Y: 3}}},
				}}}},
			},
		}},
	}
	consolidate(doc)
	places := doc.Pages[0].PageFonts[0].Glyphs[0].GlyphSizes[0].GlyphPlacements
	require.Equal(t, []GlyphPlacement{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, places,
		"expected placements concatenated in stream order, never deduplicated")
}

// Running the consolidator on its own output must be a no-op.
func TestConsolidateIdempotent(t *testing.T) {
	doc := consolidationFixture()
	consolidate(doc)
	again := consolidationFixture()
	consolidate(again)
	consolidate(again)
	require.Equal(t, doc, again, "expected a second consolidation to change nothing")
}

func TestConsolidateEmptyDocument(t *testing.T) {
	doc := &Document{Fonts: []Font{}, Pages: []Page{}}
	consolidate(doc)
	require.NotNil(t, doc.Fonts)
	require.Empty(t, doc.Fonts)
}

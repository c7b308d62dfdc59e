package dvi

import "sort"

// Consolidation of the decoded document. Several DVI font numbers may
// denote the same external font at different scales; once glyphs carry
// their scaled pixel size, the scale distinction is gone and the
// duplicates can be folded. Running the pass a second time on its own
// output is a no-op.

// consolidate rewrites doc so that each logical font (by name) appears
// exactly once, renumbers the page-font references accordingly, and
// merges the per-page duplicates this creates. Fonts are numbered in
// first-encounter order; page fonts and glyphs are sorted by their
// numeric index. Glyph placements are neither deduplicated nor
// reordered.
func consolidate(doc *Document) {
	// Unique font names in first-encounter order.
	newNum := make(map[string]int)
	renum := make(map[int]int)
	var fonts []Font
	for _, f := range doc.Fonts {
		n, ok := newNum[f.FontName]
		if !ok {
			n = len(fonts)
			newNum[f.FontName] = n
			fonts = append(fonts, Font{
				FontNum:      n,
				FontName:     f.FontName,
				FontPath:     f.FontPath,
				FontFeatures: f.FontFeatures,
			})
		}
		renum[f.FontNum] = n
	}
	if fonts == nil {
		fonts = []Font{}
	}
	doc.Fonts = fonts

	for i := range doc.Pages {
		page := &doc.Pages[i]
		// Rewrite font numbers, then merge page fonts that fell together.
		merged := make(map[int]int) // new fontNum -> index into pageFonts
		var pageFonts []PageFont
		for _, pf := range page.PageFonts {
			n, ok := renum[pf.FontNum]
			if !ok {
				n = pf.FontNum // unknown number, keep as is
			}
			if j, ok := merged[n]; ok {
				pageFonts[j].Glyphs = append(pageFonts[j].Glyphs, pf.Glyphs...)
				continue
			}
			merged[n] = len(pageFonts)
			pageFonts = append(pageFonts, PageFont{FontNum: n, Glyphs: pf.Glyphs})
		}
		sort.Slice(pageFonts, func(a, b int) bool {
			return pageFonts[a].FontNum < pageFonts[b].FontNum
		})
		for j := range pageFonts {
			pageFonts[j].Glyphs = mergeGlyphs(pageFonts[j].Glyphs)
		}
		if pageFonts == nil {
			pageFonts = []PageFont{}
		}
		page.PageFonts = pageFonts
	}
}

// mergeGlyphs folds duplicate glyph indices by concatenating their size
// lists, folds duplicate sizes by concatenating their placements, and
// sorts the result by glyph index.
func mergeGlyphs(glyphs []Glyph) []Glyph {
	byIndex := make(map[int]int)
	var out []Glyph
	for _, g := range glyphs {
		j, ok := byIndex[g.GlyphIndex]
		if !ok {
			byIndex[g.GlyphIndex] = len(out)
			out = append(out, g)
			continue
		}
		out[j].GlyphSizes = mergeSizes(out[j].GlyphSizes, g.GlyphSizes)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].GlyphIndex < out[b].GlyphIndex
	})
	return out
}

func mergeSizes(dst, src []GlyphSize) []GlyphSize {
	for _, s := range src {
		found := false
		for i := range dst {
			if dst[i].Sz == s.Sz {
				dst[i].GlyphPlacements = append(dst[i].GlyphPlacements, s.GlyphPlacements...)
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

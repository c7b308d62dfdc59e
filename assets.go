package dvidecode

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/npillmayer/dvidecode/dvi"
	"github.com/npillmayer/dvidecode/dviluatab"
	"github.com/npillmayer/dvidecode/internal/fontload"
)

// assetLoader resolves font assets for the core decoder: the font file
// through the caller-supplied name→directory map, the glyph-description
// table below the Lua root. It is the default dvi.AssetLoader of this
// module.
type assetLoader struct {
	fontMap map[string]string
	fontDir string
	luaRoot string
}

// LoadFont parses the font file for the given name. Names missing from
// the map fall back to the configured font directory, then to the
// fnt_def's own directory component.
func (l *assetLoader) LoadFont(ctx context.Context, name, dir string) (dvi.FontAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fontDir, ok := l.fontMap[name]
	if !ok {
		fontDir = l.fontDir
	}
	if fontDir == "" {
		fontDir = dir
	}
	if fontDir == "" {
		return nil, fmt.Errorf("font %s: no directory mapping", name)
	}
	path := filepath.Join(fontDir, name)
	sf, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", name, err)
	}
	tracer().Debugf("loaded font asset %s (%s)", name, sf.Fontname)
	return fontload.NewMetrics(sf), nil
}

// LoadGlyphTable evaluates the glyph-description file for the font.
func (l *assetLoader) LoadGlyphTable(ctx context.Context, fontName string) (dvi.GlyphTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dviluatab.LoadTable(l.luaRoot, fontName)
}

/*
Package dvidecode decodes DVI files written by Lua-enabled extended TeX
engines into a structured document of pixel-exact glyph placements,
rules and image specials.

The heavy lifting happens in the sister package dvi, which interprets
the opcode stream with a two-pass stack machine. This package is the
facade: it bundles the decode options, resolves font names to font
files through a caller-supplied map, parses the font assets with
golang.org/x/image/font/sfnt, and loads the auxiliary per-font
glyph-description tables from their Lua files.

A minimal decode looks like this:

	doc, err := dvidecode.Decode(ctx, dviBytes, dvidecode.Options{
	    FontMap: map[string]string{"latinmodern-math.otf": "/usr/share/fonts/otf"},
	    LuaRoot: "/var/cache/luafonts",
	})

The resulting Document lists, for every page, the pixel coordinates of
each glyph of each font, the rectangles of all rules, and the
placements of embedded PostScript images. Rasterizing those placements
is the client's business.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dvidecode

import (
	"context"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/dvidecode/dvi"
)

// tracer writes to trace with key 'dvidecode'
func tracer() tracing.Trace {
	return tracing.Select("dvidecode")
}

// Options bundle the inputs of a decode besides the DVI bytes.
type Options struct {
	DisplayDPI int               // target display resolution; 96 if zero
	Mag        int               // overrides the file's magnification when > 0
	FontMap    map[string]string // font name → directory holding the font file
	FontDir    string            // fallback directory for names missing from FontMap
	LuaRoot    string            // root directory of the glyph-description files
	MaxDrift   int               // pixel drift control; 0 disables
	Debug      bool              // trace each opcode with its byte offset
	Diag       func(string)      // sink for one-line diagnostics
}

// Decode decodes a DVI byte stream into a Document. Font assets are
// resolved through opts.FontMap and the glyph-description tables below
// opts.LuaRoot; both are loaded concurrently while the postamble is
// processed, before any page is translated.
func Decode(ctx context.Context, dviBytes []byte, opts Options) (*dvi.Document, error) {
	loader := &assetLoader{fontMap: opts.FontMap, fontDir: opts.FontDir, luaRoot: opts.LuaRoot}
	params := dvi.Params{
		DisplayDPI: opts.DisplayDPI,
		Mag:        opts.Mag,
		MaxDrift:   opts.MaxDrift,
		Debug:      opts.Debug,
		Diag:       opts.Diag,
	}
	tracer().Infof("decoding %d bytes of DVI input", len(dviBytes))
	return dvi.DecodeWith(ctx, dviBytes, params, loader)
}

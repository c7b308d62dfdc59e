/*
Package dviluatab loads the auxiliary per-font glyph-description tables
that accompany the extended engines' DVI output.

For a font named "<basename>.<ext>" the engine writes a file
"<basename>.lua" (lowercased) holding a Lua table. The decoder consumes
the object at key "descriptions": a mapping whose keys are DVI character
codes and whose values carry at least an "index" (the output glyph
index) and optionally a "unicode" value, either a single code point or
an array of code points for a ligature.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dviluatab

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/npillmayer/dvidecode/dvi"
)

// tracer writes to trace with key 'dvidecode'
func tracer() tracing.Trace {
	return tracing.Select("dvidecode")
}

var lowercase = cases.Lower(language.Und)

// TableFile returns the path of the glyph-description file for a font
// name, below the given root directory. The extension of the font name
// is replaced by ".lua" and the basename is lowercased, as the engine
// writes the files with case-folded names.
func TableFile(luaRoot, fontName string) string {
	base := fontName
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(luaRoot, lowercase.String(base)+".lua")
}

// LoadTable evaluates the glyph-description file for fontName and
// returns its "descriptions" mapping in the decoder's form.
func LoadTable(luaRoot, fontName string) (dvi.GlyphTable, error) {
	path := TableFile(luaRoot, fontName)
	L := lua.NewState()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("glyph table %s: %w", path, err)
	}
	ret := L.Get(-1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("glyph table %s: file does not return a table", path)
	}
	descr, ok := tbl.RawGetString("descriptions").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("glyph table %s: no 'descriptions' table", path)
	}
	table := make(dvi.GlyphTable)
	descr.ForEach(func(key, value lua.LValue) {
		entry, ok := value.(*lua.LTable)
		if !ok {
			return
		}
		var e dvi.GlyphEntry
		if idx, ok := entry.RawGetString("index").(lua.LNumber); ok {
			e.Index = int(idx)
		}
		e.Unicode = unicodeOf(entry.RawGetString("unicode"))
		table[keyString(key)] = e
	})
	tracer().Debugf("glyph table %s: %d descriptions", path, len(table))
	return table, nil
}

// keyString normalizes a Lua table key to the decimal string the
// decoder looks characters up by.
func keyString(key lua.LValue) string {
	if n, ok := key.(lua.LNumber); ok {
		return strconv.Itoa(int(n))
	}
	return key.String()
}

// unicodeOf reads a "unicode" value: a scalar code point, an array of
// code points (a ligature), or absent.
func unicodeOf(v lua.LValue) []rune {
	switch u := v.(type) {
	case lua.LNumber:
		return []rune{rune(int(u))}
	case *lua.LTable:
		var seq []rune
		u.ForEach(func(_, cp lua.LValue) {
			if n, ok := cp.(lua.LNumber); ok {
				seq = append(seq, rune(int(n)))
			}
		})
		return seq
	}
	return nil
}

/*
Package dvi decodes the Device-Independent (DVI) files written by
Lua-enabled extended TeX engines.

A DVI file is a dense stream of variable-length opcodes driving a simple
stack machine: six fixed-point position registers, a register stack, and
a current-font register. Package dvi runs that machine in two passes. The
first pass reads the preamble, locates the postamble by scanning back
over the 223-byte trailer, and collects all font definitions, loading the
referenced font assets concurrently. The second pass translates every
page, emitting for each typeset glyph its pixel position, for each rule
its pixel rectangle, and for each PSfile special the placement of the
embedded image. The result is a Document that any glyph renderer can
rasterize without further knowledge of TeX.

Package dvi does not parse font files and does not evaluate the auxiliary
per-font glyph-description tables itself. Both arrive through the
AssetLoader interface; sister packages of this module provide
implementations on top of golang.org/x/image/font/sfnt and a Lua
interpreter. From this point of view, dvi is a low-level package: it
knows the wire format and the arithmetic, and nothing about rendering.

Positions follow the conventions of DVItype: DVI units are converted to
pixels with a conversion factor derived from the file's numerator,
denominator and magnification, horizontal spacing is rounded with the
thin-space thresholds of the original program, and rule dimensions are
rounded up so that adjacent rules abut without gaps.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dvi

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dvidecode'
func tracer() tracing.Trace {
	return tracing.Select("dvidecode")
}

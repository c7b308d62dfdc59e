package dvi

import (
	"context"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// The page driver: two passes over the byte stream. Pass 1 reads the
// preamble, walks back over the trailer to the postamble, and processes
// the font definitions there, loading the external assets concurrently.
// Pass 2 translates the pages in stream order.

// Params are the decode inputs of the core. The facade package wraps
// them together with the asset resolution options.
type Params struct {
	DisplayDPI int          // target display resolution; 96 if zero
	Mag        int          // overrides the file's magnification when > 0
	MaxDrift   int          // pixel drift control; 0 disables
	Debug      bool         // trace each opcode with its byte offset
	Diag       func(string) // sink for one-line diagnostics
}

// DecodeWith decodes a DVI byte stream into a Document, resolving font
// assets through the given loader. Fatal conditions return a
// *DecodeError; non-fatal ones go to the diagnostic sink and decoding
// continues.
func DecodeWith(ctx context.Context, data []byte, params Params, loader AssetLoader) (*Document, error) {
	if params.DisplayDPI <= 0 {
		params.DisplayDPI = 96
	}
	d := &driver{
		m:      newMachine(data, &diagSink{sink: params.Diag}),
		loader: loader,
		doc:    &Document{Fonts: []Font{}, Pages: []Page{}},
	}
	d.m.dpi = params.DisplayDPI
	d.m.maxDrift = params.MaxDrift
	d.m.debug = params.Debug
	d.magOverride = params.Mag
	if err := d.run(ctx); err != nil {
		return nil, err
	}
	return d.doc, nil
}

type driver struct {
	m           *machine
	loader      AssetLoader
	doc         *Document
	magOverride int
	afterPre    int // cursor position after the preamble
	postLoc     int // byte offset of the post opcode
	firstBop    int // backpointer stored in the postamble
	pageCount   int
}

func (d *driver) run(ctx context.Context) error {
	if err := d.readPreamble(); err != nil {
		return err
	}
	if err := d.findPostamble(); err != nil {
		return err
	}
	if err := d.readPostamble(ctx); err != nil {
		return err
	}
	if err := d.translatePages(); err != nil {
		return err
	}
	for _, e := range d.m.fonts.order {
		f := d.m.fonts.byNum[e]
		d.doc.Fonts = append(d.doc.Fonts, Font{
			FontNum:      f.num,
			FontName:     f.name,
			FontPath:     f.path,
			FontFeatures: f.features,
		})
	}
	consolidate(d.doc)
	d.m.state = stateDone
	return nil
}

// --- Pass 1: preamble and postamble ------------------------------------

func (d *driver) readPreamble() error {
	m := d.m
	if m.r.u8() != opPre {
		return badDVI(ErrBadPreamble, 0, "first byte isn't start of preamble!")
	}
	if id := m.r.u8(); id != idByte {
		// id 3 would be the right-to-left extended format, which we do
		// not support.
		return badDVI(ErrBadPreamble, 1, "identification byte should be %d, is %d", idByte, id)
	}
	m.num = m.r.i32()
	if m.num <= 0 {
		return badDVI(ErrNonpositiveUnits, 2, "numerator is %d", m.num)
	}
	m.den = m.r.i32()
	if m.den <= 0 {
		return badDVI(ErrNonpositiveUnits, 6, "denominator is %d", m.den)
	}
	m.mag = m.r.i32()
	if d.magOverride > 0 {
		m.mag = d.magOverride
	} else if m.mag <= 0 {
		return badDVI(ErrNonpositiveMagnification, 10, "magnification is %d", m.mag)
	}
	m.trueConv = (float64(m.num) / 254000.0) * (float64(m.dpi) / float64(m.den))
	m.conv = m.trueConv * (float64(m.mag) / 1000.0)
	k := m.r.u8()
	d.doc.Comment = string(m.r.bytes(k))
	d.afterPre = m.r.loc()
	if m.r.atEnd() {
		return badDVI(ErrTruncatedInput, m.r.loc(), "the file ended prematurely")
	}
	tracer().Debugf("preamble: num/den=%d/%d mag=%d, %.8f pixels per DVI unit",
		m.num, m.den, m.mag, m.conv)
	return nil
}

// findPostamble scans backward from the end of the buffer past the 223
// trailer bytes and validates the postamble pointer.
func (d *driver) findPostamble() error {
	m := d.m
	m.state = statePostFinding
	n := len(m.r.data)
	if n < 53 {
		return badDVI(ErrTruncatedInput, n, "only %d bytes long", n)
	}
	i := n - 1
	for i >= 0 && m.r.data[i] == trailerByte {
		i--
	}
	if i < 0 {
		return badDVI(ErrInsufficientTrailer, 0, "all 223s")
	}
	if n-1-i < 4 {
		return badDVI(ErrInsufficientTrailer, i, "only %d trailing 223 bytes", n-1-i)
	}
	if int(m.r.data[i]) != idByte {
		return badDVI(ErrMissingIDByte, i, "ID byte is %d", m.r.data[i])
	}
	m.r.peekSet(i - 4)
	q := m.r.i32()
	if q < 0 || q > n-33 {
		return badDVI(ErrBadPostamblePointer, i-4, "post pointer %d", q)
	}
	m.r.peekSet(q)
	if k := m.r.u8(); k != opPost {
		return badDVI(ErrBadPostambleMarker, q, "byte %d is not post", q)
	}
	d.postLoc = q
	tracer().Debugf("postamble starts at byte %d", q)
	return nil
}

// readPostamble processes the postamble: the duplicate conversion
// parameters, the claimed maxima, and all font definitions. Asset loads
// are dispatched as they are encountered and awaited as a set before the
// function returns.
func (d *driver) readPostamble(ctx context.Context) error {
	m := d.m
	m.state = statePost
	d.firstBop = m.r.i32()
	if num := m.r.i32(); num != m.num {
		m.diag.warnf(d.postLoc, "numerator doesn't match the preamble!")
	}
	if den := m.r.i32(); den != m.den {
		m.diag.warnf(d.postLoc, "denominator doesn't match the preamble!")
	}
	if mag := m.r.i32(); mag != m.mag && d.magOverride == 0 {
		m.diag.warnf(d.postLoc, "magnification doesn't match the preamble!")
	}
	m.maxV = m.r.i32()
	m.maxH = m.r.i32()
	m.maxS = m.r.u16()
	m.totalPages = m.r.u16()
	tracer().Debugf("postamble claims maxv=%d maxh=%d maxs=%d pages=%d",
		m.maxV, m.maxH, m.maxS, m.totalPages)

	g, gctx := errgroup.WithContext(ctx)
	var k int
	for {
		k = m.r.u8()
		if k >= opFntDef1 && k < opFntDef1+4 {
			e := m.firstPar(k)
			if f, isNew := m.defineFont(e); isNew {
				d.scheduleLoad(gctx, g, f)
			}
			continue
		}
		if k == opNop {
			continue
		}
		break
	}
	if k != opPostPost {
		m.diag.warnf(m.r.loc()-1, "byte %d is not postpost!", m.r.loc()-1)
	}
	if q := m.r.i32(); q != d.postLoc {
		m.diag.warnf(m.r.loc()-4, "bad postamble pointer in byte %d!", m.r.loc()-4)
	}
	if id := m.r.u8(); id != idByte {
		m.diag.warnf(m.r.loc()-1, "identification in byte %d should be %d!", m.r.loc()-1, idByte)
	}
	sigStart := m.r.loc()
	for !m.r.atEnd() {
		if b := m.r.u8(); b != trailerByte {
			return badDVI(ErrInsufficientTrailer, m.r.loc()-1, "signature in byte %d should be 223", m.r.loc()-1)
		}
	}
	if m.r.loc()-sigStart < 4 {
		m.diag.warnf(sigStart, "not enough signature bytes at end of file (%d)", m.r.loc()-sigStart)
	}
	if err := g.Wait(); err != nil {
		return badDVI(ErrFontAssetLoad, -1, "%s", err.Error())
	}
	return nil
}

// scheduleLoad dispatches the asset load for a freshly defined font.
// Each load populates its own descriptor, so the group members never
// share mutable state.
func (d *driver) scheduleLoad(ctx context.Context, g *errgroup.Group, f *dviFont) {
	if d.loader == nil {
		d.m.diag.warnf(-1, "font %d (%s): no asset loader configured, widths unavailable", f.num, f.name)
		return
	}
	g.Go(func() error {
		asset, err := d.loader.LoadFont(ctx, f.name, f.path)
		if err != nil {
			return err
		}
		glyphs, err := d.loader.LoadGlyphTable(ctx, f.name)
		if err != nil {
			return err
		}
		d.m.attachAsset(f, asset, glyphs)
		return nil
	})
}

// --- Pass 2: page translation ------------------------------------------

// translatePages scans from the end of the preamble for bop or post,
// consuming any intervening nop and fnt_def commands, and translates
// each page in stream order.
func (d *driver) translatePages() error {
	m := d.m
	m.r.peekSet(d.afterPre)
	m.state = stateScanning
	lastBop := -1
	for {
		if m.r.atEnd() {
			return badDVI(ErrTruncatedInput, m.r.loc(), "the file ended prematurely")
		}
		a := m.r.loc()
		k := m.r.u8()
		switch {
		case k >= opFntDef1 && k < opFntDef1+4:
			if _, isNew := m.defineFont(m.firstPar(k)); isNew {
				m.diag.warnf(a, "font wasn't defined in the postamble")
			}
		case k == opNop:
			// skip
		case k == opBop:
			page := Page{}
			for i := 0; i < 10; i++ {
				page.Counts[i] = int32(m.r.i32())
			}
			if prev := m.r.i32(); prev != lastBop {
				m.diag.warnf(m.r.loc()-4, "backpointer should be %d, but is %d!", lastBop, prev)
			}
			lastBop = a
			d.pageCount++
			m.page = &page
			if err := m.doPage(); err != nil {
				return err
			}
			d.doc.Pages = append(d.doc.Pages, page)
			m.page = nil
		case k == opPost:
			return d.checkClaims()
		case k >= opPostPost+1:
			return badDVI(ErrIllegalCommandInSkip, a, "undefined command %d between pages", k)
		default:
			return badDVI(ErrNonBopWhereBopExpected, a, "byte %d is not bop", a)
		}
	}
}

// checkClaims compares the accumulated facts against the postamble.
func (d *driver) checkClaims() error {
	m := d.m
	if m.maxSSoFar > m.maxS {
		m.diag.warnf(-1, "warning: observed maxstackdepth was %d", m.maxSSoFar)
	}
	if d.pageCount != m.totalPages {
		m.diag.warnf(-1, "there are really %d pages, not %d!", d.pageCount, m.totalPages)
	}
	return nil
}

// --- Specials ----------------------------------------------------------

// special reads the k payload bytes of an xxx command. A payload
// starting with "PSfile=" places an embedded PostScript image; anything
// else is passed over, with a diagnostic if it carries non-printable
// characters.
func (m *machine) special(a, k int) {
	if k < 0 {
		m.diag.warnf(a, "special string of negative length!")
		return
	}
	raw := m.r.bytes(k)
	s := string(raw)
	if strings.HasPrefix(s, "PSfile=") {
		m.psFile(a, s[len("PSfile="):])
		return
	}
	for _, b := range raw {
		if b < 0o40 || b > 0o176 {
			m.diag.warnf(a, "non-ASCII character in xxx command!")
			break
		}
	}
	m.trace(a, "xxx '%s'", s)
}

// psFile parses the body of a PSfile special: a double-quoted file name
// followed by space-separated key=value pairs, and emits the image
// placement at the current position.
func (m *machine) psFile(a int, s string) {
	s = strings.TrimSpace(s)
	var fileName string
	if strings.HasPrefix(s, `"`) {
		j := strings.Index(s[1:], `"`)
		if j < 0 {
			m.diag.warnf(a, "PSfile special with unterminated file name")
			return
		}
		fileName = s[1 : 1+j]
		s = s[j+2:]
	} else if j := strings.IndexByte(s, ' '); j >= 0 {
		fileName, s = s[:j], s[j:]
	} else {
		fileName, s = s, ""
	}
	var llx, lly, urx, ury, rwi, rhi int
	for _, tok := range strings.Fields(s) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			continue
		}
		switch key {
		case "llx":
			llx = n
		case "lly":
			lly = n
		case "urx":
			urx = n
		case "ury":
			ury = n
		case "rwi":
			rwi = n
		case "rhi":
			rhi = n
		}
	}
	widthScale := 1.0
	if rwi != 0 && urx != llx {
		widthScale = (float64(rwi) / 10.0) / float64(urx-llx)
	}
	heightScale := widthScale
	if rhi != 0 && ury != lly {
		heightScale = (float64(rhi) / 10.0) / float64(ury-lly)
	}
	pixelScale := (float64(m.dpi) / 72.0) * (float64(m.mag) / 1000.0)
	w := int(math.Floor(float64(urx-llx) * widthScale * pixelScale))
	h := int(math.Floor(float64(ury-lly) * heightScale * pixelScale))
	m.page.Images = append(m.page.Images, Image{
		FileName: fileName,
		X:        m.hh,
		Y:        m.vv - h,
		W:        w,
		H:        h,
	})
}

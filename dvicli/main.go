package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"

	"github.com/npillmayer/dvidecode"
	"github.com/npillmayer/dvidecode/dvi"
)

// tracer traces with key 'dvidecode.cli'
func tracer() tracing.Trace {
	return tracing.Select("dvidecode.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.dvidecode":     "Info",
		"trace.dvidecode.cli": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	dvifile := flag.String("dvi", "", "DVI file to decode")
	fontdir := flag.String("fontdir", "", "Directory holding the font files")
	luadir := flag.String("luadir", "", "Root directory of the glyph-description files")
	dpi := flag.Int("dpi", 96, "Target display resolution")
	mag := flag.Int("mag", 0, "Magnification override (thousandths), 0 = use the file's")
	flag.Parse()
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
		tracing.Select("dvidecode").SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	pterm.Info.Println("Welcome to the DVI decoder CLI")
	if *dvifile == "" {
		pterm.Error.Println("no DVI file given, use -dvi")
		os.Exit(2)
	}
	doc, err := decode(*dvifile, *fontdir, *luadir, *dpi, *mag, *tlevel == "Debug")
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(3)
	}
	pterm.Info.Printf("decoded %d page(s), %d font(s)\n", len(doc.Pages), len(doc.Fonts))
	//
	// set up REPL
	repl, err := readline.New("dvi > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	intp := &Intp{repl: repl, doc: doc}
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func decode(dvifile, fontdir, luadir string, dpi, mag int, debug bool) (*dvi.Document, error) {
	data, err := os.ReadFile(dvifile)
	if err != nil {
		return nil, err
	}
	opts := dvidecode.Options{
		DisplayDPI: dpi,
		Mag:        mag,
		FontDir:    fontdir,
		LuaRoot:    luadir,
		Debug:      debug,
		Diag: func(line string) {
			pterm.Warning.Println(line)
		},
	}
	return dvidecode.Decode(context.Background(), data, opts)
}

// Intp is our interpreter object
type Intp struct {
	doc  *dvi.Document
	repl *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit := intp.execute(line)
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	arg := -1
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			arg = n
		}
	}
	switch cmd {
	case "quit":
		return true
	case "help":
		intp.help()
	case "fonts":
		intp.fonts()
	case "pages":
		intp.pages()
	case "page":
		intp.page(arg)
	case "rules":
		intp.rules(arg)
	case "images":
		intp.images(arg)
	case "counts":
		intp.counts(arg)
	case "json":
		intp.json()
	default:
		pterm.Error.Printf("unknown command %q, try 'help'\n", cmd)
	}
	return false
}

func (intp *Intp) help() {
	pterm.Println("commands:")
	pterm.Println("  fonts        list the document's fonts")
	pterm.Println("  pages        list the pages with their content sizes")
	pterm.Println("  page n       show the glyph placements of page n")
	pterm.Println("  rules n      show the rules of page n")
	pterm.Println("  images n     show the image placements of page n")
	pterm.Println("  counts n     show the \\count registers of page n")
	pterm.Println("  json         dump the whole document as JSON")
	pterm.Println("  quit         leave")
}

func (intp *Intp) fonts() {
	rows := pterm.TableData{{"#", "Name", "Path", "Features"}}
	for _, f := range intp.doc.Fonts {
		rows = append(rows, []string{
			strconv.Itoa(f.FontNum), f.FontName, f.FontPath, f.FontFeatures,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (intp *Intp) pages() {
	rows := pterm.TableData{{"Page", "Fonts", "Rules", "Images"}}
	for i, p := range intp.doc.Pages {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(len(p.PageFonts)),
			strconv.Itoa(len(p.Rules)),
			strconv.Itoa(len(p.Images)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (intp *Intp) lookupPage(n int) *dvi.Page {
	if n < 0 || n >= len(intp.doc.Pages) {
		pterm.Error.Printf("no page %d, document has %d page(s)\n", n, len(intp.doc.Pages))
		return nil
	}
	return &intp.doc.Pages[n]
}

func (intp *Intp) page(n int) {
	p := intp.lookupPage(n)
	if p == nil {
		return
	}
	for _, pf := range p.PageFonts {
		pterm.Printf("font %d:\n", pf.FontNum)
		for _, g := range pf.Glyphs {
			for _, gs := range g.GlyphSizes {
				for _, gp := range gs.GlyphPlacements {
					pterm.Printf("  glyph %4d @ %2dpx  (%d,%d)\n", g.GlyphIndex, gs.Sz, gp.X, gp.Y)
				}
			}
		}
	}
}

func (intp *Intp) rules(n int) {
	p := intp.lookupPage(n)
	if p == nil {
		return
	}
	for _, r := range p.Rules {
		pterm.Printf("  rule %dx%d @ (%d,%d)\n", r.W, r.H, r.X, r.Y)
	}
}

func (intp *Intp) images(n int) {
	p := intp.lookupPage(n)
	if p == nil {
		return
	}
	for _, img := range p.Images {
		pterm.Printf("  image %q %dx%d @ (%d,%d)\n", img.FileName, img.W, img.H, img.X, img.Y)
	}
}

func (intp *Intp) counts(n int) {
	p := intp.lookupPage(n)
	if p == nil {
		return
	}
	pterm.Printf("  \\count0..9 = %v\n", p.Counts)
}

func (intp *Intp) json() {
	out, err := json.MarshalIndent(intp.doc, "", "  ")
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	fmt.Println(string(out))
}

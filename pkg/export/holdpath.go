// Package export writes fund-trail artifacts for case files: the chain of
// accounts leading to a held account (SVG or PNG) and Markdown reports for a
// single account.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// HoldPathOptions controls hold path export.
type HoldPathOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Ack    string // Acknowledgement number printed in the header
	// Nodes is the root-to-account path, as returned by Tree.PathTo or
	// FindPath. The synthetic root is dropped.
	Nodes []*trail.Node
}

// SaveHoldPath renders the chain from the victim down to the selected account
// as a vertical sequence of cards.
func SaveHoldPath(opts HoldPathOptions) error {
	format, path, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	layout, err := buildChain(opts.Nodes, opts.Ack)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case "png":
		return renderChainPNG(path, layout)
	default:
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := renderChainSVG(f, layout); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// WriteHoldPathSVG renders the chain as SVG to w.
func WriteHoldPathSVG(w io.Writer, nodes []*trail.Node, ack string) error {
	layout, err := buildChain(nodes, ack)
	if err != nil {
		return err
	}
	return renderChainSVG(w, layout)
}

func resolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- layout ----------------------------------------------------------------

type cardKind int

const (
	cardVictim cardKind = iota
	cardHop
	cardTarget
)

type card struct {
	Kind  cardKind
	Title string
	Lines []string
	X, Y  float64
	W, H  float64
}

type chainLayout struct {
	Title  string
	Cards  []card
	Width  int
	Height int
	Header float64
}

const (
	chainWidth    = 1000.0
	cardWidth     = 370.0
	cardMinHeight = 170.0
	cardGap       = 90.0
	chainMargin   = 60.0
	headerHeight  = 80.0
	titleSize     = 26.0
	lineSize      = 22.0
	lineHeight    = 1.2 * lineSize
	bankWrap      = 25
)

func buildChain(nodes []*trail.Node, ack string) (chainLayout, error) {
	if len(nodes) > 0 && nodes[0].Depth == 0 {
		nodes = nodes[1:]
	}
	if len(nodes) == 0 {
		return chainLayout{}, fmt.Errorf("no accounts on the path")
	}

	title := "Fund Trail"
	if strings.TrimSpace(ack) != "" {
		title = "Fund Trail: Acknowledgement No " + strings.TrimSpace(ack)
	}
	l := chainLayout{Title: title, Header: headerHeight, Width: int(chainWidth)}

	y := chainMargin + headerHeight
	for i, n := range nodes {
		kind := cardHop
		switch {
		case i == 0:
			kind = cardVictim
		case i == len(nodes)-1:
			kind = cardTarget
		}
		c := card{Kind: kind, Title: cardTitle(kind, n), Lines: cardLines(kind, n)}
		c.W = cardWidth
		c.H = max(cardMinHeight, titleSize+float64(len(c.Lines))*lineHeight+48)
		c.X = (chainWidth - cardWidth) / 2
		c.Y = y
		l.Cards = append(l.Cards, c)
		y += c.H + cardGap
	}
	l.Height = int(y - cardGap + chainMargin)
	return l, nil
}

func cardTitle(kind cardKind, n *trail.Node) string {
	if kind == cardVictim {
		return "Victim Account"
	}
	return "Layer: " + displayLayer(n)
}

func displayLayer(n *trail.Node) string {
	if l := n.DisplayLayer(); l > 0 {
		return fmt.Sprint(l)
	}
	return model.NotAvailable
}

func cardLines(kind cardKind, n *trail.Node) []string {
	d := n.Data
	bank := d.Bank
	if kind == cardVictim && d.Action != "" {
		bank = d.Action
	}
	if strings.TrimSpace(bank) == "" {
		bank = "Unknown Bank"
	}

	lines := []string{"Account No: " + model.OrNA(d.Name.Value)}
	for i, part := range wrapWords(bank, bankWrap) {
		if i == 0 {
			part = "Bank : " + part
		}
		lines = append(lines, part)
	}

	switch kind {
	case cardTarget:
		lines = append(lines,
			"IFSC Code: "+model.OrNA(d.IFSC),
			"Transacted Amount: "+model.FormatINR(d.Amount.OrZero()),
		)
		if d.Hold != nil && d.Hold.Amount.Valid {
			lines = append(lines, "Put-On hold Amount: "+model.FormatINR(d.Hold.Amount.Amount))
		}
	case cardHop:
		lines = append(lines,
			"IFSC: "+model.OrNA(d.IFSC),
			"Transacted Amt: "+model.FormatINR(d.Amount.OrZero()),
		)
	}
	return lines
}

// wrapWords greedily packs words into lines of at most width characters. A
// single longer word gets its own line.
func wrapWords(s string, width int) []string {
	var lines []string
	var cur string
	for _, w := range strings.Fields(s) {
		switch {
		case cur == "":
			cur = w
		case len([]rune(cur))+1+len([]rune(w)) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// --- rendering -------------------------------------------------------------

var (
	colorVictim   = color.RGBA{0xa7, 0xf3, 0xd0, 0xff}
	colorTarget   = color.RGBA{0xf8, 0x62, 0x62, 0xff}
	colorHop      = color.RGBA{0xfc, 0xfa, 0xf9, 0xff}
	colorStroke   = color.RGBA{0x1e, 0x29, 0x3b, 0xff}
	colorLink     = color.RGBA{0x88, 0x88, 0x88, 0xff}
	colorText     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func cardColor(k cardKind) color.RGBA {
	switch k {
	case cardVictim:
		return colorVictim
	case cardTarget:
		return colorTarget
	default:
		return colorHop
	}
}

func renderChainSVG(w io.Writer, l chainLayout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(16, 16, l.Width-32, int(l.Header-16), 10, 10, "fill:"+css(colorHeaderBG))
	canvas.Text(l.Width/2, 56, l.Title, fmt.Sprintf("text-anchor:middle;fill:%s;font-size:20px;font-family:Arial, sans-serif;font-weight:bold", css(colorText)))

	for i, c := range l.Cards {
		x, y := int(c.X), int(c.Y)
		canvas.Roundrect(x, y, int(c.W), int(c.H), 14, 14,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5", css(cardColor(c.Kind)), css(colorStroke)))
		cx := x + int(c.W)/2
		ty := y + 40
		canvas.Text(cx, ty, c.Title, fmt.Sprintf("text-anchor:middle;fill:%s;font-size:%.0fpx;font-family:Arial, sans-serif;font-weight:bold", css(colorText), titleSize))
		for j, line := range c.Lines {
			canvas.Text(cx, ty+int(float64(j+1)*lineHeight)+6, line,
				fmt.Sprintf("text-anchor:middle;fill:%s;font-size:%.0fpx;font-family:Arial, sans-serif", css(colorText), lineSize))
		}
		if i < len(l.Cards)-1 {
			next := l.Cards[i+1]
			canvas.Line(cx, y+int(c.H), cx, int(next.Y),
				fmt.Sprintf("stroke:%s;stroke-width:2", css(colorLink)))
			ay := int(next.Y)
			canvas.Polygon([]int{cx, cx - 6, cx + 6}, []int{ay, ay - 10, ay - 10}, "fill:"+css(colorLink))
		}
	}

	canvas.End()
	return nil
}

// basicfont only covers ASCII, so the rupee sign is spelled out in PNGs.
var asciiCurrency = strings.NewReplacer("₹", "Rs.")

func renderChainPNG(path string, l chainLayout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, l.Header-16, 10)
	dc.Fill()
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(l.Title, float64(l.Width)/2, 56, 0.5, 0.5)

	for i, c := range l.Cards {
		dc.SetColor(cardColor(c.Kind))
		dc.DrawRoundedRectangle(c.X, c.Y, c.W, c.H, 14)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.5)
		dc.DrawRoundedRectangle(c.X, c.Y, c.W, c.H, 14)
		dc.Stroke()

		cx := c.X + c.W/2
		ty := c.Y + 36
		dc.SetColor(colorText)
		dc.DrawStringAnchored(c.Title, cx, ty, 0.5, 0.5)
		for j, line := range c.Lines {
			dc.DrawStringAnchored(asciiCurrency.Replace(line), cx, ty+float64(j+1)*lineHeight, 0.5, 0.5)
		}

		if i < len(l.Cards)-1 {
			next := l.Cards[i+1]
			dc.SetColor(colorLink)
			dc.SetLineWidth(2)
			dc.DrawLine(cx, c.Y+c.H, cx, next.Y)
			dc.Stroke()
			dc.NewSubPath()
			dc.MoveTo(cx, next.Y)
			dc.LineTo(cx-6, next.Y-10)
			dc.LineTo(cx+6, next.Y-10)
			dc.ClosePath()
			dc.Fill()
		}
	}

	return dc.SavePNG(path)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render draws keyword weights as a word cloud PNG.
//
// Words are placed largest first along an Archimedean spiral that starts at
// the canvas centre. A word that collides with every candidate position is
// retried at smaller sizes down to MinFontSize and dropped after that. The
// layout depends only on the weights, so the same mapping always yields the
// same image.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

// Defaults for a zero-valued Renderer field.
const (
	DefaultWidth       = 800
	DefaultHeight      = 400
	DefaultMaxWords    = 200
	DefaultMinFontSize = 8
	DefaultMaxFontSize = 96
	DefaultBackground  = "#000000"
)

// DefaultPalette cycles through word colours in placement order.
var DefaultPalette = []string{"#FDE725", "#7AD151", "#22A884", "#2A788E", "#414487", "#F98E09", "#E8E8E8"}

const (
	spiralStep   = 0.1
	spiralGrowth = 1.5
	shrinkFactor = 0.85
	wordPadding  = 2.0
)

// Renderer holds the canvas settings.
type Renderer struct {
	Width       int
	Height      int
	MaxWords    int
	MinFontSize float64
	MaxFontSize float64
	Background  string
	Palette     []string

	font  *truetype.Font
	faces map[int]font.Face
}

// New returns a Renderer for cfg, filling unset fields with the defaults.
func New(cfg types.RenderConfig) *Renderer {
	r := &Renderer{
		Width:       cfg.Width,
		Height:      cfg.Height,
		MaxWords:    cfg.MaxWords,
		MinFontSize: cfg.MinFontSize,
		MaxFontSize: cfg.MaxFontSize,
		Background:  cfg.Background,
	}
	r.defaults()
	return r
}

func (r *Renderer) defaults() {
	if r.Width <= 0 {
		r.Width = DefaultWidth
	}
	if r.Height <= 0 {
		r.Height = DefaultHeight
	}
	if r.MaxWords <= 0 {
		r.MaxWords = DefaultMaxWords
	}
	if r.MinFontSize <= 0 {
		r.MinFontSize = DefaultMinFontSize
	}
	if r.MaxFontSize < r.MinFontSize {
		r.MaxFontSize = math.Max(DefaultMaxFontSize, r.MinFontSize)
	}
	if r.Background == "" {
		r.Background = DefaultBackground
	}
	if len(r.Palette) == 0 {
		r.Palette = DefaultPalette
	}
}

// Placement is one drawn word.
type Placement struct {
	Word   string
	Size   float64
	X, Y   float64 // centre
	W, H   float64
	Color  string
	Weight float64
}

func (p Placement) overlaps(q Placement) bool {
	return math.Abs(p.X-q.X)*2 < p.W+q.W && math.Abs(p.Y-q.Y)*2 < p.H+q.H
}

// Render draws weights and writes the PNG to path through a temp file and
// rename, replacing any previous image. An empty mapping yields a blank
// canvas.
func (r *Renderer) Render(weights types.Weights, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*.png")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := r.RenderTo(weights, tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// RenderTo draws weights and encodes the PNG to w.
func (r *Renderer) RenderTo(weights types.Weights, w io.Writer) error {
	dc, _, err := r.draw(weights)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// Layout returns the placements Render would draw.
func (r *Renderer) Layout(weights types.Weights) ([]Placement, error) {
	_, placed, err := r.draw(weights)
	return placed, err
}

func (r *Renderer) draw(weights types.Weights) (*gg.Context, []Placement, error) {
	r.defaults()
	if r.font == nil {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing font: %w", err)
		}
		r.font = f
		r.faces = make(map[int]font.Face)
	}

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetHexColor(r.Background)
	dc.Clear()

	ranked := positive(weights.Ranked())
	if len(ranked) > r.MaxWords {
		ranked = ranked[:r.MaxWords]
	}
	if len(ranked) == 0 {
		return dc, nil, nil
	}

	hi, lo := ranked[0].Weight, ranked[len(ranked)-1].Weight
	var placed []Placement
	for i, rk := range ranked {
		size := r.MaxFontSize
		if hi > lo {
			size = r.MinFontSize + (rk.Weight-lo)/(hi-lo)*(r.MaxFontSize-r.MinFontSize)
		}

		for ; size >= r.MinFontSize; size *= shrinkFactor {
			p, ok := r.place(dc, rk.Keyword, size, placed)
			if !ok {
				continue
			}
			p.Weight = rk.Weight
			p.Color = r.Palette[i%len(r.Palette)]
			dc.SetHexColor(p.Color)
			dc.DrawStringAnchored(p.Word, p.X, p.Y, 0.5, 0.5)
			placed = append(placed, p)
			break
		}
	}
	return dc, placed, nil
}

// place walks the spiral for word at size and returns the first position
// inside the canvas that collides with nothing placed.
func (r *Renderer) place(dc *gg.Context, word string, size float64, placed []Placement) (Placement, bool) {
	dc.SetFontFace(r.face(size))
	w, h := dc.MeasureString(word)
	w += wordPadding
	h += wordPadding
	W, H := float64(r.Width), float64(r.Height)
	if w > W || h > H {
		return Placement{}, false
	}

	cx, cy := W/2, H/2
	aspect := W / H
	maxR := math.Hypot(W, H) / 2

	for theta := 0.0; ; theta += spiralStep {
		rad := spiralGrowth * theta
		if rad > maxR {
			return Placement{}, false
		}
		p := Placement{
			Word: word,
			Size: size,
			X:    cx + rad*math.Cos(theta)*aspect,
			Y:    cy + rad*math.Sin(theta),
			W:    w,
			H:    h,
		}
		if p.X-w/2 < 0 || p.X+w/2 > W || p.Y-h/2 < 0 || p.Y+h/2 > H {
			continue
		}
		free := true
		for _, q := range placed {
			if p.overlaps(q) {
				free = false
				break
			}
		}
		if free {
			return p, true
		}
	}
}

func (r *Renderer) face(size float64) font.Face {
	key := int(math.Round(size * 4))
	if f, ok := r.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{Size: float64(key) / 4})
	r.faces[key] = f
	return f
}

func positive(ranked []types.RankedKeyword) []types.RankedKeyword {
	out := ranked[:0]
	for _, rk := range ranked {
		if rk.Weight > 0 && rk.Keyword != "" {
			out = append(out, rk)
		}
	}
	return out
}

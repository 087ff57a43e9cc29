package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	margin     = 10
	gap        = 6
	barHeight  = 80
	minBarsPx  = 240
	lineHeight = 13
)

// Label is the text printed around the symbol.
type Label struct {
	Title string // above the bars
	Price string // below the bars
}

// Render draws the barcode symbol with the label and returns a PNG.
func Render(code string, label Label) ([]byte, error) {
	if !ValidateFormat(code) {
		return nil, fmt.Errorf("invalid barcode %q", code)
	}

	var (
		symbol bc.Barcode
		err    error
	)
	if IsValidEAN13(code) {
		symbol, err = ean.Encode(code)
	} else {
		symbol, err = code128.Encode(code)
	}
	if err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}

	modules := symbol.Bounds().Dx()
	factor := 2
	if modules*factor < minBarsPx {
		factor = minBarsPx/modules + 1
	}
	scaled, err := bc.Scale(symbol, modules*factor, barHeight)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	width := scaled.Bounds().Dx() + 2*margin
	height := margin + lineHeight + gap + barHeight + gap + lineHeight + margin
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	barsTop := margin + lineHeight + gap
	draw.Draw(canvas, image.Rect(margin, barsTop, margin+scaled.Bounds().Dx(), barsTop+barHeight), scaled, scaled.Bounds().Min, draw.Over)

	face := basicfont.Face7x13
	drawCentered(canvas, face, fit(face, label.Title, width-2*margin), margin+face.Ascent)
	drawCentered(canvas, face, fit(face, label.Price, width-2*margin), barsTop+barHeight+gap+face.Ascent)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawCentered(dst draw.Image, face *basicfont.Face, text string, baseline int) {
	if text == "" {
		return
	}
	w := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P((dst.Bounds().Dx()-w)/2, baseline),
	}
	d.DrawString(text)
}

// fit trims text with an ellipsis until it fits in maxPx.
func fit(face font.Face, text string, maxPx int) string {
	if font.MeasureString(face, text).Ceil() <= maxPx {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if font.MeasureString(face, candidate).Ceil() <= maxPx {
			return candidate
		}
	}
	return ""
}

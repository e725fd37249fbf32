// Package bigchar renders kanji as large block art using half-block characters.
package bigchar

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontPaths lists system fonts with Japanese glyph forms, tried in order.
var FontPaths = []string{
	// macOS
	"/System/Library/Fonts/ヒラギノ角ゴシック W3.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	// Linux
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/opentype/ipafont-gothic/ipag.ttf",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	// Windows
	"C:\\Windows\\Fonts\\YuGothR.ttc",
	"C:\\Windows\\Fonts\\msgothic.ttc",
}

// threshold is the brightness above which a half cell counts as inked.
const threshold = 40

// collectionIndex picks the face inside a .ttc. Index 0 of the Noto CJK
// collection is the Japanese variant.
const collectionIndex = 0

type cacheKey struct {
	char       rune
	cols, rows int
}

// Renderer draws glyphs from one font face and caches the results.
type Renderer struct {
	face font.Face

	mu    sync.Mutex
	cache map[cacheKey]string
}

// NewRenderer wraps face. A nil face yields a renderer that is not
// Available and renders nothing.
func NewRenderer(face font.Face) *Renderer {
	return &Renderer{face: face, cache: make(map[cacheKey]string)}
}

// Load returns a renderer for the first font in paths that parses. With no
// paths, FontPaths is used.
func Load(paths ...string) *Renderer {
	if len(paths) == 0 {
		paths = FontPaths
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if face, err := ParseFace(data); err == nil {
			return NewRenderer(face)
		}
	}
	return NewRenderer(nil)
}

// ParseFace parses a font or font collection at the size the renderer
// rasterizes at.
func ParseFace(data []byte) (font.Face, error) {
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}
	if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > collectionIndex {
		fnt, err := coll.Font(collectionIndex)
		if err == nil {
			return opentype.NewFace(fnt, opts)
		}
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, opts)
}

// Available reports whether a font was found.
func (r *Renderer) Available() bool {
	return r != nil && r.face != nil
}

// Render draws char into cols by rows terminal cells.
func (r *Renderer) Render(char rune, cols, rows int) string {
	if !r.Available() || cols <= 0 || rows <= 0 {
		return ""
	}

	bounds, _, ok := r.face.GlyphBounds(char)
	if !ok {
		return ""
	}
	glyphWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	padding := 4
	srcWidth := max(glyphWidth+padding*2, 64)
	srcHeight := max(glyphHeight+padding*2, 64)

	src := image.NewGray(image.Rect(0, 0, srcWidth, srcHeight))
	draw.Draw(src, src.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	x := (srcWidth-glyphWidth)/2 - bounds.Min.X.Floor()
	y := srcHeight - padding - bounds.Max.Y.Ceil()

	d := &font.Drawer{
		Dst:  src,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(string(char))

	// Each cell holds two vertical pixels.
	scaled := scaleDown(src, cols, rows*2)
	return imageToHalfBlocks(scaled, cols, rows)
}

// Cached returns a previously rendered glyph or renders and stores it.
func (r *Renderer) Cached(char rune, cols, rows int) string {
	if !r.Available() {
		return ""
	}
	key := cacheKey{char: char, cols: cols, rows: rows}

	r.mu.Lock()
	defer r.mu.Unlock()
	if out, ok := r.cache[key]; ok {
		return out
	}
	out := r.Render(char, cols, rows)
	r.cache[key] = out
	return out
}

// scaleDown scales a grayscale image using area averaging.
func scaleDown(src *image.Gray, dstWidth, dstHeight int) *image.Gray {
	srcWidth := src.Bounds().Max.X
	srcHeight := src.Bounds().Max.Y

	dst := image.NewGray(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for dy := 0; dy < dstHeight; dy++ {
		for dx := 0; dx < dstWidth; dx++ {
			sx1 := int(float64(dx) * xRatio)
			sy1 := int(float64(dy) * yRatio)
			sx2 := min(int(float64(dx+1)*xRatio), srcWidth)
			sy2 := min(int(float64(dy+1)*yRatio), srcHeight)

			var sum, count int
			for sy := sy1; sy < sy2; sy++ {
				for sx := sx1; sx < sx2; sx++ {
					sum += int(src.GrayAt(sx, sy).Y)
					count++
				}
			}
			if count > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / count)})
			}
		}
	}
	return dst
}

// imageToHalfBlocks converts a grayscale image to rows of ▀▄█ cells.
func imageToHalfBlocks(img *image.Gray, cols, rows int) string {
	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := brightness(img, col, row*2) > threshold
			bottom := brightness(img, col, row*2+1) > threshold

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func brightness(img *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= img.Bounds().Max.X || y >= img.Bounds().Max.Y {
		return 0
	}
	return img.GrayAt(x, y).Y
}

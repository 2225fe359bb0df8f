package plotting

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/notargets/oilspill/mesh"
)

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
	Gray  = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	Red   = color.RGBA{R: 220, A: 255}
)

/*
PNGPlotter writes one PNG per call, named oil_00000.png, oil_00001.png, ... in call order. Triangles are filled with a
color scaled between FMin and FMax; when FMax <= FMin the scale is taken from the first frame and kept for the rest of
the run. Fast mode skips the cell edges.
*/
type PNGPlotter struct {
	Width, Height int
	Fast          bool
	FMin, FMax    float64
	Frame         int
	margin        int
}

func NewPNGPlotter(width, height int, fast bool) *PNGPlotter {
	return &PNGPlotter{
		Width:  width,
		Height: height,
		Fast:   fast,
		margin: 30,
	}
}

// FrameName is the file name of frame number n
func FrameName(n int) string {
	return fmt.Sprintf("oil_%05d.png", n)
}

func (p *PNGPlotter) Plot(cells []mesh.Cell, time float64, area []int, dir string) (err error) {
	var (
		img  = image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		file *os.File
	)
	if p.FMax <= p.FMin {
		p.FMin, p.FMax = fieldRange(cells)
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)
	xf := p.newTransform(cells)
	ras := vector.NewRasterizer(p.Width, p.Height)
	for _, c := range cells {
		if !c.Type.Transports() {
			continue
		}
		fillPolygon(ras, img, xf.apply(c.Vertices), ColorScale(c.OilAmount, p.FMin, p.FMax))
	}
	if !p.Fast {
		for _, c := range cells {
			if c.Type.Transports() {
				strokePolygon(ras, img, xf.apply(c.Vertices), 0.5, Gray)
			}
		}
	}
	for _, k := range area {
		strokePolygon(ras, img, xf.apply(cells[k].Vertices), 1.5, Red)
	}
	addLabel(img, 10, 20, fmt.Sprintf("time = %8.4f", time), Black)

	fileName := filepath.Join(dir, FrameName(p.Frame))
	if file, err = os.Create(fileName); err != nil {
		return fmt.Errorf("unable to create frame %s: %w", fileName, err)
	}
	if err = png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("unable to encode frame %s: %w", fileName, err)
	}
	p.Frame++
	return file.Close()
}

func fieldRange(cells []mesh.Cell) (fMin, fMax float64) {
	fMin, fMax = math.Inf(1), math.Inf(-1)
	for _, c := range cells {
		if c.Type.Transports() {
			fMin, fMax = math.Min(fMin, c.OilAmount), math.Max(fMax, c.OilAmount)
		}
	}
	if math.IsInf(fMin, 1) || fMax <= fMin {
		return 0, 1
	}
	return
}

// ColorScale maps f in [fMin,fMax] onto a blue, cyan, yellow, red ramp
func ColorScale(f, fMin, fMax float64) color.RGBA {
	var (
		stops = [][3]float64{{0, 0, 128}, {0, 200, 255}, {255, 230, 0}, {200, 0, 0}}
		t     = 0.
	)
	if fMax > fMin {
		t = math.Max(0, math.Min(1, (f-fMin)/(fMax-fMin)))
	}
	s := t * float64(len(stops)-1)
	i := int(math.Min(s, float64(len(stops)-2)))
	w := s - float64(i)
	lerp := func(n int) uint8 { return uint8(math.Round((1-w)*stops[i][n] + w*stops[i+1][n])) }
	return color.RGBA{R: lerp(0), G: lerp(1), B: lerp(2), A: 255}
}

// transform maps mesh coordinates to pixels, preserving aspect ratio, with y pointing up
type transform struct {
	scale, x0, y0 float64
	xOff, yOff    float64
	height        float64
}

func (p *PNGPlotter) newTransform(cells []mesh.Cell) (xf transform) {
	var (
		xMin, yMin = math.Inf(1), math.Inf(1)
		xMax, yMax = math.Inf(-1), math.Inf(-1)
		m          = float64(p.margin)
	)
	for _, c := range cells {
		for _, v := range c.Vertices {
			xMin, xMax = math.Min(xMin, v.X), math.Max(xMax, v.X)
			yMin, yMax = math.Min(yMin, v.Y), math.Max(yMax, v.Y)
		}
	}
	if math.IsInf(xMin, 1) {
		xMin, xMax, yMin, yMax = 0, 1, 0, 1
	}
	w, h := math.Max(xMax-xMin, 1.e-12), math.Max(yMax-yMin, 1.e-12)
	xf = transform{
		scale:  math.Min((float64(p.Width)-2*m)/w, (float64(p.Height)-2*m)/h),
		x0:     xMin,
		y0:     yMin,
		height: float64(p.Height),
	}
	xf.xOff = m + 0.5*(float64(p.Width)-2*m-xf.scale*w)
	xf.yOff = m + 0.5*(float64(p.Height)-2*m-xf.scale*h)
	return
}

func (xf transform) apply(verts []r2.Vec) (pts [][2]float32) {
	pts = make([][2]float32, len(verts))
	for i, v := range verts {
		pts[i] = [2]float32{
			float32(xf.xOff + xf.scale*(v.X-xf.x0)),
			float32(xf.height - (xf.yOff + xf.scale*(v.Y-xf.y0))),
		}
	}
	return
}

func fillPolygon(ras *vector.Rasterizer, img *image.RGBA, pts [][2]float32, col color.Color) {
	if len(pts) < 3 {
		return
	}
	b := img.Bounds()
	ras.Reset(b.Dx(), b.Dy())
	ras.MoveTo(pts[0][0], pts[0][1])
	for _, pt := range pts[1:] {
		ras.LineTo(pt[0], pt[1])
	}
	ras.ClosePath()
	ras.Draw(img, b, image.NewUniform(col), image.Point{})
}

// strokePolygon draws each edge of the closed polygon as a quad of the given pixel width
func strokePolygon(ras *vector.Rasterizer, img *image.RGBA, pts [][2]float32, width float32, col color.Color) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b[0]-a[0], b[1]-a[1]
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*width/2, dx/l*width/2
		fillPolygon(ras, img, [][2]float32{
			{a[0] + nx, a[1] + ny}, {b[0] + nx, b[1] + ny},
			{b[0] - nx, b[1] - ny}, {a[0] - nx, a[1] - ny},
		}, col)
	}
}

func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}

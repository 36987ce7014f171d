// Command vgdemo renders a sample scene with the vg surface stack and
// writes it out as a PNG.
package main

import (
	"flag"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/gogpu/vg"
	"github.com/gogpu/vg/surface"

	_ "github.com/gogpu/vg/backend/raster"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "demo.png", "output file")
	)
	flag.Parse()

	s := surface.New(surface.BackendImage, vg.ContentColorAlpha, *width, *height)
	defer s.Finish()

	drawBackground(s, *width, *height)
	drawShapes(s)
	drawRotatedSquares(s)
	drawPaths(s)

	if err := savePNG(s, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
}

func drawBackground(s *surface.Surface, w, h int) {
	g := vg.NewLinearGradient(0, 0, 0, float64(h))
	g.AddStop(0, vg.RGBA{R: 0.1, G: 0.2, B: 0.4, A: 1})
	g.AddStop(1, vg.RGBA{R: 0.5, G: 0.5, B: 0.6, A: 1})
	check(s.Paint(vg.OpSource, g, nil))
}

func drawShapes(s *surface.Surface) {
	// Overlapping translucent circles.
	circle := func(cx, cy float64, c vg.RGBA) {
		p := vg.NewPath()
		p.Circle(cx, cy, 60)
		check(s.Fill(vg.OpOver, &vg.SolidPattern{C: c}, p, vg.FillRuleNonZero, vg.DefaultTolerance, nil))
	}
	circle(150, 150, vg.RGBA{R: 1, G: 0.3, B: 0.3, A: 0.8})
	circle(200, 150, vg.RGBA{R: 0.3, G: 1, B: 0.3, A: 0.8})
	circle(175, 200, vg.RGBA{R: 0.3, G: 0.3, B: 1, A: 0.8})

	// Filled rectangle with a stroked outline.
	rect := vg.NewPath()
	rect.Rectangle(350, 100, 120, 80)
	check(s.Fill(vg.OpOver, &vg.SolidPattern{C: vg.RGB(1, 0.8, 0)}, rect, vg.FillRuleNonZero, vg.DefaultTolerance, nil))

	style := vg.DefaultStrokeStyle()
	style.Width = 4
	check(s.Stroke(vg.OpOver, &vg.SolidPattern{C: vg.RGB(1, 1, 1)}, rect, &style,
		vg.Identity(), vg.Identity(), vg.DefaultTolerance, nil))
}

func drawRotatedSquares(s *surface.Surface) {
	const centerX, centerY = 600, 150

	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		m := vg.Translate(centerX, centerY).Multiply(vg.Rotate(angle))

		p := vg.NewPath()
		p.Rectangle(-30, -30, 60, 60)
		p.Transform(m)

		t := float64(i) / 8
		c := vg.RGBA{R: 0.9 - 0.6*t, G: 0.3 + 0.5*t, B: 0.4 + 0.4*t, A: 1}
		check(s.Fill(vg.OpOver, &vg.SolidPattern{C: c}, p, vg.FillRuleNonZero, vg.DefaultTolerance, nil))
	}
}

func drawPaths(s *surface.Surface) {
	// A stroked wave built from cubic curves.
	wave := vg.NewPath()
	wave.MoveTo(150, 400)
	wave.CubicTo(200, 350, 250, 450, 300, 400)
	wave.CubicTo(350, 370, 400, 430, 450, 400)

	style := vg.DefaultStrokeStyle()
	style.Width = 6
	style.Cap = vg.LineCapRound
	check(s.Stroke(vg.OpOver, &vg.SolidPattern{C: vg.RGB(1, 0.5, 0)}, wave, &style,
		vg.Identity(), vg.Identity(), vg.DefaultTolerance, nil))

	// A five-pointed star.
	const (
		points         = 5
		outerR, innerR = 60.0, 30.0
		starX, starY   = 550.0, 400.0
	)

	star := vg.NewPath()
	for i := 0; i < points*2; i++ {
		angle := float64(i) * math.Pi / float64(points)
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		x := starX + r*math.Cos(angle-math.Pi/2)
		y := starY + r*math.Sin(angle-math.Pi/2)
		if i == 0 {
			star.MoveTo(x, y)
		} else {
			star.LineTo(x, y)
		}
	}
	star.Close()
	check(s.Fill(vg.OpOver, &vg.SolidPattern{C: vg.RGB(1, 1, 0)}, star, vg.FillRuleNonZero, vg.DefaultTolerance, nil))
}

func savePNG(s *surface.Surface, name string) error {
	img, release, err := s.AcquireSourceImage()
	if err != nil {
		return err
	}
	defer release()

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func check(err error) {
	if err != nil {
		log.Fatalf("draw failed: %v", err)
	}
}

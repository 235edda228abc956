package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/katalvlaran/fluxgrid/geometry"
)

var svgColours = map[Layer]string{
	LayerGrid:       "#A0AEC0",
	LayerContour:    "#5B8DEF",
	LayerWall:       "#333333",
	LayerSeparatrix: "#FF6B6B",
	LayerMarker:     "#F7B801",
}

// svgUnits is the number of user units per output pixel.
const svgUnits = 10

// SVG collects drawing calls into an SVG document with Z increasing
// upwards. User units are svgUnits per pixel.
type SVG struct {
	box   Box
	scale float64 // user units per metre
	body  bytes.Buffer
	doc   *svg.SVG
}

// NewSVG returns an empty document width pixels wide over box.
func NewSVG(box Box, width float64) (*SVG, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("NewSVG: %w", err)
	}
	if !(width >= 1) {
		return nil, fmt.Errorf("NewSVG: width %g: %w", width, ErrSize)
	}
	s := &SVG{box: box, scale: svgUnits * width / box.Width()}
	s.doc = svg.New(&s.body)
	w := int(math.Round(width))
	h := max(int(math.Round(width*box.Height()/box.Width())), 1)
	s.doc.Startview(w, h, 0, 0, svgUnits*w, svgUnits*h)

	return s, nil
}

func (s *SVG) xy(p geometry.Point) (x, y int) {
	return int(math.Round((p.R - s.box.RMin) * s.scale)), int(math.Round((s.box.ZMax - p.Z) * s.scale))
}

func (s *SVG) units(metres float64) int {
	return max(int(math.Round(metres*s.scale)), 1)
}

// Polyline adds a polyline through points, skipping points that are not
// finite.
func (s *SVG) Polyline(points []geometry.Point, layer Layer) {
	var xs, ys []int
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		x, y := s.xy(p)
		xs, ys = append(xs, x), append(ys, y)
	}
	if len(xs) == 0 {
		return
	}
	stroke := s.units(0.002 * max(s.box.Width(), s.box.Height()))
	s.doc.Polyline(xs, ys, fmt.Sprintf(`class="layer%d" fill="none" stroke="%s" stroke-width="%d"`,
		layer, svgColours[layer], stroke))
}

// Marker adds a dot at p with a text label.
func (s *SVG) Marker(p geometry.Point, label string, layer Layer) {
	if !p.IsFinite() {
		return
	}
	x, y := s.xy(p)
	r := s.units(0.01 * min(s.box.Width(), s.box.Height()))
	s.doc.Circle(x, y, r, fmt.Sprintf(`fill="%s"`, svgColours[layer]))
	if label == "" {
		return
	}
	s.doc.Text(x+3*r/2, y, label, fmt.Sprintf(`font-size="%d" fill="%s"`, 4*r, svgColours[layer]))
}

// WriteTo writes the complete document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var doc bytes.Buffer
	doc.Write(s.body.Bytes())
	svg.New(&doc).End()

	return doc.WriteTo(w)
}

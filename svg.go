package liquidglass

import (
	"strconv"
	"strings"
)

const svgNS = "http://www.w3.org/2000/svg"

// fmtNum formats v with the shortest representation that round-trips.
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSS returns the fill as a CSS color value.
func (f Fill) CSS() string {
	switch f.Kind {
	case FillGradient:
		return "url(#" + f.Gradient + ")"
	case FillRGBA:
		return "rgb(" + strconv.Itoa(int(f.R)) + " " + strconv.Itoa(int(f.G)) + " " +
			strconv.Itoa(int(f.B)) + " / " + fmtNum(f.Alpha) + "%)"
	default:
		return hexColor(f.R, f.G, f.B)
	}
}

// hexColor writes #RGB when every channel has a repeated nibble, otherwise
// #RRGGBB.
func hexColor(r, g, b uint8) string {
	const digits = "0123456789ABCDEF"
	if r%17 == 0 && g%17 == 0 && b%17 == 0 {
		return string([]byte{'#', digits[r&0xF], digits[g&0xF], digits[b&0xF]})
	}
	return string([]byte{'#',
		digits[r>>4], digits[r&0xF],
		digits[g>>4], digits[g&0xF],
		digits[b>>4], digits[b&0xF],
	})
}

// style returns the inline CSS of a shape, or "" if it has none.
func (s Shape) style() string {
	var parts []string
	if s.Blurred {
		parts = append(parts, "filter:blur("+fmtNum(s.Blur)+"px)")
	}
	if s.Blend == BlendScreen || s.Blend == BlendMultiply {
		parts = append(parts, "mix-blend-mode: "+s.Blend.String())
	}
	return strings.Join(parts, "; ")
}

// SVG returns the layer as a standalone SVG document. Attribute values use
// single quotes so the document can be embedded in a double-quoted href.
func (l Layer) SVG() string {
	var b strings.Builder
	w, h := fmtNum(l.Width), fmtNum(l.Height)
	b.WriteString("<svg width='" + w + "' height='" + h + "' viewBox='0 0 " + w + " " + h +
		"' xmlns='" + svgNS + "'>")
	if len(l.Gradients) > 0 {
		b.WriteString("<defs>")
		for _, g := range l.Gradients {
			b.WriteString("<linearGradient id='" + g.ID +
				"' x1='" + fmtNum(g.X1) + "%' y1='" + fmtNum(g.Y1) +
				"%' x2='" + fmtNum(g.X2) + "%' y2='" + fmtNum(g.Y2) + "%'>")
			for _, st := range g.Stops {
				b.WriteString("<stop offset='" + fmtNum(st.Offset) + "%' stop-color='" +
					hexColor(st.R, st.G, st.B) + "'/>")
			}
			b.WriteString("</linearGradient>")
		}
		b.WriteString("</defs>")
	}
	for _, s := range l.Shapes {
		b.WriteString("<rect x='" + fmtNum(s.X) + "' y='" + fmtNum(s.Y) +
			"' width='" + fmtNum(s.Width) + "' height='" + fmtNum(s.Height) +
			"' rx='" + fmtNum(s.RX) + "' fill='" + s.Fill.CSS() + "'")
		if st := s.style(); st != "" {
			b.WriteString(" style='" + st + "'")
		}
		b.WriteString(" />")
	}
	b.WriteString("</svg>")
	return b.String()
}

// dataURIEscaper percent-encodes the characters that would break a data URI
// or its surrounding attribute. Everything else is left readable.
var dataURIEscaper = strings.NewReplacer(
	"%", "%25",
	"<", "%3C",
	">", "%3E",
	"#", "%23",
	"\"", "%22",
	"(", "%28",
	")", "%29",
	"/", "%2F",
	"\n", "%0A",
)

// DataURI returns the layer as a data:image/svg+xml URI.
func (l Layer) DataURI() string {
	return "data:image/svg+xml," + dataURIEscaper.Replace(l.SVG())
}

type xmlElem struct {
	b *strings.Builder
}

func openElem(b *strings.Builder, name string) xmlElem {
	b.WriteString("<" + name)
	return xmlElem{b: b}
}

// attr writes name="value", skipping empty values.
func (e xmlElem) attr(name, value string) xmlElem {
	if value != "" {
		e.b.WriteString(" " + name + "=\"" + value + "\"")
	}
	return e
}

func (e xmlElem) close() {
	e.b.WriteString("/>")
}

func matrixValues(m [20]float64) string {
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = fmtNum(v)
	}
	return strings.Join(parts, " ")
}

// writePrimitive writes one filter primitive element.
func (g Graph) writePrimitive(b *strings.Builder, p Primitive) {
	switch p.Kind {
	case PrimImage:
		openElem(b, "feImage").
			attr("xlink:href", g.Layers[p.Layer].DataURI()).
			attr("x", "0%").attr("y", "0%").
			attr("width", "100%").attr("height", "100%").
			attr("result", p.Result).close()
	case PrimGaussianBlur:
		openElem(b, "feGaussianBlur").
			attr("stdDeviation", fmtNum(p.StdDeviation)).
			attr("in", p.In).
			attr("result", p.Result).close()
	case PrimDisplacementMap:
		openElem(b, "feDisplacementMap").
			attr("in", p.In).attr("in2", p.In2).
			attr("scale", fmtNum(p.Scale)).
			attr("xChannelSelector", string(p.XChannel)).
			attr("yChannelSelector", string(p.YChannel)).
			attr("result", p.Result).close()
	case PrimColorMatrix:
		openElem(b, "feColorMatrix").
			attr("in", p.In).
			attr("type", "matrix").
			attr("values", matrixValues(p.Matrix)).
			attr("result", p.Result).close()
	case PrimBlend:
		openElem(b, "feBlend").
			attr("in", p.In).attr("in2", p.In2).
			attr("mode", p.Mode.String()).
			attr("result", p.Result).close()
	case PrimComposite:
		openElem(b, "feComposite").
			attr("in", p.In).attr("in2", p.In2).
			attr("operator", p.Mode.String()).
			attr("result", p.Result).close()
	case PrimOffset:
		openElem(b, "feOffset").
			attr("in", p.In).
			attr("dx", fmtNum(p.Dx)).attr("dy", fmtNum(p.Dy)).
			attr("result", p.Result).close()
	}
}

// FilterSVG returns a hidden <svg> element holding the complete filter under
// the given id, ready to be referenced by BackdropCSS(id).
func (g Graph) FilterSVG(id string) string {
	var b strings.Builder
	w, h := fmtNum(g.Width()), fmtNum(g.Height())
	b.WriteString(`<svg width="` + w + `" height="` + h + `" viewBox="0 0 ` + w + " " + h +
		`" xmlns="` + svgNS + `" xmlns:xlink="http://www.w3.org/1999/xlink"` +
		` style="position:absolute;visibility:hidden;pointer-events:none">`)
	b.WriteString(`<filter id="` + id + `">`)
	for _, p := range g.Primitives {
		g.writePrimitive(&b, p)
	}
	b.WriteString("</filter></svg>")
	return b.String()
}

// BackdropCSS returns the inline style of the overlay element that applies
// the filter to whatever is behind the panel.
func (g Graph) BackdropCSS(id string) string {
	m := strconv.Itoa(Margin)
	return "position:absolute;top:-" + m + "px;left:-" + m + "px;" +
		"width:calc(100% + " + m + "px);height:calc(100% + " + m + "px);" +
		"backdrop-filter:url(#" + id + ");" +
		"border-radius:" + fmtNum(g.CornerRadius()) + "px;" +
		"pointer-events:none;z-index:1"
}

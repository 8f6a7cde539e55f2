// Command liquidglass renders liquid glass filters without a window.
//
//	liquidglass svg [-preset name] [-params file.json] [-id id]
//	liquidglass render [-preset name] [-params file.json] [-backdrop in.png] [-x 50 -y 50] -o out.png
//	liquidglass presets
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/phanxgames/liquidglass"
)

const (
	stripeWidth     = 24
	defaultBackdrop = 400
)

var stripeColors = []color.RGBA{
	{0xF9, 0x73, 0x16, 0xFF},
	{0x0E, 0xA5, 0xE9, 0xFF},
	{0xFA, 0xCC, 0x15, 0xFF},
	{0x8B, 0x5C, 0xF6, 0xFF},
	{0x22, 0xC5, 0x5E, 0xFF},
}

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return errors.New("usage: liquidglass svg|render|presets [flags]")
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "svg":
		return runSVG(args[1:], stdout)
	case "render":
		return runRender(args[1:])
	case "presets":
		return runPresets(stdout)
	}
	return usage()
}

// paramFlags are the flags shared by svg and render.
type paramFlags struct {
	preset  string
	params  string
	verbose bool
}

func (pf *paramFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&pf.preset, "preset", liquidglass.PresetDefault, "built-in preset name")
	fs.StringVar(&pf.params, "params", "", "JSON file of parameter overrides")
	fs.BoolVar(&pf.verbose, "v", false, "log debug output to stderr")
}

// resolve returns the preset with the params file applied over it.
func (pf *paramFlags) resolve() (liquidglass.Params, error) {
	if pf.verbose {
		liquidglass.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	p, ok := liquidglass.Preset(pf.preset)
	if !ok {
		return liquidglass.Params{}, fmt.Errorf("unknown preset %q", pf.preset)
	}
	if pf.params == "" {
		return p, nil
	}
	data, err := os.ReadFile(pf.params)
	if err != nil {
		return liquidglass.Params{}, fmt.Errorf("read params: %w", err)
	}
	var patch liquidglass.ParamsPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return liquidglass.Params{}, fmt.Errorf("parse params %s: %w", pf.params, err)
	}
	return patch.Apply(p), nil
}

func runSVG(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("svg", flag.ContinueOnError)
	var pf paramFlags
	pf.register(fs)
	id := fs.String("id", "liquid-glass-filter", "filter element id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := pf.resolve()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, liquidglass.Synthesize(p).FilterSVG(*id))
	return err
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var pf paramFlags
	pf.register(fs)
	backdropPath := fs.String("backdrop", "", "PNG or JPEG backdrop (default: generated stripes)")
	x := fs.Int("x", 50, "panel left edge in the backdrop")
	y := fs.Int("y", 50, "panel top edge in the backdrop")
	out := fs.String("o", "liquidglass.png", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := pf.resolve()
	if err != nil {
		return err
	}

	var backdrop image.Image
	if *backdropPath != "" {
		backdrop, err = loadImage(*backdropPath)
		if err != nil {
			return err
		}
	} else {
		w := max(defaultBackdrop, *x+int(p.Width)+liquidglass.Margin)
		h := max(defaultBackdrop, *y+int(p.Height)+liquidglass.Margin)
		backdrop = stripedBackdrop(w, h)
	}

	img := liquidglass.RenderPanel(liquidglass.Synthesize(p), backdrop, image.Pt(*x, *y))
	if err := liquidglass.WritePNG(*out, img); err != nil {
		return err
	}
	liquidglass.Logger().Info("rendered", "path", *out, "width", p.Width, "height", p.Height)
	return nil
}

func runPresets(stdout io.Writer) error {
	presets := make(map[string]liquidglass.Params)
	for _, name := range liquidglass.PresetNames() {
		presets[name], _ = liquidglass.Preset(name)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"presets": presets})
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backdrop: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode backdrop %s: %w", path, err)
	}
	return img, nil
}

// stripedBackdrop draws diagonal colour stripes, which make refraction easy
// to see.
func stripedBackdrop(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.White, image.Point{}, draw.Src)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			band := (px + py) / stripeWidth
			if band%2 == 1 {
				img.SetRGBA(px, py, stripeColors[(band/2)%len(stripeColors)])
			}
		}
	}
	return img
}

// Command asciify renders an image file as ASCII art on stdout, using
// the same density ramp and luminance pipeline as a live call. Handy
// for previewing how a scene will look over the wire.
//
//	asciify -w 100 photo.png
//	asciify -density " .:-=+*#%@" photo.jpg > photo.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/render"
)

// cellAspect compensates for terminal cells being roughly twice as
// tall as they are wide.
const cellAspect = 2

func main() {
	var (
		width  int
		ramp   string
		mirror bool
	)
	flag.IntVar(&width, "w", 80, "Output width in columns")
	flag.StringVar(&ramp, "density", render.DefaultDensity, "Density ramp, darkest to lightest")
	flag.BoolVar(&mirror, "mirror", false, "Flip the image horizontally")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: asciify [options] <image.png|image.jpg>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), width, ramp, mirror); err != nil {
		fmt.Fprintf(os.Stderr, "asciify: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, width int, ramp string, mirror bool) error {
	if width < 1 {
		return fmt.Errorf("width must be positive")
	}

	table, err := render.NewDensityTable(ramp)
	if err != nil {
		return err
	}

	// Height follows the image's aspect ratio, corrected for cell shape
	imgFile, err := os.Open(path)
	if err != nil {
		return err
	}
	imgCfg, _, err := image.DecodeConfig(imgFile)
	imgFile.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	height := imgCfg.Height * width / imgCfg.Width / cellAspect
	if height < 1 {
		height = 1
	}

	// The source scales to the output geometry during decode
	src := capture.NewImageSource(path)
	if err := src.Init(width, height); err != nil {
		return err
	}
	var f capture.Frame
	if !src.Frame(&f) {
		return fmt.Errorf("no frame decoded from %s", path)
	}

	plane := &render.BGRA{W: f.W, H: f.H, Pix: f.Pix}
	gray := &render.Gray{}
	gray.SetSize(width, height)
	render.Grayscale(gray, plane)

	min, max := byte(0xff), byte(0)
	for _, v := range gray.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx := x
			if mirror {
				sx = width - 1 - x
			}
			out.WriteByte(table.Glyph(table.Index(gray.Pix[y*width+sx], min, max)))
		}
		out.WriteByte('\n')
	}
	return nil
}

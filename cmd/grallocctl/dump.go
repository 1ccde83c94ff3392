// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"

	"github.com/gogpu/gralloc"
)

func newDumpCommand() *cobra.Command {
	dumpCommand := &cobra.Command{
		Use:   "dump [WIDTHxHEIGHT]",
		Short: "Draw a test pattern into a buffer and save it as BMP",
		Long: `Allocate a buffer, draw a test pattern through a CPU write lock, read it
back through a CPU read lock and save the result as a BMP file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: dumpAction,
	}
	addBufferFlags(dumpCommand, "sw_write_often|sw_read_often")
	dumpCommand.Flags().StringP("output", "o", "dump.bmp", "Output file")
	return dumpCommand
}

func dumpAction(cmd *cobra.Command, args []string) error {
	width, height, format, usage, err := bufferFlags(cmd, args)
	if err != nil {
		return err
	}
	if _, err := channelOrder(format); err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	dev, err := openDevice(cmd)
	if err != nil {
		return err
	}
	defer dev.Close()

	bo, err := dev.Create(width, height, format, usage)
	if err != nil {
		return err
	}
	defer bo.Decref()

	bounds := image.Rect(0, 0, width, height)
	data, err := bo.Lock(gralloc.UsageSWWriteOften, bounds)
	if err != nil {
		return err
	}
	drawPattern(data, bo.Stride(), width, height, format)
	bo.Unlock()

	data, err = bo.Lock(gralloc.UsageSWReadOften, bounds)
	if err != nil {
		return err
	}
	img, err := toImage(data, bo.Stride(), width, height, format)
	bo.Unlock()
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d %v, stride %d)\n", output, width, height, format, bo.Stride())
	return nil
}

// channelOrder returns the byte offsets of red, green, blue and alpha in
// a pixel of a 32 bpp format. Alpha is -1 for formats without alpha.
func channelOrder(f gralloc.Format) ([4]int, error) {
	switch f {
	case gralloc.FormatRGBA8888:
		return [4]int{0, 1, 2, 3}, nil
	case gralloc.FormatRGBX8888:
		return [4]int{0, 1, 2, -1}, nil
	case gralloc.FormatBGRA8888:
		return [4]int{2, 1, 0, 3}, nil
	}
	return [4]int{}, fmt.Errorf("dump supports rgba8888, rgbx8888 and bgra8888, not %v", f)
}

// patternAt is the test pattern: a red/green gradient over a blue
// checkerboard.
func patternAt(x, y, width, height int) color.RGBA {
	c := color.RGBA{
		R: uint8(x * 255 / max(width-1, 1)),
		G: uint8(y * 255 / max(height-1, 1)),
		A: 0xff,
	}
	if (x/16+y/16)%2 == 0 {
		c.B = 0xc0
	}
	return c
}

func drawPattern(data []byte, stride, width, height int, f gralloc.Format) {
	order, _ := channelOrder(f)
	for y := range height {
		row := data[y*stride:]
		for x := range width {
			c := patternAt(x, y, width, height)
			px := row[4*x : 4*x+4]
			px[order[0]] = c.R
			px[order[1]] = c.G
			px[order[2]] = c.B
			if order[3] >= 0 {
				px[order[3]] = c.A
			}
		}
	}
}

// toImage copies a mapped 32 bpp buffer into an image.
func toImage(data []byte, stride, width, height int, f gralloc.Format) (*image.RGBA, error) {
	order, err := channelOrder(f)
	if err != nil {
		return nil, err
	}
	if need := stride*(height-1) + 4*width; len(data) < need {
		return nil, fmt.Errorf("mapping is %d bytes, need %d", len(data), need)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		row := data[y*stride:]
		for x := range width {
			px := row[4*x : 4*x+4]
			c := color.RGBA{R: px[order[0]], G: px[order[1]], B: px[order[2]], A: 0xff}
			if order[3] >= 0 {
				c.A = px[order[3]]
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

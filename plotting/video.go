package plotting

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// MJPEGAssembler packs the PNG frames of a run into an MJPEG AVI
type MJPEGAssembler struct {
	FPS      int
	Quality  int
	FileName string // Defaults to oil.avi next to the images directory
}

func NewMJPEGAssembler(fps int) *MJPEGAssembler {
	return &MJPEGAssembler{
		FPS:     fps,
		Quality: 90,
	}
}

/*
Assemble reads the frames in imagesDir in frame order. A run of intervals steps plotting every writeFrequency steps
writes ceil(intervals/writeFrequency) frames plus the final one; frames beyond that count are left over from earlier
runs and are skipped.
*/
func (a *MJPEGAssembler) Assemble(imagesDir string, writeFrequency, intervals int) (err error) {
	var (
		frames   []string
		aw       mjpeg.AviWriter
		buf      bytes.Buffer
		expected = 1
		fileName = a.FileName
		fps      = a.FPS
	)
	if writeFrequency > 0 {
		expected += (intervals + writeFrequency - 1) / writeFrequency
	}
	if frames, err = filepath.Glob(filepath.Join(imagesDir, "oil_*.png")); err != nil {
		return
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames found in %s", imagesDir)
	}
	if len(frames) > expected {
		frames = frames[:expected]
	}
	if fileName == "" {
		fileName = filepath.Join(filepath.Dir(imagesDir), "oil.avi")
	}
	if fps <= 0 {
		fps = 10
	}
	var first image.Image
	if first, err = readPNG(frames[0]); err != nil {
		return
	}
	b := first.Bounds()
	if aw, err = mjpeg.New(fileName, int32(b.Dx()), int32(b.Dy()), int32(fps)); err != nil {
		return fmt.Errorf("unable to create video %s: %w", fileName, err)
	}
	for i, frame := range frames {
		img := first
		if i > 0 {
			if img, err = readPNG(frame); err != nil {
				aw.Close()
				return
			}
		}
		buf.Reset()
		if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.Quality}); err != nil {
			aw.Close()
			return fmt.Errorf("unable to encode frame %s: %w", frame, err)
		}
		if err = aw.AddFrame(buf.Bytes()); err != nil {
			aw.Close()
			return fmt.Errorf("unable to add frame %s: %w", frame, err)
		}
	}
	return aw.Close()
}

func readPNG(fileName string) (img image.Image, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(fileName); err != nil {
		return
	}
	defer file.Close()
	if img, err = png.Decode(file); err != nil {
		err = fmt.Errorf("unable to decode frame %s: %w", fileName, err)
	}
	return
}

//go:build screen

package video

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/d21d3q/framebuffer"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"petfeeder/station"
)

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return true
}

var (
	background = color.RGBA{0x10, 0x10, 0x30, 0xff}
	okColor    = color.RGBA{0x30, 0xd0, 0x30, 0xff}
	offColor   = color.RGBA{0xd0, 0x40, 0x30, 0xff}
)

// Display draws the station status on a 16bpp framebuffer.
type Display struct {
	dc              *gg.Context
	pixBuffer       []byte
	backBuffer      []byte
	rgbaImage       *image.RGBA
	width           int
	height          int
	lineLengthBytes int
	initialized     bool

	title   string
	showLED bool
	pending *latest
}

// New opens the framebuffer.
func New(cfg Config, showLED bool) (*Display, error) {
	if cfg.Device == "" {
		cfg.Device = "/dev/fb0"
	}
	if cfg.Title == "" {
		cfg.Title = "Pet Feeder"
	}
	v := &Display{title: cfg.Title, showLED: showLED, pending: newLatest()}
	if err := v.init(cfg.Device); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Display) init(device string) error {
	fbLowLevel, err := framebuffer.OpenFrameBuffer(device, os.O_RDWR)
	if err != nil {
		return fmt.Errorf("open framebuffer: %w", err)
	}

	varInfo, err := fbLowLevel.VarScreenInfo()
	if err != nil {
		return fmt.Errorf("get variable screen info: %w", err)
	}
	fixedInfo, err := fbLowLevel.FixScreenInfo()
	if err != nil {
		return fmt.Errorf("get fixed screen info: %w", err)
	}

	v.pixBuffer, err = fbLowLevel.Pixels()
	if err != nil {
		return fmt.Errorf("get pixel data: %w", err)
	}

	v.width = int(varInfo.XRes)
	v.height = int(varInfo.YRes)
	v.lineLengthBytes = int(fixedInfo.LineLength)
	v.backBuffer = make([]byte, v.height*v.lineLengthBytes)

	log.Printf("Video: framebuffer %dx%d, %d bpp, stride %d bytes",
		v.width, v.height, varInfo.BitsPerPixel, v.lineLengthBytes)

	v.rgbaImage = image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	v.dc = gg.NewContextForRGBA(v.rgbaImage)
	v.initialized = true

	v.clear()
	return nil
}

func (v *Display) clear() {
	for i := range v.pixBuffer {
		v.pixBuffer[i] = 0
	}
}

func (v *Display) update() {
	if !v.initialized {
		return
	}
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			r, g, b, _ := v.rgbaImage.At(x, y).RGBA()
			r5 := uint16(r >> (16 - 5))
			g6 := uint16(g >> (16 - 6))
			b5 := uint16(b >> (16 - 5))
			pixel16 := (r5 << 11) | (g6 << 5) | b5
			fbIdx := (y * v.lineLengthBytes) + (x * 2)
			if fbIdx+1 < len(v.backBuffer) {
				binary.LittleEndian.PutUint16(v.backBuffer[fbIdx:], pixel16)
			}
		}
	}
	copy(v.pixBuffer, v.backBuffer)
}

func (v *Display) setFontSize(size int) {
	fontPath := "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	if err := v.dc.LoadFontFace(fontPath, float64(size)); err != nil {
		log.Printf("Video: failed to load font: %v", err)
	}
}

// Show queues st for drawing. Safe to call from the loop goroutine; an
// undrawn snapshot is replaced, never waited on.
func (v *Display) Show(st station.Status) {
	v.pending.put(st)
}

// Run draws queued snapshots until done is closed.
func (v *Display) Run(done <-chan struct{}) {
	v.pending.serve(done, v.draw)
}

func (v *Display) draw(st station.Status) {
	if !v.initialized {
		return
	}
	draw.Draw(v.rgbaImage, v.rgbaImage.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	v.setFontSize(48)
	v.dc.SetRGB(1, 1, 1)
	v.dc.DrawStringAnchored(v.title, float64(v.width/2), 50, 0.5, 0.5)

	v.setFontSize(36)
	y := 120.0
	for _, row := range Layout(st, v.showLED) {
		c := offColor
		if row.On {
			c = okColor
		}
		v.dc.SetColor(c)
		v.dc.DrawCircle(40, y, 12)
		v.dc.Fill()
		v.dc.SetRGB(1, 1, 1)
		v.dc.DrawStringAnchored(row.Text, 70, y, 0, 0.5)
		y += 56
	}
	v.update()
}

// Release waits for Run to return, then blanks the screen. Close the done
// channel given to Run first.
func (v *Display) Release() error {
	v.pending.stop()
	v.clear()
	v.initialized = false
	return nil
}

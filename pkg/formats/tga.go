package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

// TGA format errors.
var (
	ErrTruncatedTGA   = errors.New("truncated TGA data")
	ErrUnsupportedTGA = errors.New("unsupported TGA image")
)

// TGA image types.
const (
	TGATrueColor    = 2
	TGAGray         = 3
	TGATrueColorRLE = 10
	TGAGrayRLE      = 11
)

const (
	tgaHeaderLen = 18
	// descriptor bit 5: rows are stored top to bottom
	tgaTopToBottom = 0x20
)

// TGAHeader is the fixed 18 byte TGA header.
type TGAHeader struct {
	IDLength     uint8
	ColorMapType uint8
	ImageType    uint8
	ColorMap     [5]byte
	XOrigin      uint16
	YOrigin      uint16
	Width        uint16
	Height       uint16
	BitsPerPixel uint8
	Descriptor   uint8
}

func (h TGAHeader) rle() bool {
	return h.ImageType == TGATrueColorRLE || h.ImageType == TGAGrayRLE
}

func (h TGAHeader) gray() bool {
	return h.ImageType == TGAGray || h.ImageType == TGAGrayRLE
}

func (h TGAHeader) validate() error {
	if h.ColorMapType != 0 {
		return fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	switch {
	case h.gray() && h.BitsPerPixel == 8:
	case !h.gray() && (h.ImageType == TGATrueColor || h.ImageType == TGATrueColorRLE) &&
		(h.BitsPerPixel == 24 || h.BitsPerPixel == 32):
	default:
		return fmt.Errorf("%w: type %d at %d bpp", ErrUnsupportedTGA, h.ImageType, h.BitsPerPixel)
	}
	if h.Width == 0 || h.Height == 0 {
		return fmt.Errorf("%w: empty %dx%d", ErrUnsupportedTGA, h.Width, h.Height)
	}
	return nil
}

// DecodeTGA decodes a true-color or grayscale TGA image, raw or run-length
// encoded. TGA has no signature, so callers choose it by file extension.
func DecodeTGA(r io.Reader) (image.Image, error) {
	var h TGAHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncatedTGA, err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	if _, err := io.CopyN(io.Discard, r, int64(h.IDLength)); err != nil {
		return nil, fmt.Errorf("%w: image id: %v", ErrTruncatedTGA, err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	w, ht := int(h.Width), int(h.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, ht))
	bpp := int(h.BitsPerPixel) / 8
	topDown := h.Descriptor&tgaTopToBottom != 0

	put := func(i int, px []byte) {
		x, y := i%w, i/w
		if !topDown {
			y = ht - 1 - y
		}
		o := img.PixOffset(x, y)
		dst := img.Pix[o : o+4]
		switch bpp {
		case 1:
			dst[0], dst[1], dst[2], dst[3] = px[0], px[0], px[0], 0xff
		case 3:
			dst[0], dst[1], dst[2], dst[3] = px[2], px[1], px[0], 0xff
		case 4:
			dst[0], dst[1], dst[2], dst[3] = px[2], px[1], px[0], px[3]
		}
	}

	total := w * ht
	pos := 0
	next := func() ([]byte, error) {
		if pos+bpp > len(body) {
			return nil, ErrTruncatedTGA
		}
		px := body[pos : pos+bpp]
		pos += bpp
		return px, nil
	}

	for i := 0; i < total; {
		run, repeat := total-i, false
		if h.rle() {
			if pos >= len(body) {
				return nil, ErrTruncatedTGA
			}
			packet := body[pos]
			pos++
			run = min(int(packet&0x7f)+1, total-i)
			repeat = packet&0x80 != 0
		}

		var px []byte
		for k := 0; k < run; k, i = k+1, i+1 {
			if k == 0 || !repeat {
				if px, err = next(); err != nil {
					return nil, fmt.Errorf("pixel %d: %w", i, err)
				}
			}
			put(i, px)
		}
	}
	return img, nil
}

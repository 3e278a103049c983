package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"testing"
)

func tgaFile(t *testing.T, h TGAHeader, body ...byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		t.Fatal(err)
	}
	buf.Write(body)
	return buf.Bytes()
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	// 2x2 BGR, stored bottom row first
	data := tgaFile(t, TGAHeader{ImageType: TGATrueColor, Width: 2, Height: 2, BitsPerPixel: 24},
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 1, color.NRGBA{255, 0, 0, 255}},
		{1, 1, color.NRGBA{0, 255, 0, 255}},
		{0, 0, color.NRGBA{0, 0, 255, 255}},
		{1, 0, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.At(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGA_RLETopDown(t *testing.T) {
	h := TGAHeader{IDLength: 3, ImageType: TGATrueColorRLE, Width: 3, Height: 1, BitsPerPixel: 32, Descriptor: tgaTopToBottom}
	data := tgaFile(t, h,
		'a', 'b', 'c', // image id
		0x81, 10, 20, 30, 128, // run of 2
		0x00, 1, 2, 3, 255, // one raw pixel
	)

	img, err := DecodeTGA(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if got, want := img.At(0, 0), (color.NRGBA{30, 20, 10, 128}); got != want {
		t.Errorf("run pixel: got %v, want %v", got, want)
	}
	if got, want := img.At(1, 0), (color.NRGBA{30, 20, 10, 128}); got != want {
		t.Errorf("repeated pixel: got %v, want %v", got, want)
	}
	if got, want := img.At(2, 0), (color.NRGBA{3, 2, 1, 255}); got != want {
		t.Errorf("raw pixel: got %v, want %v", got, want)
	}
}

func TestDecodeTGA_Gray(t *testing.T) {
	data := tgaFile(t, TGAHeader{ImageType: TGAGray, Width: 1, Height: 1, BitsPerPixel: 8}, 77)

	img, err := DecodeTGA(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if got, want := img.At(0, 0), (color.NRGBA{77, 77, 77, 255}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, ErrTruncatedTGA},
		{"color mapped", tgaFile(t, TGAHeader{ColorMapType: 1, ImageType: 1, Width: 1, Height: 1, BitsPerPixel: 8}), ErrUnsupportedTGA},
		{"16 bpp", tgaFile(t, TGAHeader{ImageType: TGATrueColor, Width: 1, Height: 1, BitsPerPixel: 16}), ErrUnsupportedTGA},
		{"empty", tgaFile(t, TGAHeader{ImageType: TGATrueColor, Width: 0, Height: 1, BitsPerPixel: 24}), ErrUnsupportedTGA},
		{"truncated pixels", tgaFile(t, TGAHeader{ImageType: TGATrueColor, Width: 2, Height: 1, BitsPerPixel: 24}, 1, 2, 3), ErrTruncatedTGA},
		{"truncated packet", tgaFile(t, TGAHeader{ImageType: TGATrueColorRLE, Width: 2, Height: 1, BitsPerPixel: 24}, 0x80, 1, 2, 3), ErrTruncatedTGA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestThumbnail_FitsBox(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{name: "landscape scaled", w: 800, h: 400, max: 200, wantW: 200, wantH: 100},
		{name: "portrait scaled", w: 300, h: 900, max: 300, wantW: 100, wantH: 300},
		{name: "small kept", w: 50, h: 40, max: 256, wantW: 50, wantH: 40},
		{name: "thin line keeps one pixel", w: 1000, h: 1, max: 100, wantW: 100, wantH: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Thumbnail(solid(tt.w, tt.h), tt.max)
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode thumbnail: %v", err)
			}
			if format != "png" {
				t.Errorf("format = %q, want png", format)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderPreview_RejectsGarbage(t *testing.T) {
	if _, err := RenderPreview([]byte("not an image"), 64, 0); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestToPNG_FromGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 8, 8), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}

	out, err := ToPNG(buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(out)); err != nil || format != "png" {
		t.Fatalf("ToPNG output format = %q, err = %v", format, err)
	}
}

func TestDecode_PNG(t *testing.T) {
	_, format, err := Decode(encodePNG(t, solid(4, 4)), 0)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q", format)
	}
}

func TestNeedsNormalization(t *testing.T) {
	for mt, want := range map[string]bool{
		"image/gif":  true,
		"image/webp": true,
		"image/png":  false,
		"image/jpeg": false,
	} {
		if got := NeedsNormalization(mt); got != want {
			t.Errorf("NeedsNormalization(%q) = %v, want %v", mt, got, want)
		}
	}
}

// withDimensions rewrites the IHDR of a PNG so it declares w x h without carrying the pixels.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	if string(out[12:16]) != "IHDR" {
		t.Fatal("IHDR is not the first chunk")
	}
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestCheckPixels(t *testing.T) {
	small := encodePNG(t, solid(4, 4))
	huge := withDimensions(t, small, 12000, 12000)

	tests := []struct {
		name      string
		data      []byte
		maxPixels int
		wantErr   bool
	}{
		{"small within default", small, 0, false},
		{"declared 144 MP over default", huge, 0, true},
		{"small over tight cap", small, 15, true},
		{"unknown format passes", []byte("jpeg"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPixels(tt.data, tt.maxPixels)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTooManyPixels) {
				t.Errorf("err = %v, want ErrTooManyPixels", err)
			}
		})
	}
}

func TestRenderPreview_RejectsOversizedBeforeDecoding(t *testing.T) {
	huge := withDimensions(t, encodePNG(t, solid(4, 4)), 12000, 12000)

	if _, err := RenderPreview(huge, 256, 0); !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("RenderPreview err = %v, want ErrTooManyPixels", err)
	}
	if _, err := ToPNG(huge, 0); !errors.Is(err, ErrTooManyPixels) {
		t.Fatalf("ToPNG err = %v, want ErrTooManyPixels", err)
	}
}

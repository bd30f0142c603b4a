package classify

import (
	"testing"

	"imagecleaner/pixelbuf"
	"imagecleaner/types"
)

func solidRGBA8(t *testing.T, pixels int, r, g, b, a uint8) *pixelbuf.PixelBuffer {
	t.Helper()
	pix := make([]uint8, 0, pixels*4)
	for i := 0; i < pixels; i++ {
		pix = append(pix, r, g, b, a)
	}
	buf, err := pixelbuf.New(pixels, 1, pixelbuf.RGBA8, pix, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}
	return buf
}

func noiseRGB8(t *testing.T, pixels int) *pixelbuf.PixelBuffer {
	t.Helper()
	pix := make([]uint8, 0, pixels*3)
	state := uint32(42)
	for i := 0; i < pixels*3; i++ {
		state = state*1664525 + 1013904223
		pix = append(pix, uint8(state>>24))
	}
	buf, err := pixelbuf.New(pixels, 1, pixelbuf.RGB8, pix, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}
	return buf
}

func TestDecodeFailureVerdict(t *testing.T) {
	v := DecodeFailure()
	if !v.Delete || v.Reason != types.ReasonDecodeFailure {
		t.Fatalf("verdict = %+v, want delete with decode_failure", v)
	}
}

func TestUnsupportedLayoutVerdict(t *testing.T) {
	v := UnsupportedLayout()
	if !v.Delete || v.Reason != types.ReasonUnsupportedLayout {
		t.Fatalf("verdict = %+v, want delete with unsupported_layout", v)
	}

	buf := &pixelbuf.PixelBuffer{Layout: pixelbuf.Unsupported}
	v = Classify(buf, DefaultConfig())
	if !v.Delete || v.Reason != types.ReasonUnsupportedLayout {
		t.Fatalf("classify verdict = %+v, want delete with unsupported_layout", v)
	}
}

// BGR-family layouts are kept unconditionally: their channel order is never
// normalized, so neither policy can classify them.
func TestBGRLayoutsKeptUnconditionally(t *testing.T) {
	bgr, err := pixelbuf.New(2, 1, pixelbuf.BGR8, []uint8{0, 0, 0, 0, 0, 0}, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}
	bgra, err := pixelbuf.New(1, 1, pixelbuf.BGRA8, []uint8{0, 0, 0, 255}, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}

	for _, mode := range []Mode{ModeTargetColors, ModeVariance} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		for _, buf := range []*pixelbuf.PixelBuffer{bgr, bgra} {
			if v := Classify(buf, cfg); v.Delete {
				t.Errorf("mode %v: solid-black %s buffer flagged, want keep", mode, buf.Layout)
			}
		}
	}
}

func TestVarianceModeFlagsSolidColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeVariance

	// Any constant color counts, including colors outside the palette.
	buf := solidRGBA8(t, 100, 42, 117, 9, 255)
	v := Classify(buf, cfg)
	if !v.Delete || v.Reason != types.ReasonSolidColor {
		t.Fatalf("verdict = %+v, want delete with solid_color", v)
	}
	if v.Measured != 0 {
		t.Fatalf("measured = %v, want 0 for constant image", v.Measured)
	}
}

func TestVarianceModeKeepsNoise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeVariance

	v := Classify(noiseRGB8(t, 1024), cfg)
	if v.Delete {
		t.Fatalf("noise image flagged: %+v", v)
	}
	if v.Measured <= cfg.VarianceThreshold {
		t.Fatalf("measured variance %v not above threshold %v", v.Measured, cfg.VarianceThreshold)
	}
}

// A single flat channel must not flag the image; every channel has to be
// flat simultaneously.
func TestVarianceModeRequiresAllChannelsFlat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeVariance

	pix := make([]uint8, 0, 512*3)
	for i := 0; i < 512; i++ {
		pix = append(pix, 0, uint8(i%256), uint8((i*7)%256))
	}
	buf, err := pixelbuf.New(512, 1, pixelbuf.RGB8, pix, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}

	if v := Classify(buf, cfg); v.Delete {
		t.Fatalf("image with one flat channel flagged: %+v", v)
	}
}

func TestTargetModeFlagsPaletteColors(t *testing.T) {
	cfg := DefaultConfig()

	palette := []struct {
		name    string
		r, g, b uint8
	}{
		{"black", 0, 0, 0},
		{"white", 255, 255, 255},
		{"red", 255, 0, 0},
		{"green", 0, 255, 0},
		{"blue", 0, 0, 255},
	}
	for _, p := range palette {
		buf := solidRGBA8(t, 64, p.r, p.g, p.b, 255)
		v := Classify(buf, cfg)
		if !v.Delete || v.Reason != types.ReasonTargetColorMatch {
			t.Errorf("%s: verdict = %+v, want delete with target_color_match", p.name, v)
		}
		if v.Measured != 100.0 {
			t.Errorf("%s: measured = %v, want 100", p.name, v.Measured)
		}
	}
}

func TestTargetModeKeepsOffPaletteSolid(t *testing.T) {
	// Solid but not one of the configured targets: target mode keeps it,
	// variance mode would flag it.
	buf := solidRGBA8(t, 64, 13, 57, 200, 255)

	if v := Classify(buf, DefaultConfig()); v.Delete {
		t.Fatalf("off-palette solid flagged in target mode: %+v", v)
	}
}

func TestTargetModeThresholdIsStrict(t *testing.T) {
	// Exactly 80% coverage does not exceed the 80.0 threshold.
	pix := make([]uint8, 0, 10*4)
	for i := 0; i < 10; i++ {
		if i < 8 {
			pix = append(pix, 0, 0, 0, 255)
		} else {
			pix = append(pix, 10, 10, 10, 255)
		}
	}
	buf, err := pixelbuf.New(10, 1, pixelbuf.RGBA8, pix, nil)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}

	if v := Classify(buf, DefaultConfig()); v.Delete {
		t.Fatalf("80%% coverage flagged at threshold 80: %+v", v)
	}

	cfg := DefaultConfig()
	for i := range cfg.Targets {
		cfg.Targets[i].Quantity = 79.9
	}
	if v := Classify(buf, cfg); !v.Delete {
		t.Fatal("80% coverage not flagged at threshold 79.9")
	}
}

func TestWidenTargetPolicy(t *testing.T) {
	target := TargetColor{R: 10, G: 20, B: 255}

	got := widenTarget(target, pixelbuf.RGBA16)
	want := [4]uint16{20, 40, 510, 65535}
	if got != want {
		t.Fatalf("16-bit widening = %v, want %v", got, want)
	}

	got = widenTarget(target, pixelbuf.RGBA8)
	want = [4]uint16{10, 20, 255, 255}
	if got != want {
		t.Fatalf("8-bit mapping = %v, want %v", got, want)
	}
}

// 16-bit buffers match against the widened palette: a solid image at the
// widened component values is flagged.
func TestTargetMode16Bit(t *testing.T) {
	pix := make([]uint16, 0, 16*4)
	for i := 0; i < 16; i++ {
		pix = append(pix, 510, 510, 510, 65535) // white widened with the *2 policy
	}
	buf, err := pixelbuf.New(4, 4, pixelbuf.RGBA16, nil, pix)
	if err != nil {
		t.Fatalf("build buffer: %v", err)
	}

	v := Classify(buf, DefaultConfig())
	if !v.Delete || v.Reason != types.ReasonTargetColorMatch {
		t.Fatalf("verdict = %+v, want delete with target_color_match", v)
	}
}

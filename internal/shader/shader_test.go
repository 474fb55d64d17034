package shader

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/shader/bake"
)

// skipUnbaked skips tests that load SPIR-V before go generate has run.
// TestSPIRVMatchesSource reports the missing modules.
func skipUnbaked(t *testing.T, name string) {
	t.Helper()
	if _, err := SPIRVBytes(name); errors.Is(err, ErrNotBaked) {
		t.Skipf("%s.spv not generated", name)
	}
}

func TestNames(t *testing.T) {
	got := Names()
	want := []string{Color, Overlay, Text}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSourceHasEntryPoints(t *testing.T) {
	for _, name := range Names() {
		src, err := Source(name)
		if err != nil {
			t.Fatalf("Source(%q) error = %v", name, err)
		}
		for _, entry := range []string{"fn " + VertexEntry, "fn " + FragmentEntry} {
			if !strings.Contains(src, entry) {
				t.Errorf("%s shader is missing %q", name, entry)
			}
		}
	}
}

func TestSourceUnknown(t *testing.T) {
	if _, err := Source("missing"); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("Source(missing) error = %v, want ErrUnknownShader", err)
	}
	if _, err := SPIRV("missing"); !errors.Is(err, ErrUnknownShader) {
		t.Errorf("SPIRV(missing) error = %v, want ErrUnknownShader", err)
	}
}

// The embedded modules must be exactly what shaderbake produces from the
// embedded sources today.
func TestSPIRVMatchesSource(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			embedded, err := SPIRVBytes(name)
			if err != nil {
				t.Fatalf("SPIRVBytes(%q) error = %v; run go generate ./internal/shader", name, err)
			}
			src, err := Source(name)
			if err != nil {
				t.Fatal(err)
			}
			fresh, err := bake.Compile(src)
			if err != nil {
				t.Fatalf("compile %s: %v", name, err)
			}
			if !bytes.Equal(embedded, fresh) {
				t.Errorf("spirv/%s.spv (%d bytes) is stale against wgsl/%s.wgsl (%d bytes); run go generate ./internal/shader",
					name, len(embedded), name, len(fresh))
			}
		})
	}
}

func TestSPIRVWords(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			skipUnbaked(t, name)
			words, err := SPIRV(name)
			if err != nil {
				t.Fatalf("SPIRV(%q) error = %v", name, err)
			}
			code, err := SPIRVBytes(name)
			if err != nil {
				t.Fatal(err)
			}
			if len(code) != len(words)*4 || words[0] != spirvMagic {
				t.Fatalf("SPIRV(%q) does not decode its embedded module", name)
			}

			again, err := SPIRV(name)
			if err != nil {
				t.Fatal(err)
			}
			if &again[0] != &words[0] {
				t.Error("SPIRV should return the cached module on the second call")
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		code    []byte
		want    []uint32
		wantErr bool
	}{
		{"header", []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}, []uint32{spirvMagic, 0x00010000}, false},
		{"empty", nil, nil, true},
		{"unaligned", []byte{0x03, 0x02, 0x23, 0x07, 0x00}, nil, true},
		{"big endian", []byte{0x07, 0x23, 0x02, 0x03}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("decode() = %#x, want %#x", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("word %d = %#x, want %#x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestModule(t *testing.T) {
	src, err := Module(primer.ShaderWGSL, Color)
	if err != nil {
		t.Fatal(err)
	}
	if src.WGSL == "" || src.SPIRV != nil {
		t.Error("WGSL module should carry only WGSL source")
	}

	if _, err := Module("dxil", Color); !errors.Is(err, primer.ErrInvalidConfig) {
		t.Errorf("Module(dxil) error = %v, want ErrInvalidConfig", err)
	}

	skipUnbaked(t, Color)
	src, err = Module(primer.ShaderSPIRV, Color)
	if err != nil {
		t.Fatal(err)
	}
	if src.WGSL != "" || len(src.SPIRV) == 0 {
		t.Error("SPIR-V module should carry only SPIR-V words")
	}
}

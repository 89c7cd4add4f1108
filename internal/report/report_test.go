package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"lsbsteg"
	"lsbsteg/internal/imageio"
)

func sampleReport(psnr float64) *Report {
	r := &Report{Message: "Hi"}
	r.SetCodec(lsbsteg.DefaultConfig(), lsbsteg.CompressionNone)
	r.SetPlan(lsbsteg.Plan{MessageBits: 16, PayloadBits: 48, CapacityBits: 48, PixelsNeeded: 16})
	r.SetExtraction("Hi")
	r.SetFidelity(lsbsteg.Fidelity{MSE: 0.25, PSNR: psnr, ChangedPixels: 4, TotalPixels: 16})
	r.Original = FileFromInfo(imageio.Info{Path: "in.png", Format: "png", Width: 4, Height: 4, Size: 100, Digest: "aa"})
	r.Stego = FileFromInfo(imageio.Info{Path: "out.png", Format: "png", Width: 4, Height: 4, Size: 101, Digest: "bb"})
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
		{"cbor", FormatCBOR},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(54.15), FormatText); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Message: Hi\n",
		"Message bits: 16\n",
		"Total payload bits: 48\n",
		"Capacity bits: 48\n",
		"Estimated pixels needed: 16\n",
		"Extraction successful: true\n",
		"File sizes: original=100, stego=101\n",
		"MSE=0.250000, PSNR=54.150000 dB\n",
		"Pixels changed: 4 of 16 (25.000000 %)\n",
		"blake3 bb",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_CompareOnly(t *testing.T) {
	r := &Report{}
	r.SetFidelity(lsbsteg.Fidelity{PSNR: math.Inf(1), TotalPixels: 9})
	var buf bytes.Buffer
	if err := Write(&buf, r, FormatText); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "Message") || strings.Contains(out, "File sizes") {
		t.Fatalf("unexpected sections:\n%s", out)
	}
	if !strings.Contains(out, "PSNR=inf dB") {
		t.Fatalf("expected infinite PSNR:\n%s", out)
	}
}

func TestStructuredRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatCBOR} {
		for _, psnr := range []float64{48.5, math.Inf(1)} {
			t.Run(string(f), func(t *testing.T) {
				want := sampleReport(psnr)
				var buf bytes.Buffer
				if err := Write(&buf, want, f); err != nil {
					t.Fatalf("Write: %v", err)
				}
				got, err := Decode(buf.Bytes(), f)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if got.Fidelity == nil || float64(got.Fidelity.PSNR) != psnr {
					t.Fatalf("psnr: got %+v, want %v", got.Fidelity, psnr)
				}
				if *got.Plan != *want.Plan || *got.Codec != *want.Codec || *got.Stego != *want.Stego {
					t.Fatalf("sections differ: got %+v", got)
				}
				if !got.Extraction.Verified {
					t.Fatalf("extraction not verified")
				}
			})
		}
	}
}

func TestJSON_InfinitePSNR(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(math.Inf(1)), FormatJSON); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"psnr_db": "inf"`) {
		t.Fatalf("expected psnr_db inf:\n%s", buf.String())
	}
}

func TestYAML_InfinitePSNR(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(math.Inf(1)), FormatYAML); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "psnr_db: .inf") {
		t.Fatalf("expected psnr_db .inf:\n%s", buf.String())
	}
}

func TestCBOR_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := Write(&a, sampleReport(40), FormatCBOR); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(&b, sampleReport(40), FormatCBOR); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("CBOR output differs between equal reports")
	}
}

func TestSetExtraction_Mismatch(t *testing.T) {
	r := &Report{Message: "expected"}
	r.SetExtraction("other")
	if r.Extraction.Verified {
		t.Fatal("mismatched extraction marked verified")
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, &Report{}, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Decode(nil, FormatText); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

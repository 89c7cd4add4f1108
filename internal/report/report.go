// Package report renders the result of an embed or compare run.
//
// A Report is plain data: the codec parameters, the capacity plan, the
// extraction check, the fidelity figures and the files involved. It can be
// written as human-readable text or as JSON, YAML or CBOR for tooling.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"lsbsteg"
	"lsbsteg/internal/imageio"
)

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

var ErrUnknownFormat = errors.New("report: unknown format")

// ParseFormat parses a format name. The empty string is text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// encMode writes CBOR with Core Deterministic Encoding, so equal reports
// produce equal bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Decibels is a PSNR value. Identical images have infinite PSNR, which
// JSON cannot carry as a number, so it is written as the string "inf".
type Decibels float64

func (d Decibels) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(d))
}

func (d *Decibels) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*d = Decibels(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Decibels(v)
	return nil
}

func (d Decibels) String() string {
	if math.IsInf(float64(d), 1) {
		return "inf"
	}
	return strconv.FormatFloat(float64(d), 'f', 6, 64)
}

// Codec records the parameters a reader needs to recover the message.
type Codec struct {
	BitsPerChannel int    `json:"bits_per_channel" yaml:"bits_per_channel"`
	HeaderBits     int    `json:"header_bits" yaml:"header_bits"`
	Compression    string `json:"compression" yaml:"compression"`
}

// Plan is the capacity plan of an embed run.
type Plan struct {
	MessageBits  int `json:"message_bits" yaml:"message_bits"`
	PayloadBits  int `json:"payload_bits" yaml:"payload_bits"`
	CapacityBits int `json:"capacity_bits" yaml:"capacity_bits"`
	PixelsNeeded int `json:"pixels_needed" yaml:"pixels_needed"`
}

// Extraction is the result of reading the message back from the written file.
type Extraction struct {
	Message  string `json:"message" yaml:"message"`
	Verified bool   `json:"verified" yaml:"verified"`
}

// Fidelity holds the distortion figures between two images.
type Fidelity struct {
	MSE            float64  `json:"mse" yaml:"mse"`
	PSNR           Decibels `json:"psnr_db" yaml:"psnr_db"`
	ChangedPixels  int      `json:"changed_pixels" yaml:"changed_pixels"`
	TotalPixels    int      `json:"total_pixels" yaml:"total_pixels"`
	ChangedPercent float64  `json:"changed_percent" yaml:"changed_percent"`
}

// File describes one image file.
type File struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format" yaml:"format"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Size   int64  `json:"size_bytes" yaml:"size_bytes"`
	Digest string `json:"blake3" yaml:"blake3"`
}

// Report is the outcome of one run. Sections that did not apply are nil.
type Report struct {
	Message    string      `json:"message,omitempty" yaml:"message,omitempty"`
	Codec      *Codec      `json:"codec,omitempty" yaml:"codec,omitempty"`
	Plan       *Plan       `json:"plan,omitempty" yaml:"plan,omitempty"`
	Extraction *Extraction `json:"extraction,omitempty" yaml:"extraction,omitempty"`
	Fidelity   *Fidelity   `json:"fidelity,omitempty" yaml:"fidelity,omitempty"`
	Original   *File       `json:"original,omitempty" yaml:"original,omitempty"`
	Stego      *File       `json:"stego,omitempty" yaml:"stego,omitempty"`
}

// SetCodec records cfg and the compression method.
func (r *Report) SetCodec(cfg lsbsteg.Config, method lsbsteg.Compression) {
	r.Codec = &Codec{
		BitsPerChannel: cfg.BitsPerChannel,
		HeaderBits:     cfg.HeaderBits,
		Compression:    method.String(),
	}
}

// SetPlan records p.
func (r *Report) SetPlan(p lsbsteg.Plan) {
	r.Plan = &Plan{
		MessageBits:  p.MessageBits,
		PayloadBits:  p.PayloadBits,
		CapacityBits: p.CapacityBits,
		PixelsNeeded: p.PixelsNeeded,
	}
}

// SetExtraction records the extracted text and whether it matches r.Message.
func (r *Report) SetExtraction(extracted string) {
	r.Extraction = &Extraction{Message: extracted, Verified: extracted == r.Message}
}

// SetFidelity records f.
func (r *Report) SetFidelity(f lsbsteg.Fidelity) {
	r.Fidelity = &Fidelity{
		MSE:            f.MSE,
		PSNR:           Decibels(f.PSNR),
		ChangedPixels:  f.ChangedPixels,
		TotalPixels:    f.TotalPixels,
		ChangedPercent: f.ChangedRatio() * 100,
	}
}

// FileFromInfo converts image file metadata into a report section.
func FileFromInfo(info imageio.Info) *File {
	return &File{
		Path:   info.Path,
		Format: info.Format,
		Width:  info.Width,
		Height: info.Height,
		Size:   info.Size,
		Digest: info.Digest,
	}
}

// Write renders r to w in format f.
func Write(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatText, "":
		return writeText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		data, err := encMode.Marshal(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode parses a report written by Write in a structured format.
func Decode(data []byte, f Format) (*Report, error) {
	r := new(Report)
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, r)
	case FormatYAML:
		err = yaml.Unmarshal(data, r)
	case FormatCBOR:
		err = cbor.Unmarshal(data, r)
	default:
		return nil, fmt.Errorf("%w: cannot decode %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func writeText(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Steganography LSB report")
	if r.Message != "" {
		fmt.Fprintf(bw, "Message: %s\n", r.Message)
	}
	if c := r.Codec; c != nil {
		fmt.Fprintf(bw, "Bits per channel: %d\n", c.BitsPerChannel)
		fmt.Fprintf(bw, "Header bits: %d\n", c.HeaderBits)
		fmt.Fprintf(bw, "Compression: %s\n", c.Compression)
	}
	if p := r.Plan; p != nil {
		fmt.Fprintf(bw, "Message bits: %d\n", p.MessageBits)
		fmt.Fprintf(bw, "Total payload bits: %d\n", p.PayloadBits)
		fmt.Fprintf(bw, "Capacity bits: %d\n", p.CapacityBits)
		fmt.Fprintf(bw, "Estimated pixels needed: %d\n", p.PixelsNeeded)
	}
	if e := r.Extraction; e != nil {
		fmt.Fprintf(bw, "Extraction result: %s\n", e.Message)
		fmt.Fprintf(bw, "Extraction successful: %t\n", e.Verified)
	}
	if r.Original != nil && r.Stego != nil {
		fmt.Fprintf(bw, "File sizes: original=%d, stego=%d\n", r.Original.Size, r.Stego.Size)
	}
	if f := r.Fidelity; f != nil {
		fmt.Fprintf(bw, "MSE=%.6f, PSNR=%s dB\n", f.MSE, f.PSNR)
		fmt.Fprintf(bw, "Pixels changed: %d of %d (%.6f %%)\n", f.ChangedPixels, f.TotalPixels, f.ChangedPercent)
	}
	for _, sec := range []struct {
		name string
		file *File
	}{{"Original", r.Original}, {"Stego", r.Stego}} {
		if sec.file == nil {
			continue
		}
		fmt.Fprintf(bw, "%s: %s (%s %dx%d, %d bytes, blake3 %s)\n",
			sec.name, sec.file.Path, sec.file.Format, sec.file.Width, sec.file.Height, sec.file.Size, sec.file.Digest)
	}
	return bw.Flush()
}

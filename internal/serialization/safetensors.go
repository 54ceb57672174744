// Package serialization saves and restores model parameters in the
// SafeTensors layout:
//
//	[8 bytes: header size (uint64 LE)]
//	[header size bytes: JSON header]
//	[tensor data: raw little-endian bytes]
//
// Parameters are keyed by their position in Module.Parameters, so a
// checkpoint can only be restored into a model of the same architecture.
package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dario-coscia/PINA/internal/nn"
	"github.com/dario-coscia/PINA/internal/tensor"
)

// Metadata keys written by Write.
const (
	MetaChecksum = "checksum"
	MetaFormat   = "format"
)

const (
	format        = "pina-params"
	maxHeaderSize = 16 << 20
	metadataKey   = "__metadata__"
)

// Common errors.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge   = errors.New("header exceeds maximum size")
	ErrArchitecture     = errors.New("checkpoint does not match model")
)

// TensorInfo describes one tensor entry of the header.
type TensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Key names the i-th parameter of a module.
func Key(i int, p *nn.Parameter) string {
	return fmt.Sprintf("params.%d.%s", i, p.Name())
}

// Write encodes the parameters of m. User metadata is stored alongside the
// format marker and a SHA-256 of the data section.
func Write(w io.Writer, m nn.Module, metadata map[string]string) error {
	params := m.Parameters()
	header := make(map[string]any, len(params)+1)

	var data []byte
	for i, p := range params {
		raw := p.Tensor()
		dt, err := dtypeName(raw.DType())
		if err != nil {
			return fmt.Errorf("parameter %s: %w", Key(i, p), err)
		}
		shape := make([]int64, len(raw.Shape()))
		for j, d := range raw.Shape() {
			shape[j] = int64(d)
		}
		start := int64(len(data))
		data = append(data, raw.Data()...)
		header[Key(i, p)] = TensorInfo{
			DType:       dt,
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	sum := sha256.Sum256(data)
	meta[MetaChecksum] = hex.EncodeToString(sum[:])
	meta[MetaFormat] = format
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// Read restores the parameters of m in place and returns the stored
// metadata. Values are converted to each parameter's current dtype, so a
// float64 checkpoint can be loaded into a float32 model.
func Read(r io.Reader, m nn.Module) (map[string]string, error) {
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if size > maxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, size)
	}
	headerJSON := make([]byte, size)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	var meta map[string]string
	if mr, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(mr, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(raw, metadataKey)
	}
	if meta[MetaFormat] != format {
		return nil, fmt.Errorf("unsupported format %q", meta[MetaFormat])
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != meta[MetaChecksum] {
		return nil, ErrChecksumMismatch
	}

	params := m.Parameters()
	if len(raw) != len(params) {
		return nil, fmt.Errorf("%w: %d tensors for %d parameters", ErrArchitecture, len(raw), len(params))
	}
	values := make([][]float64, len(params))
	for i, p := range params {
		key := Key(i, p)
		entry, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrArchitecture, key)
		}
		var info TensorInfo
		if err := json.Unmarshal(entry, &info); err != nil {
			return nil, fmt.Errorf("failed to parse tensor %s: %w", key, err)
		}
		if values[i], err = decode(info, data, p.Tensor().Shape()); err != nil {
			return nil, fmt.Errorf("tensor %s: %w", key, err)
		}
	}
	// Nothing is written until every tensor decoded.
	for i, p := range params {
		p.Tensor().SetFloat64s(values[i])
	}
	return meta, nil
}

// Save writes the parameters of m to path.
func Save(path string, m nn.Module, metadata map[string]string) error {
	//nolint:gosec // G304: path is chosen by the user
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, m, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load restores the parameters of m from path.
func Load(path string, m nn.Module) (map[string]string, error) {
	//nolint:gosec // G304: path is chosen by the user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Read(f, m)
}

func decode(info TensorInfo, data []byte, want tensor.Shape) ([]float64, error) {
	shape := make(tensor.Shape, len(info.Shape))
	for i, d := range info.Shape {
		shape[i] = int(d)
	}
	if !slices.Equal(shape, want) {
		return nil, fmt.Errorf("%w: shape %v, model has %v", ErrArchitecture, shape, want)
	}
	dt, err := parseDType(info.DType)
	if err != nil {
		return nil, err
	}
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end > int64(len(data)) || end-start != int64(shape.NumElements()*dt.Size()) {
		return nil, fmt.Errorf("data offsets [%d, %d] out of bounds", start, end)
	}
	t, err := tensor.NewRaw(shape, dt, tensor.CPU)
	if err != nil {
		return nil, err
	}
	copy(t.Data(), data[start:end])
	return t.Float64s(), nil
}

func dtypeName(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	}
	return "", fmt.Errorf("unsupported dtype %s", dt)
}

func parseDType(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	}
	return 0, fmt.Errorf("unsupported dtype %q", s)
}

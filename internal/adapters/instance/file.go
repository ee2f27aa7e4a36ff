package instance

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/okian/staffing/internal/domain/model"
)

// Supported formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

const zstdExt = ".zst"

// DetectFormat resolves FormatAuto from the path, ignoring a trailing .zst.
func DetectFormat(path, format string) (string, error) {
	switch format {
	case FormatText, FormatJSON:
		return format, nil
	case "", FormatAuto:
		if strings.EqualFold(filepath.Ext(strings.TrimSuffix(path, zstdExt)), ".json") {
			return FormatJSON, nil
		}
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Read parses an instance in the given (already resolved) format.
func Read(r io.Reader, format string) (*model.Instance, error) {
	switch format {
	case FormatText:
		return ReadText(r)
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read instance: %w", err)
		}
		return ReadJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Open reads the instance at path. Files ending in .zst are decompressed.
func Open(path, format string) (*model.Instance, error) {
	format, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r, format)
}

// OpenReader opens path for reading, decompressing .zst files.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, zstdExt) {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd reader %s: %w", path, err)
	}
	return &zstdReadCloser{Decoder: zr, f: f}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// Create creates path for writing, compressing when it ends in .zst. The
// caller must Close the writer to flush it.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, zstdExt) {
		return f, nil
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer %s: %w", path, err)
	}
	return &zstdWriteCloser{Encoder: zw, f: f}, nil
}

type zstdWriteCloser struct {
	*zstd.Encoder
	f *os.File
}

func (z *zstdWriteCloser) Close() error {
	if err := z.Encoder.Close(); err != nil {
		_ = z.f.Close()
		return err
	}
	return z.f.Close()
}

package hwp

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Function variables for testing injection.
var (
	newZstdWriter  = func() (*zstd.Encoder, error) { return zstd.NewWriter(nil) }
	newZstdReader  = func(opts ...zstd.DOption) (*zstd.Decoder, error) { return zstd.NewReader(nil, opts...) }
	newFlateWriter = func(w io.Writer) (*flate.Writer, error) { return flate.NewWriter(w, flate.BestCompression) }
	zipCreate      = func(zw *zip.Writer, name string) (io.Writer, error) { return zw.Create(name) }
	zipClose       = func(zw *zip.Writer) error { return zw.Close() }
	zipOpen        = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
	readAll        = io.ReadAll
	lz4Close       = func(w *lz4.Writer) error { return w.Close() }
	brotliClose    = func(w *brotli.Writer) error { return w.Close() }
	brotliWrite    = func(w *brotli.Writer, p []byte) (int, error) { return w.Write(p) }
)

// DecompressReader wraps r in a raw deflate (no zlib or gzip framing) reader
// when compressed is true and returns r unchanged otherwise.
func DecompressReader(r io.Reader, compressed bool) io.ReadCloser {
	if !compressed {
		return io.NopCloser(r)
	}
	return flate.NewReader(r)
}

// inflateStream returns the payload of a DocInfo, Section or BinData stream,
// inflating it when compressed is set. Output beyond maxInflated fails with
// ErrLimitExceeded.
func inflateStream(raw []byte, compressed bool, maxInflated uint64) ([]byte, error) {
	if !compressed {
		return raw, nil
	}
	rc := DecompressReader(bytes.NewReader(raw), true)
	defer rc.Close()
	out, err := readAll(io.LimitReader(rc, int64(maxInflated)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrDecompress, err)
	}
	if uint64(len(out)) > maxInflated {
		return nil, fmt.Errorf("%w: inflated stream exceeds %d bytes", ErrLimitExceeded, maxInflated)
	}
	return out, nil
}

// Compression selects the codec attachments are re-encoded with on export.
type Compression uint16

const (
	CompNone    Compression = 0x0
	CompZIP     Compression = 0x1
	CompZSTD    Compression = 0x2
	CompLZ4     Compression = 0x3
	CompBR      Compression = 0x4
	CompDeflate Compression = 0x5
)

// ParseCompression maps a codec name ("none", "deflate", "zip", "zstd", "lz4",
// "br") to its Compression.
func ParseCompression(name string) (Compression, error) {
	for c, n := range compressionNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrValidation, name)
}

var compressionNames = map[Compression]string{
	CompNone:    "none",
	CompZIP:     "zip",
	CompZSTD:    "zstd",
	CompLZ4:     "lz4",
	CompBR:      "br",
	CompDeflate: "deflate",
}

func (c Compression) String() string {
	if n, ok := compressionNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Compression(%d)", uint16(c))
}

// Ext is the file name suffix used for data exported with c.
func (c Compression) Ext() string {
	switch c {
	case CompNone:
		return ""
	case CompZSTD:
		return ".zst"
	default:
		return "." + c.String()
	}
}

// CompressBytes encodes in with comp.
func CompressBytes(comp Compression, in []byte) ([]byte, error) {
	switch comp {
	case CompNone:
		return in, nil
	case CompDeflate:
		return deflateCompress(in)
	case CompZIP:
		return zipCompress(in)
	case CompZSTD:
		return zstdCompress(in)
	case CompLZ4:
		return lz4Compress(in)
	case CompBR:
		return brotliCompress(in)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrValidation, comp)
	}
}

// DecompressBytes reverses CompressBytes. Output larger than maxOut fails with
// ErrLimitExceeded.
func DecompressBytes(comp Compression, in []byte, maxOut uint64) ([]byte, error) {
	var out []byte
	var err error
	switch comp {
	case CompNone:
		out = in
	case CompDeflate:
		return inflateStream(in, true, maxOut)
	case CompZIP:
		out, err = zipDecompress(in, maxOut)
	case CompZSTD:
		out, err = zstdDecompress(in, maxOut)
	case CompLZ4:
		out, err = lz4Decompress(in, maxOut)
	case CompBR:
		out, err = brotliDecompress(in, maxOut)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrValidation, comp)
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(out)) > maxOut {
		return nil, fmt.Errorf("%w: %s output exceeds %d bytes", ErrLimitExceeded, comp, maxOut)
	}
	return out, nil
}

// deflateCompress produces a raw deflate stream, the encoding compressed
// document streams use.
func deflateCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := newFlateWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(in); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const zipEntryName = "payload.bin"

// zipCompress creates a ZIP archive containing in as a single entry.
func zipCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := zipCompressNamed(&buf, zipEntryName, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zipCompressNamed creates a ZIP archive with a single entry.
func zipCompressNamed(w io.Writer, name string, in []byte) error {
	zw := zip.NewWriter(w)
	entry, err := zipCreate(zw, name)
	if err != nil {
		_ = zipClose(zw)
		return err
	}
	if _, err := entry.Write(in); err != nil {
		_ = zipClose(zw)
		return err
	}
	return zipClose(zw)
}

// zipDecompress extracts the single entry of a ZIP archive written by
// zipCompress.
func zipDecompress(zipBytes []byte, maxOut uint64) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: zip: %v", ErrDecompress, err)
	}
	if len(zr.File) != 1 {
		return nil, fmt.Errorf("%w: zip must contain exactly one entry", ErrDecompress)
	}
	zf := zr.File[0]
	if zf.Name != zipEntryName {
		return nil, fmt.Errorf("%w: zip entry name must be %s", ErrDecompress, zipEntryName)
	}
	if zf.FileInfo().IsDir() {
		return nil, fmt.Errorf("%w: zip entry must be a file", ErrDecompress)
	}
	if zf.UncompressedSize64 > maxOut {
		return nil, fmt.Errorf("%w: zip entry is %d bytes", ErrLimitExceeded, zf.UncompressedSize64)
	}
	rc, err := zipOpen(zf)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readAll(io.LimitReader(rc, int64(maxOut)+1))
}

// zstdCompress compresses in using the Zstandard algorithm.
func zstdCompress(in []byte) ([]byte, error) {
	enc, err := newZstdWriter()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

// zstdDecompress bounds the decoder's memory by maxOut. Every frame window is
// at least zstd.MinWindowSize, so smaller bounds are raised to it and the
// caller's exact check still applies.
func zstdDecompress(in []byte, maxOut uint64) ([]byte, error) {
	dec, err := newZstdReader(zstd.WithDecoderMaxMemory(min(max(maxOut, zstd.MinWindowSize), 1<<63)))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(in, nil)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		return nil, fmt.Errorf("%w: zstd output exceeds %d bytes", ErrLimitExceeded, maxOut)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
	}
	return out, nil
}

// lz4Compress compresses in using the LZ4 frame format.
func lz4Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := lz4CompressTo(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lz4CompressTo(w io.Writer, in []byte) error {
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(in); err != nil {
		_ = lz4Close(zw)
		return err
	}
	return lz4Close(zw)
}

func lz4Decompress(in []byte, maxOut uint64) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(in))
	b, err := readAll(io.LimitReader(r, int64(maxOut)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrDecompress, err)
	}
	return b, nil
}

// brotliCompress compresses in using the Brotli algorithm.
func brotliCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := brotliCompressTo(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliCompressTo(w io.Writer, in []byte) error {
	bw := brotli.NewWriter(w)
	if _, err := brotliWrite(bw, in); err != nil {
		_ = brotliClose(bw)
		return err
	}
	return brotliClose(bw)
}

func brotliDecompress(in []byte, maxOut uint64) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(in))
	b, err := readAll(io.LimitReader(r, int64(maxOut)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: brotli: %v", ErrDecompress, err)
	}
	return b, nil
}

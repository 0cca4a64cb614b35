package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers.
const (
	LabelMagic = 2049 // 0x00000801
	ImageMagic = 2051 // 0x00000803
)

// Header limits. Counts are trusted only as far as the stream backs them:
// slices grow as data is read, so a corrupt count fails with EOF instead of
// allocating up front.
const (
	maxIDXCount  = 1 << 28 // Images or labels per file
	maxIDXPixels = 1 << 20 // Pixels per image
	preallocCap  = 1 << 16 // Largest up-front slice capacity
)

// ReadImages decodes an IDX image stream.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255), row-major per image
//
// Returns one flat rows*cols slice per image.
func ReadImages(r io.Reader) (images [][]byte, rows, cols int, err error) {
	if err := readMagic(r, ImageMagic, "image"); err != nil {
		return nil, 0, 0, err
	}

	var header [3]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}

	numImages, numRows, numCols := header[0], header[1], header[2]
	if numImages > maxIDXCount || uint64(numRows)*uint64(numCols) > maxIDXPixels {
		return nil, 0, 0, fmt.Errorf("%w: %d images of %dx%d", ErrHeaderTooLarge, numImages, numRows, numCols)
	}

	imageSize := int(numRows * numCols)
	images = make([][]byte, 0, min(int(numImages), preallocCap))
	for i := 0; i < int(numImages); i++ {
		img := make([]byte, imageSize)
		if _, err := io.ReadFull(r, img); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		images = append(images, img)
	}

	return images, int(numRows), int(numCols), nil
}

// ReadLabels decodes an IDX label stream.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadLabels(r io.Reader) ([]byte, error) {
	if err := readMagic(r, LabelMagic, "label"); err != nil {
		return nil, err
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read label header: %w", err)
	}
	if count > maxIDXCount {
		return nil, fmt.Errorf("%w: %d labels", ErrHeaderTooLarge, count)
	}

	labels, err := io.ReadAll(io.LimitReader(r, int64(count)))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) != int(count) {
		return nil, fmt.Errorf("failed to read labels: got %d of %d: %w", len(labels), count, io.ErrUnexpectedEOF)
	}
	return labels, nil
}

// readMagic reads the leading magic number and checks it against want.
func readMagic(r io.Reader, want uint32, kind string) error {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return fmt.Errorf("failed to read %s magic number: %w", kind, err)
	}
	if magic != want {
		return fmt.Errorf("%w: got %d, want %d (expected %s file)", ErrInvalidMagic, magic, want, kind)
	}
	return nil
}

// openIDX opens path for reading, transparently decompressing ".gz" files.
func openIDX(path string) (io.ReadCloser, error) {
	//nolint:gosec // G304: dataset paths come from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return struct {
			io.Reader
			io.Closer
		}{bufio.NewReader(f), f}, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	ferr := g.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

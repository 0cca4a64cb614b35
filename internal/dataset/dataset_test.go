package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/internal/nn"
)

func encodeImages(t *testing.T, rows, cols int, images [][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	header := []uint32{ImageMagic, uint32(len(images)), uint32(rows), uint32(cols)}
	require.NoError(t, binary.Write(&buf, binary.BigEndian, header))
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

func encodeLabels(t *testing.T, labels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{LabelMagic, uint32(len(labels))}))
	buf.Write(labels)
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sampleImages() [][]byte {
	return [][]byte{
		{0, 255, 128, 0, 0, 0},
		{10, 20, 30, 40, 50, 60},
		{255, 255, 255, 255, 255, 255},
	}
}

func TestReadImages(t *testing.T) {
	data := encodeImages(t, 2, 3, sampleImages())

	images, rows, cols, err := ReadImages(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, sampleImages(), images)
}

func TestReadImages_BadMagic(t *testing.T) {
	data := encodeLabels(t, []byte{1, 2})

	_, _, _, err := ReadImages(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadImages_BadMagicShortStream(t *testing.T) {
	// A bare label header is shorter than an image header.
	_, _, _, err := ReadImages(bytes.NewReader(encodeLabels(t, nil)))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = ReadLabels(bytes.NewReader([]byte{0, 0, 8, 3}))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestReadImages_HugeCountIsNotPreallocated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{ImageMagic, 1 << 28, 1, 1}))
	buf.Write([]byte{1, 2, 3})

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, _, _, err := ReadImages(&buf)
	runtime.ReadMemStats(&after)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image 3")
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

func TestReadLabels_HugeCountIsNotPreallocated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, []uint32{LabelMagic, 1 << 28}))
	buf.Write([]byte{1, 2})

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := ReadLabels(&buf)
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

func TestReadImages_Truncated(t *testing.T) {
	data := encodeImages(t, 2, 3, sampleImages())

	_, _, _, err := ReadImages(bytes.NewReader(data[:len(data)-1]))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image 2")
}

func TestReadLabels(t *testing.T) {
	labels, err := ReadLabels(bytes.NewReader(encodeLabels(t, []byte{7, 0, 9})))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 9}, labels)

	_, err = ReadLabels(bytes.NewReader(encodeImages(t, 1, 1, nil)))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeFile(t, dir, "images-idx3-ubyte", encodeImages(t, 2, 3, sampleImages()))
	lblPath := writeFile(t, dir, "labels-idx1-ubyte.gz", gzipBytes(t, encodeLabels(t, []byte{3, 1, 4})))

	set, err := Load(imgPath, lblPath, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 2, set.Rows)
	assert.Equal(t, 3, set.Cols)
	assert.Equal(t, []byte{3, 1, 4}, set.Labels)

	limited, err := Load(imgPath, lblPath, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Len())
}

func TestLoadMNIST(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeFile(t, dir, "images-idx3-ubyte", encodeImages(t, 2, 3, sampleImages()))
	lblPath := writeFile(t, dir, "labels-idx1-ubyte", encodeLabels(t, []byte{3, 1, 4}))

	examples, err := LoadMNIST(imgPath, lblPath, 0)
	require.NoError(t, err)
	require.Len(t, examples, 3)
	assert.Len(t, examples[0].Input, 6)
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, examples[0].Expected)
}

func TestLoad_CountMismatch(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeFile(t, dir, "images", encodeImages(t, 2, 3, sampleImages()))
	lblPath := writeFile(t, dir, "labels", encodeLabels(t, []byte{3, 1}))

	_, err := Load(imgPath, lblPath, 0)
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"), "also-nope", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExamples(t *testing.T) {
	set := &Set{Rows: 2, Cols: 3, Images: sampleImages(), Labels: []byte{3, 1, 4}}

	examples, err := set.Examples(DigitClasses)
	require.NoError(t, err)
	require.Len(t, examples, 3)

	assert.Equal(t, []float64{0, 1, 128.0 / 255, 0, 0, 0}, examples[0].Input)
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, examples[0].Expected)
	for _, ex := range examples {
		for _, v := range ex.Input {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	set.Labels[2] = 12
	_, err = set.Examples(DigitClasses)
	assert.ErrorIs(t, err, ErrLabelRange)
}

func TestOneHot(t *testing.T) {
	v, err := OneHot(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, v)

	_, err = OneHot(-1, 3)
	assert.ErrorIs(t, err, ErrLabelRange)
	_, err = OneHot(3, 3)
	assert.ErrorIs(t, err, ErrLabelRange)
}

func TestShuffle_Deterministic(t *testing.T) {
	mk := func() []nn.Example {
		out := make([]nn.Example, 20)
		for i := range out {
			out[i] = nn.Example{Input: []float64{float64(i)}}
		}
		return out
	}
	a, b := mk(), mk()
	Shuffle(a, rand.New(rand.NewPCG(5, 5)))
	Shuffle(b, rand.New(rand.NewPCG(5, 5)))

	assert.Equal(t, a, b)
	assert.NotEqual(t, mk(), a)
	assert.ElementsMatch(t, mk(), a)
}

func TestSplit(t *testing.T) {
	ex := make([]nn.Example, 10)

	train, held := Split(ex, 0.2)
	assert.Len(t, train, 8)
	assert.Len(t, held, 2)

	train, held = Split(ex, 0)
	assert.Len(t, train, 10)
	assert.Empty(t, held)

	train, held = Split(ex, 2)
	assert.Empty(t, train)
	assert.Len(t, held, 10)
}

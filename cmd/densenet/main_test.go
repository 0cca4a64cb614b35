package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIDX writes a tiny 2x2 two-class dataset: label 0 lights the left
// column, label 1 the right column.
func writeIDX(t *testing.T, dir string) (images, labels string) {
	t.Helper()

	var lbls []byte
	var pixels []byte
	for i := range 8 {
		label := byte(i % 2)
		lo, hi := byte(20+i), byte(230-i)
		if label == 0 {
			pixels = append(pixels, hi, lo, hi, lo)
		} else {
			pixels = append(pixels, lo, hi, lo, hi)
		}
		lbls = append(lbls, label)
	}

	var img bytes.Buffer
	for _, v := range []uint32{2051, uint32(len(lbls)), 2, 2} {
		require.NoError(t, binary.Write(&img, binary.BigEndian, v))
	}
	img.Write(pixels)

	var lbl bytes.Buffer
	for _, v := range []uint32{2049, uint32(len(lbls))} {
		require.NoError(t, binary.Write(&lbl, binary.BigEndian, v))
	}
	lbl.Write(lbls)

	images = filepath.Join(dir, "images-idx3-ubyte")
	labels = filepath.Join(dir, "labels-idx1-ubyte")
	require.NoError(t, os.WriteFile(images, img.Bytes(), 0o600))
	require.NoError(t, os.WriteFile(labels, lbl.Bytes(), 0o600))
	return images, labels
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out))
	assert.Equal(t, "densenet "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	out.Reset()
	err := run(context.Background(), []string{"bogus"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bogus"`)
}

func TestRun_TrainEvalShow(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeIDX(t, dir)
	model := filepath.Join(dir, "model.dnet")

	cfg := fmt.Sprintf(`
sizes: [4, 3, 2]
epochs: 200
batch_size: 2
learning_rate: 3
seed: 1
workers: 1
train_images: %q
train_labels: %q
test_images: %q
test_labels: %q
model_out: %q
`, images, labels, images, labels, model)
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"train", "-config", cfgPath}, &out))
	assert.Contains(t, out.String(), "epochs=200 correct=8/8")
	assert.FileExists(t, model)

	out.Reset()
	require.NoError(t, run(context.Background(),
		[]string{"eval", "-model", model, "-images", images, "-labels", labels}, &out))
	assert.Contains(t, out.String(), "examples=8 correct=8 accuracy=1.0000")

	out.Reset()
	require.NoError(t, run(context.Background(),
		[]string{"show", "-images", images, "-labels", labels, "-n", "2", "-model", model}, &out))
	assert.Contains(t, out.String(), "================= LABEL 0\n|X.|\n|X.|\n")
	assert.Contains(t, out.String(), "LABEL 1")
	assert.Contains(t, out.String(), "predicted=0")
	assert.Contains(t, out.String(), "predicted=1")
}

func TestRun_TrainWithHoldout(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeIDX(t, dir)
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sizes: [4, 3, 2]\nepochs: 5\nbatch_size: 2\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{
		"train", "-config", cfgPath,
		"-train-images", images, "-train-labels", labels,
		"-test-images", images, "-test-labels", labels,
		"-validation-fraction", "0.25", "-seed", "3", "-workers", "1",
	}, &out))

	// 8 examples, 2 held out for per-epoch validation; the test set is scored once.
	assert.Regexp(t, `epochs=5 correct=\d/2 `, out.String())
	assert.Regexp(t, `test correct=\d/8 `, out.String())
}

func TestLoadExamples_Digits(t *testing.T) {
	images, labels := writeIDX(t, t.TempDir())

	digits, err := loadExamples(images, labels, 3, 10)
	require.NoError(t, err)
	require.Len(t, digits, 3)
	assert.Len(t, digits[1].Expected, 10)
	assert.Equal(t, 1.0, digits[1].Expected[1])

	pairs, err := loadExamples(images, labels, 0, 2)
	require.NoError(t, err)
	require.Len(t, pairs, 8)
	assert.Equal(t, []float64{1, 0}, pairs[0].Expected)
}

func TestRun_TrainRequiresData(t *testing.T) {
	err := run(context.Background(), []string{"train", "-epochs", "1"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train_images")
}

func TestRun_TrainCanceled(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeIDX(t, dir)
	model := filepath.Join(dir, "partial.dnet")
	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sizes: [4, 2]\nepochs: 3\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{
		"train", "-config", cfgPath, "-train-images", images, "-train-labels", labels,
		"-seed", "2", "-workers", "1", "-out", model,
	}, &out))

	// An interrupted run still saves the untouched model.
	assert.FileExists(t, model)
	assert.Empty(t, out.String())
}

func TestRun_EvalRequiresFlags(t *testing.T) {
	err := run(context.Background(), []string{"eval", "-model", "x.dnet"}, &bytes.Buffer{})
	require.Error(t, err)
}

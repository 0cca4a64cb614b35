package serialization

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
)

func newNet(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.New([]int{4, 3, 2}, nn.WithSeed(21))
	require.NoError(t, err)
	return net
}

func assertSameParameters(t *testing.T, want, got *nn.Network) {
	t.Helper()
	require.Equal(t, want.Sizes(), got.Sizes())
	for i := range want.Weights() {
		assert.True(t, matrix.Equal(want.Weights()[i], got.Weights()[i]), "weights[%d]", i)
		assert.True(t, matrix.Equal(want.Biases()[i], got.Biases()[i]), "biases[%d]", i)
	}
}

func TestSaveLoad(t *testing.T) {
	net := newNet(t)
	path := filepath.Join(t.TempDir(), "model.dnet")

	require.NoError(t, Save(path, net, map[string]string{"epochs": "3"}))

	loaded, header, err := Load(path)
	require.NoError(t, err)
	assertSameParameters(t, net, loaded)

	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, "sigmoid", header.Activation)
	assert.Equal(t, "3", header.Metadata["epochs"])
	require.Len(t, header.Tensors, 4)
	assert.Equal(t, "layers.0.weight", header.Tensors[0].Name)
	assert.Equal(t, []int{3, 4}, header.Tensors[0].Shape)
	assert.Equal(t, "layers.1.bias", header.Tensors[3].Name)

	in := []float64{0.1, 0.2, 0.3, 0.4}
	want, err := net.Predict(in)
	require.NoError(t, err)
	got, err := loaded.Predict(in)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecode_InvalidMagic(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("BORN\x01\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(MagicBytes)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(99)))

	_, _, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecode_HeaderTooLarge(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(MagicBytes)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(FormatVersion)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(MaxHeaderSize+1)))

	_, _, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, newNet(t), nil))

	data := buf.Bytes()
	// Flip a bit in the last payload byte (just before the checksum).
	data[len(data)-ChecksumSize-1] ^= 0x01

	_, _, err := Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecode_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, newNet(t), nil))

	_, _, err := Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-10]))
	assert.Error(t, err)
}

func TestValidateTensors(t *testing.T) {
	h := &Header{
		Sizes: []int{2, 1},
		Tensors: []TensorMeta{
			{Name: "layers.0.weight", Shape: []int{1, 2}, Offset: 0, Size: 16},
			{Name: "layers.0.bias", Shape: []int{1, 1}, Offset: 16, Size: 8},
		},
	}
	size, err := validateTensors(h)
	require.NoError(t, err)
	assert.Equal(t, int64(24), size)

	h.Tensors[1].Name = "layers.0.gamma"
	_, err = validateTensors(h)
	assert.ErrorIs(t, err, ErrInvalidTensor)

	h.Tensors[1].Name = "layers.0.bias"
	h.Tensors[0].Shape = []int{2, 1}
	_, err = validateTensors(h)
	assert.ErrorIs(t, err, ErrInvalidTensor)

	h.Tensors[0].Shape = []int{1, 2}
	h.Tensors[1].Offset = 8
	_, err = validateTensors(h)
	assert.ErrorIs(t, err, ErrInvalidTensor)

	_, err = validateTensors(&Header{Sizes: []int{3}})
	assert.ErrorIs(t, err, ErrInvalidTensor)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.dnet"))
	assert.Error(t, err)
}

func TestValidateChecksum(t *testing.T) {
	payload := []byte("layers.0.weight")
	sum := ComputeChecksum(payload)
	assert.NoError(t, ValidateChecksum(sum, ComputeChecksum(payload)))

	sum[0] ^= 0xff
	assert.ErrorIs(t, ValidateChecksum(sum, ComputeChecksum(payload)), ErrChecksumMismatch)
}

func TestErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidMagic, ErrUnsupportedVersion, ErrHeaderTooLarge, ErrChecksumMismatch, ErrInvalidTensor,
	}
	for i, a := range sentinels {
		require.NotNil(t, a)
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

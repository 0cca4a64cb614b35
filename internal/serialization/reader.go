package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
)

// Decode reads a .dnet stream and rebuilds the network it describes.
//
// opts are passed to nn.New (for example nn.WithParallel); the randomly
// initialized parameters are then replaced by the stored ones.
func Decode(r io.Reader, opts ...nn.Option) (*nn.Network, *Header, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, nil, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic)
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerSize uint64
	if err := binary.Read(br, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	payloadSize, err := validateTensors(&header)
	if err != nil {
		return nil, nil, err
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	var stored [ChecksumSize]byte
	if _, err := io.ReadFull(br, stored[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to read checksum: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return nil, nil, err
	}

	net, err := nn.New(header.Sizes, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sizes in header: %w", err)
	}

	layers := len(header.Sizes) - 1
	weights := make([]*matrix.Matrix, layers)
	biases := make([]*matrix.Matrix, layers)
	for i, meta := range header.Tensors {
		m := decodeTensor(meta, payload)
		if i%2 == 0 {
			weights[i/2] = m
		} else {
			biases[i/2] = m
		}
	}
	if err := net.SetParameters(weights, biases); err != nil {
		return nil, nil, err
	}

	return net, &header, nil
}

// Load reads a .dnet file from path.
func Load(path string, opts ...nn.Option) (*nn.Network, *Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model: %w", err)
	}
	return Decode(bytes.NewReader(data), opts...)
}

func decodeTensor(meta TensorMeta, payload []byte) *matrix.Matrix {
	rows, cols := meta.Shape[0], meta.Shape[1]
	values := make([][]float64, rows)
	p := payload[meta.Offset : meta.Offset+meta.Size]
	for r := range values {
		values[r] = make([]float64, cols)
		for c := range values[r] {
			values[r][c] = math.Float64frombits(binary.LittleEndian.Uint64(p))
			p = p[bytesPerValue:]
		}
	}
	return matrix.FromArray(values)
}

package serialization

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/born-ml/densenet/internal/matrix"
	"github.com/born-ml/densenet/internal/nn"
)

// Encode writes net in .dnet format to w.
//
// Parameters:
//   - w: Destination stream
//   - net: Network whose sizes, weights and biases are saved
//   - metadata: Optional string metadata stored in the header
func Encode(w io.Writer, net *nn.Network, metadata map[string]string) error {
	weights, biases := net.Weights(), net.Biases()

	// Interleave per layer: weight then bias.
	tensors := make([]*matrix.Matrix, 0, 2*len(weights))
	header := Header{
		FormatVersion: FormatVersion,
		Sizes:         net.Sizes(),
		Activation:    "sigmoid",
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	var offset int64
	appendTensor := func(name string, m *matrix.Matrix) {
		size := int64(m.Shape().NumElements() * bytesPerValue)
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			Shape:  []int{m.Rows(), m.Cols()},
			Offset: offset,
			Size:   size,
		})
		tensors = append(tensors, m)
		offset += size
	}
	for i := range weights {
		appendTensor(weightName(i), weights[i])
		appendTensor(biasName(i), biases[i])
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Payload is hashed as it is written.
	h := sha256.New()
	payload := io.MultiWriter(bw, h)
	var buf [bytesPerValue]byte
	for i, m := range tensors {
		for _, v := range m.Data() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := payload.Write(buf[:]); err != nil {
				return fmt.Errorf("failed to write tensor %s: %w", header.Tensors[i].Name, err)
			}
		}
	}

	if _, err := bw.Write(h.Sum(nil)); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	return bw.Flush()
}

// Save writes net to path in .dnet format.
func Save(path string, net *nn.Network, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return Encode(file, net, metadata)
}

// Package serialization provides the .dnet format for saving and loading
// trained networks.
//
//	Format Structure:
//	  [4 bytes: Magic "DNET"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [Tensor data: float64 LE, row-major, in header order]
//	  [32 bytes: SHA-256 of the tensor data]
//
// Tensors are named "layers.<i>.weight" and "layers.<i>.bias".
package serialization

import (
	"fmt"
	"time"
)

// Format constants.
const (
	MagicBytes    = "DNET"
	FormatVersion = 1
	ChecksumSize  = 32      // SHA-256
	MaxHeaderSize = 1 << 24 // 16 MiB of JSON is far beyond any real header
	bytesPerValue = 8
)

// Header is the JSON header of a .dnet file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .dnet format
	Sizes         []int             `json:"sizes"`          // Layer widths, input first
	Activation    string            `json:"activation"`     // Nonlinearity name ("sigmoid")
	CreatedAt     time.Time         `json:"created_at"`     // When the file was written
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, in payload order
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes one parameter matrix in the payload.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "layers.0.weight"
	Shape  []int  `json:"shape"`  // [rows, cols]
	Offset int64  `json:"offset"` // Byte offset from the start of the payload
	Size   int64  `json:"size"`   // Size in bytes
}

func weightName(layer int) string { return fmt.Sprintf("layers.%d.weight", layer) }
func biasName(layer int) string   { return fmt.Sprintf("layers.%d.bias", layer) }

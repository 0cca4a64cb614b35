package serialization

import "crypto/sha256"

// ComputeChecksum returns the SHA-256 of a .dnet tensor payload.
func ComputeChecksum(payload []byte) [ChecksumSize]byte {
	return sha256.Sum256(payload)
}

// ValidateChecksum returns ErrChecksumMismatch unless computed equals stored.
func ValidateChecksum(computed, stored [ChecksumSize]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}

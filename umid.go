package wavcheck

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const (
	// UMIDBasicLen is the length of a basic SMPTE ST 330 UMID.
	UMIDBasicLen = 32
	// UMIDExtendedLen is the length of an extended UMID with source pack.
	UMIDExtendedLen = 64
)

// smpteUMIDLabel is the SMPTE universal label opening every basic UMID.
// Byte 10 selects the material type and byte 11 the number-generation
// method (0x20: no defined method for material, instance set to zero).
var smpteUMIDLabel = [12]byte{
	0x06, 0x0A, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x05, 0x01, 0x01, 0x0D, 0x20,
}

// umidLengthByte counts the instance and material numbers that follow it.
const umidLengthByte = 0x13

// UMIDHex renders a UMID the way reports and uniqueness tracking use it.
func UMIDHex(umid []byte) string {
	return strings.ToUpper(hex.EncodeToString(umid))
}

// GenerateUMID produces a fresh basic SMPTE UMID whose material number is
// random. The result is guaranteed not to collide with any identifier in
// seen; callers batching several repairs must record each returned UMID in
// seen before requesting the next one.
func GenerateUMID(seen map[string]struct{}) []byte {
	for {
		material := uuid.New()

		umid := make([]byte, UMIDBasicLen)
		copy(umid, smpteUMIDLabel[:])
		umid[12] = umidLengthByte
		// Bytes 13..15 are the instance number, zero for first-generation
		// material.
		copy(umid[16:], material[:])

		if _, dup := seen[UMIDHex(umid)]; !dup {
			return umid
		}
	}
}

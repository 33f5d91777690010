package bytecode

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// WireVersion is the current compiled-program format version.
// Increment when making incompatible changes to the format.
const WireVersion uint16 = 1

// Magic bytes for compiled program files: "SXBC" (StaX ByteCode).
var WireMagic = []byte{'S', 'X', 'B', 'C'}

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireEnvelope is the on-disk form of a compiled program.
type wireEnvelope struct {
	Version uint16  `cbor:"1,keyasint"`
	Code    []Instr `cbor:"2,keyasint"`
}

// MarshalProgram serializes a program to its wire form: the magic bytes
// followed by a canonical CBOR envelope.
func MarshalProgram(p Program) ([]byte, error) {
	body, err := cborEncMode.Marshal(wireEnvelope{
		Version: WireVersion,
		Code:    p,
	})
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal program: %w", err)
	}
	out := make([]byte, 0, len(WireMagic)+len(body))
	out = append(out, WireMagic...)
	out = append(out, body...)
	return out, nil
}

// UnmarshalProgram deserializes a program from its wire form.
func UnmarshalProgram(data []byte) (Program, error) {
	if len(data) < len(WireMagic) {
		return nil, fmt.Errorf("bytecode: program too short: need at least %d bytes, got %d", len(WireMagic), len(data))
	}
	if !bytes.Equal(data[:len(WireMagic)], WireMagic) {
		return nil, fmt.Errorf("bytecode: invalid magic: expected %q, got %q", WireMagic, data[:len(WireMagic)])
	}

	var env wireEnvelope
	if err := cbor.Unmarshal(data[len(WireMagic):], &env); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if env.Version > WireVersion {
		return nil, fmt.Errorf("bytecode: program version %d is newer than supported version %d", env.Version, WireVersion)
	}

	for i, in := range env.Code {
		if !in.Op.Valid() {
			return nil, fmt.Errorf("bytecode: unknown opcode 0x%02X at index %d", byte(in.Op), i)
		}
	}

	return Program(env.Code), nil
}

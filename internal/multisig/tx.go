package multisig

import "encoding/binary"

// serializeMessage encodes a recent blockhash and a sequence of
// instructions into the flat message bytes a member actor signs and the
// network replays. The on-chain account/instruction layouts in layout.go
// are exact per spec §4.5; this transaction envelope is this
// implementation's own wire format for carrying them, since the spec
// treats "transaction bytes" as opaque input/output at the submission
// boundary.
func serializeMessage(blockhash [32]byte, instructions ...Instruction) []byte {
	out := append([]byte(nil), blockhash[:]...)
	out = append(out, byte(len(instructions)))
	for _, ix := range instructions {
		out = append(out, ix.ProgramID[:]...)
		out = append(out, byte(len(ix.Accounts)))
		for _, a := range ix.Accounts {
			out = append(out, a.Pubkey[:]...)
			out = append(out, boolByte(a.IsSigner), boolByte(a.IsWritable))
		}
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(ix.Data)))
		out = append(out, l[:]...)
		out = append(out, ix.Data...)
	}
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

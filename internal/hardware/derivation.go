// Package hardware implements the hardware-wallet transport (spec §4.4,
// C5): the derivation-path codec, USB-HID device access, APDU framing, and
// the GET_PUBKEY / SIGN_MESSAGE device commands.
package hardware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

const hardenedBit uint32 = 0x80000000

// DerivationPath is a sequence of 32-bit child-key indices, each optionally
// hardened (bit 31 set).
type DerivationPath []uint32

// ParseDerivationPath parses an ASCII slash-separated path. An optional
// leading "m/" is stripped; each component is a decimal integer optionally
// followed by ' or h marking it hardened. Empty paths are rejected.
func ParseDerivationPath(s string) (DerivationPath, error) {
	s = strings.TrimPrefix(s, "m/")
	s = strings.TrimPrefix(s, "M/")
	if s == "" {
		return nil, keyringerr.New(keyringerr.InvalidDerivationPath, "empty derivation path")
	}

	parts := strings.Split(s, "/")
	path := make(DerivationPath, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, keyringerr.New(keyringerr.InvalidDerivationPath, "empty path component")
		}
		hardened := false
		switch {
		case strings.HasSuffix(p, "'"):
			hardened = true
			p = strings.TrimSuffix(p, "'")
		case strings.HasSuffix(p, "h") || strings.HasSuffix(p, "H"):
			hardened = true
			p = p[:len(p)-1]
		}
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, keyringerr.Wrap(keyringerr.InvalidDerivationPath, fmt.Sprintf("invalid path component %q", p), err)
		}
		if hardened {
			n |= uint64(hardenedBit)
		}
		path = append(path, uint32(n))
	}
	return path, nil
}

// String formats the path canonically: always "m/" prefixed, hardened
// components always spelled with a trailing '.
func (d DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range d {
		b.WriteByte('/')
		if c&hardenedBit != 0 {
			fmt.Fprintf(&b, "%d'", c&^hardenedBit)
		} else {
			fmt.Fprintf(&b, "%d", c)
		}
	}
	return b.String()
}

// Encode serializes the path as len(u8) ‖ component(big-endian u32)... for
// the GET_PUBKEY / SIGN_MESSAGE APDU payloads (spec §4.4).
func (d DerivationPath) Encode() []byte {
	out := make([]byte, 1, 1+4*len(d))
	out[0] = byte(len(d))
	for _, c := range d {
		out = append(out, byte(c>>24), byte(c>>16), byte(c>>8), byte(c))
	}
	return out
}

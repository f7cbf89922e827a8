package hardware

import (
	"fmt"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

const (
	claApp = 0xE0

	insGetPubkey   = 0x05
	insSignMessage = 0x06

	hidReportSize = 65
	successSW     = 0x9000
	userCancelSW  = 0x6985

	maxChunkPayload = 255
)

// apdu is an application-level command unit: [CLA, INS, P1, P2, Lc, data...].
type apdu struct {
	cla, ins, p1, p2 byte
	data             []byte
}

func (a apdu) marshal() []byte {
	out := make([]byte, 0, 5+len(a.data))
	out = append(out, a.cla, a.ins, a.p1, a.p2, byte(len(a.data)))
	out = append(out, a.data...)
	return out
}

// frameHID wraps apdu bytes in the vendor HID report layout (spec §4.4):
// [0x00 report_id, 0x01 0x01 channel, 0x05 tag, 0x00 0x00 sequence, Lh, Ll,
// apdu...] padded to 65 bytes.
func frameHID(apduBytes []byte) ([]byte, error) {
	if len(apduBytes) > 0xFFFF {
		return nil, keyringerr.New(keyringerr.DeviceError, "apdu payload too large to frame")
	}
	report := make([]byte, hidReportSize)
	report[0] = 0x00
	report[1], report[2] = 0x01, 0x01
	report[3] = 0x05
	report[4], report[5] = 0x00, 0x00
	report[6] = byte(len(apduBytes) >> 8)
	report[7] = byte(len(apduBytes))
	copy(report[8:], apduBytes)
	return report, nil
}

// parseHIDResponse skips the 7 framing bytes, reads the big-endian data
// length L, then the payload (L-2 bytes) and a trailing 2-byte status word.
func parseHIDResponse(raw []byte) ([]byte, uint16, error) {
	const headerLen = 7
	if len(raw) < headerLen+2 {
		return nil, 0, keyringerr.New(keyringerr.DeviceError, "response too short")
	}
	l := int(raw[headerLen])<<8 | int(raw[headerLen+1])
	if l < 2 {
		return nil, 0, keyringerr.New(keyringerr.DeviceError, "response length field too small")
	}
	body := raw[headerLen+2:]
	if len(body) < l {
		return nil, 0, keyringerr.New(keyringerr.DeviceError, "response truncated")
	}
	payload := body[:l-2]
	sw := uint16(body[l-2])<<8 | uint16(body[l-1])
	return payload, sw, nil
}

// statusError maps a non-success status word to a taxonomy error.
func statusError(sw uint16) error {
	if sw == userCancelSW {
		return keyringerr.New(keyringerr.UserCancelled, "user denied confirmation on device")
	}
	return keyringerr.New(keyringerr.DeviceError, fmt.Sprintf("device returned status word 0x%04x", sw))
}

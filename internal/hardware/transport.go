package hardware

// chunk flags for multi-APDU payloads: p1 marks first-vs-continuation, p2
// marks whether more chunks follow.
const (
	p1FirstChunk      = 0x00
	p1ContinuedChunk  = 0x80
	p2MoreChunks      = 0x80
	p2LastChunk       = 0x00
)

// getPubkey requests the public key for derivation path path.
func (d *device) getPubkey(path DerivationPath) ([]byte, error) {
	return d.exchange(apdu{
		cla:  claApp,
		ins:  insGetPubkey,
		p1:   p1FirstChunk,
		p2:   p2LastChunk,
		data: path.Encode(),
	})
}

// signMessage requests a signature over message under derivation path path,
// chunking the payload across multiple APDUs when it exceeds 255 bytes
// minus the derivation-path prefix carried in the first chunk.
func (d *device) signMessage(path DerivationPath, message []byte) ([]byte, error) {
	prefix := path.Encode()
	first := maxChunkPayload - len(prefix)
	if first < 0 {
		first = 0
	}

	var firstPart, rest []byte
	if len(message) <= first {
		firstPart = message
	} else {
		firstPart = message[:first]
		rest = message[first:]
	}

	p2 := p2LastChunk
	if len(rest) > 0 {
		p2 = p2MoreChunks
	}
	resp, err := d.exchange(apdu{
		cla:  claApp,
		ins:  insSignMessage,
		p1:   p1FirstChunk,
		p2:   byte(p2),
		data: append(append([]byte(nil), prefix...), firstPart...),
	})
	if err != nil {
		return nil, err
	}

	for len(rest) > 0 {
		n := len(rest)
		if n > maxChunkPayload {
			n = maxChunkPayload
		}
		part := rest[:n]
		rest = rest[n:]

		p2 := p2LastChunk
		if len(rest) > 0 {
			p2 = p2MoreChunks
		}
		resp, err = d.exchange(apdu{
			cla:  claApp,
			ins:  insSignMessage,
			p1:   p1ContinuedChunk,
			p2:   byte(p2),
			data: part,
		})
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

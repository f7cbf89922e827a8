package hardware

import (
	"github.com/solana-keyring/keyring/internal/actor"
	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// Signer is a hardware-wallet actor bound to one derivation path on one
// opened device. It implements actor.MessageSigner and
// actor.TransactionSigner; signing always reports IsInteractive() == true
// since every signature requires a physical confirmation on the device.
type Signer struct {
	dev  *device
	path DerivationPath
	pub  actor.PublicKey
}

// Open opens the attached signing device and fetches the public key for
// path, failing fast if no device is present or the path is rejected.
func Open(path DerivationPath) (*Signer, error) {
	dev, err := openDevice()
	if err != nil {
		return nil, err
	}
	raw, err := dev.getPubkey(path)
	if err != nil {
		dev.close()
		return nil, err
	}
	if len(raw) != 32 {
		dev.close()
		return nil, keyringerr.New(keyringerr.DeviceError, "device returned malformed public key")
	}
	var pub actor.PublicKey
	copy(pub[:], raw)
	return &Signer{dev: dev, path: path, pub: pub}, nil
}

// Close releases the underlying device handle.
func (s *Signer) Close() error {
	return s.dev.close()
}

// PublicKey returns the signer's public key.
func (s *Signer) PublicKey() actor.PublicKey {
	return s.pub
}

// IsInteractive is always true: every signature requires an on-device
// confirmation.
func (s *Signer) IsInteractive() bool {
	return true
}

// SignMessage requests a signature over an off-chain message.
func (s *Signer) SignMessage(msg []byte) (actor.Signature, error) {
	return s.sign(msg)
}

// SignTransaction requests a signature over a serialized transaction
// message.
func (s *Signer) SignTransaction(message []byte) (actor.Signature, error) {
	return s.sign(message)
}

func (s *Signer) sign(payload []byte) (actor.Signature, error) {
	raw, err := s.dev.signMessage(s.path, payload)
	if err != nil {
		return actor.Signature{}, err
	}
	if len(raw) != 64 {
		return actor.Signature{}, keyringerr.New(keyringerr.DeviceError, "device returned malformed signature")
	}
	var sig actor.Signature
	copy(sig[:], raw)
	return sig, nil
}

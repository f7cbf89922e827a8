package hardware

import (
	"sync"
	"time"

	"github.com/karalabe/usb"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// vendor/product IDs for the supported signing device. A single fixed pair
// keeps enumeration unambiguous; real multi-model support would turn this
// into a table.
const (
	vendorID  = 0x2c97
	productID = 0x0001

	readTimeout = 30 * time.Second
)

// device serializes access to one HID handle. Hardware signers are opened
// once per process and shared; concurrent requests queue behind mu rather
// than racing the USB transfer.
type device struct {
	mu sync.Mutex
	hd usb.Device
}

// openDevice enumerates HID devices matching vendorID/productID and opens
// the first match. Returns DeviceNotFound if none is attached.
func openDevice() (*device, error) {
	infos, err := usb.EnumerateHid(vendorID, productID)
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.DeviceError, "enumerate hid devices", err)
	}
	if len(infos) == 0 {
		return nil, keyringerr.New(keyringerr.DeviceNotFound, "no signing device attached")
	}
	hd, err := infos[0].Open()
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.DeviceError, "open hid device", err)
	}
	return &device{hd: hd}, nil
}

func (d *device) close() error {
	return d.hd.Close()
}

// exchange sends one framed APDU and returns the parsed response payload,
// returning an error if the device reports a non-success status word.
func (d *device) exchange(a apdu) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	report, err := frameHID(a.marshal())
	if err != nil {
		return nil, err
	}
	if _, err := d.hd.Write(report); err != nil {
		return nil, keyringerr.Wrap(keyringerr.DeviceError, "write to device", err)
	}

	resp := make([]byte, hidReportSize)
	deadline := time.Now().Add(readTimeout)
	for {
		n, err := d.hd.Read(resp)
		if err != nil {
			return nil, keyringerr.Wrap(keyringerr.DeviceError, "read from device", err)
		}
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			return nil, keyringerr.New(keyringerr.DeviceError, "timed out waiting for device response")
		}
	}

	payload, sw, err := parseHIDResponse(resp)
	if err != nil {
		return nil, err
	}
	if sw != successSW {
		return nil, statusError(sw)
	}
	return payload, nil
}

package ftdi

// fakeTransport is an in-memory stand-in for a real libusb/D2XX transport,
// recording the last control request and the last non-empty bulk write for
// assertions (the zero-length packet that ends every transaction is not
// recorded) and replaying a queued sequence of bulk reads.
type fakeTransport struct {
	lastCtrlReq   uint8
	lastCtrlValue uint16
	lastCtrlIndex uint16
	lastWrite     []byte

	readQueue [][]byte
}

func (f *fakeTransport) ControlTransfer(requestType uint8, request uint8, value, index uint16, data []byte) (int, error) {
	f.lastCtrlReq = request
	f.lastCtrlValue = value
	f.lastCtrlIndex = index
	if len(data) >= 2 {
		data[0], data[1] = 0x42, 0x22 // satisfies ft4222.Open's chip-model check
	}
	if len(data) >= 8 {
		data[4] = 0 // chip mode 0
		data[5] = 0 // max_buck_size index 0 -> 64
	}
	return len(data), nil
}

func (f *fakeTransport) BulkWrite(data []byte) (int, error) {
	if len(data) > 0 {
		f.lastWrite = append([]byte{}, data...)
	}
	return len(data), nil
}

func (f *fakeTransport) BulkRead(buf []byte) (int, error) {
	if len(f.readQueue) == 0 {
		return len(buf), nil
	}
	next := f.readQueue[0]
	f.readQueue = f.readQueue[1:]
	n := copy(buf, next)
	return n, nil
}

func (f *fakeTransport) Close() error { return nil }

package main

import (
	"strings"

	"github.com/hackpascal/ufprog-core-go/bridge"
	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

// openBridge resolves dev=<name> to a concrete bridge.Bridge. The actual
// USB control/bulk traffic is an external collaborator (spec.md section 1's
// scope note; bridge/ftdi's Transport is injected, not implemented here),
// so this binary ships no libusb/D2XX backend of its own - only the
// dispatch a real backend registers into via RegisterBackend.
type backendOpener func(name string) (bridge.Bridge, error)

var backends = map[string]backendOpener{}

// RegisterBackend lets a build-tagged file (one per supported USB backend)
// add itself to the dev= resolution table.
func RegisterBackend(prefix string, open backendOpener) {
	backends[prefix] = open
}

func openBridge(dev string) (bridge.Bridge, error) {
	if dev == "" {
		return nil, ufpstatus.New(ufpstatus.DeviceMissingConfig, "flashprog: dev= is required")
	}
	for prefix, open := range backends {
		if strings.HasPrefix(dev, prefix) {
			return open(dev)
		}
	}
	return nil, ufpstatus.New(ufpstatus.Unsupported, "flashprog: no USB backend registered for device "+dev)
}

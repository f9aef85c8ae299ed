// Package nodeid gives the gate a stable identity for trigger metadata
// and audit trails, so a kill switch row always says which machine threw
// it.
package nodeid

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// ID returns a stable identifier for this machine.
func ID() (string, error) {
	return machineid.ID()
}

// MustID returns the machine id, falling back to the hostname and then a
// fixed marker. For default CLI flags where failing is worse than a
// weaker identity.
func MustID() string {
	if id, err := machineid.ID(); err == nil {
		return id
	}
	if host, err := os.Hostname(); err == nil {
		return fmt.Sprintf("host:%s", host)
	}
	return "unknown-node"
}

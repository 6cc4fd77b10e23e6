package board

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves an ID identifying the machine, falling back to the
// host name.
func MachineID() string {
	id, err := machineid.ProtectedID("opmode")
	if err == nil && len(id) >= 12 {
		return id[:12]
	}
	glog.V(2).Infof("machine id unavailable: %v", err)
	host, _ := os.Hostname()
	return host
}

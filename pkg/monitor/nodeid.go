package monitor

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "termlink"

// NodeID identifies this machine in topics. It's derived from the machine
// ID hashed with the application name, so the raw ID isn't exposed.
func NodeID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("Monitor: machine id unavailable: %v", err)
		if id, err = os.Hostname(); err != nil {
			return "unknown"
		}
		return id
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

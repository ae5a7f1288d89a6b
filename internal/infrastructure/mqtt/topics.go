package mqtt

import "fmt"

// Topic prefixes for the VoltMesh hierarchy.
const (
	// TopicPrefix is the base for all VoltMesh topics.
	TopicPrefix = "voltmesh"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "voltmesh/system"
)

// Topics provides builders for VoltMesh MQTT topics. Using these
// helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// DeviceState returns the retained state topic for one device.
//
// Example: voltmesh/device/42/state
func (Topics) DeviceState(deviceID int64) string {
	return fmt.Sprintf("%s/device/%d/state", TopicPrefix, deviceID)
}

// CycleResult returns the topic for planning cycle outcomes.
//
// Example: voltmesh/cycle/result
func (Topics) CycleResult() string {
	return fmt.Sprintf("%s/cycle/result", TopicPrefix)
}

// SystemStatus returns the system status topic.
//
// Example: voltmesh/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

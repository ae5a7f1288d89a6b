// Package mqtt publishes VoltMesh state to an MQTT broker.
//
// The orchestration loop pushes device states and cycle results here;
// external dashboards and home-automation systems subscribe. The client
// maintains the connection with automatic reconnection and a last-will
// message so subscribers can detect an unexpected shutdown.
//
// Topic hierarchy:
//
//	voltmesh/device/{id}/state     retained per-device state
//	voltmesh/cycle/result          planning cycle outcomes
//	voltmesh/system/status         online/offline status (retained, LWT)
package mqtt

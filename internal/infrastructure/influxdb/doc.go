// Package influxdb exports VoltMesh telemetry to InfluxDB v2.
//
// The orchestration loop records device states and planning cycle
// results here. Writes are batched and asynchronous: a slow or
// unavailable InfluxDB never stalls a simulation tick. The package
// implements the orchestrator's Telemetry interface.
package influxdb

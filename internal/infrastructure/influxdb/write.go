package influxdb

import (
	"context"
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// RecordDeviceState writes the numeric fields of a device state map as
// one point in the device_state measurement, tagged with the device id
// and kind. Non-numeric fields (names, nested maps) are skipped; the
// lifecycle state string is kept as a field.
func (c *Client) RecordDeviceState(_ context.Context, deviceID int64, state map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"device_id": strconv.FormatInt(deviceID, 10),
	}
	if kind, ok := state["kind"].(string); ok {
		tags["kind"] = kind
	}

	fields := make(map[string]interface{})
	for key, value := range state {
		switch v := value.(type) {
		case float64:
			fields[key] = v
		case bool:
			fields[key] = v
		}
	}
	if s, ok := state["state"].(string); ok {
		fields["state"] = s
	}
	if len(fields) == 0 {
		return
	}

	c.WritePoint("device_state", tags, fields, at)
}

// RecordCycle writes one planning cycle result: expected cost and the
// number of participating devices.
func (c *Client) RecordCycle(_ context.Context, cost units.Euro, devices int, at time.Time) {
	c.WritePoint("planning_cycle",
		nil,
		map[string]interface{}{
			"expected_cost": float64(cost),
			"devices":       devices,
		},
		at)
}

// WritePoint writes one point of an arbitrary measurement. The record
// helpers above funnel through here; it is also the escape hatch for
// measurements the helpers do not cover.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}

package controller

import (
	"context"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/interactor"
	"github.com/voltmesh/voltmesh-core/internal/optimizer"
)

// Services is the view of the device manager a controller works
// against: durable device reads plus the live interactor registry.
type Services interface {
	Devices() device.Reader
	Interactors() *interactor.Registry
}

// Controller is the common contract of the four kind-specific
// controllers.
type Controller interface {
	// DeviceID returns the id of the controlled device.
	DeviceID() int64

	// UseSchedule offers a freshly distributed schedule. Controllers may
	// reject it (keeping any prior schedule) when the device is not in a
	// controllable state.
	UseSchedule(ctx context.Context, schedule *optimizer.Schedule, svc Services)

	// AddToSnapshot contributes the device's demand to the optimizer
	// snapshot for the cycle starting at now. Devices with nothing left
	// to schedule contribute nothing.
	AddToSnapshot(ctx context.Context, snap *optimizer.Snapshot, now time.Time, svc Services) error

	// UpdateDevice looks up the device's assignment at now and pushes it
	// into the interactor.
	UpdateDevice(ctx context.Context, now time.Time, svc Services) error

	// State returns a snapshot of the device's live state for the API
	// and telemetry.
	State(ctx context.Context, svc Services) (map[string]any, error)
}

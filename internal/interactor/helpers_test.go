package interactor

import (
	"context"

	"github.com/voltmesh/voltmesh-core/internal/device"
)

// fakeReader is an in-memory device.Reader for interactor tests.
type fakeReader struct {
	batteries       map[int64]*device.Battery
	constantActions map[int64]*device.ConstantActionDevice
	variableActions map[int64]*device.VariableActionDevice
	generators      map[int64]*device.Generator
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		batteries:       make(map[int64]*device.Battery),
		constantActions: make(map[int64]*device.ConstantActionDevice),
		variableActions: make(map[int64]*device.VariableActionDevice),
		generators:      make(map[int64]*device.Generator),
	}
}

func (f *fakeReader) GetDevice(_ context.Context, id int64) (*device.Device, error) {
	if b, ok := f.batteries[id]; ok {
		return &b.Device, nil
	}
	if c, ok := f.constantActions[id]; ok {
		return &c.Device, nil
	}
	if v, ok := f.variableActions[id]; ok {
		return &v.Device, nil
	}
	if g, ok := f.generators[id]; ok {
		return &g.Device, nil
	}
	return nil, device.ErrNotFound
}

func (f *fakeReader) GetBattery(_ context.Context, id int64) (*device.Battery, error) {
	if b, ok := f.batteries[id]; ok {
		return b, nil
	}
	return nil, device.ErrNotFound
}

func (f *fakeReader) GetConstantActionDevice(_ context.Context, id int64) (*device.ConstantActionDevice, error) {
	if c, ok := f.constantActions[id]; ok {
		return c, nil
	}
	return nil, device.ErrNotFound
}

func (f *fakeReader) GetVariableActionDevice(_ context.Context, id int64) (*device.VariableActionDevice, error) {
	if v, ok := f.variableActions[id]; ok {
		return v, nil
	}
	return nil, device.ErrNotFound
}

func (f *fakeReader) GetGenerator(_ context.Context, id int64) (*device.Generator, error) {
	if g, ok := f.generators[id]; ok {
		return g, nil
	}
	return nil, device.ErrNotFound
}

func (f *fakeReader) ListDevices(_ context.Context) ([]device.Device, error) {
	var devices []device.Device
	for _, b := range f.batteries {
		devices = append(devices, b.Device)
	}
	for _, c := range f.constantActions {
		devices = append(devices, c.Device)
	}
	for _, v := range f.variableActions {
		devices = append(devices, v.Device)
	}
	for _, g := range f.generators {
		devices = append(devices, g.Device)
	}
	return devices, nil
}

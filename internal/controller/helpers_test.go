package controller

import (
	"context"
	"time"

	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/interactor"
	"github.com/voltmesh/voltmesh-core/internal/units"
)

// fakeReader is an in-memory device.Reader for controller tests.
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

// fakeServices wires a fake reader and a real interactor registry into
// the Services surface controllers expect.
type fakeServices struct {
	reader      *fakeReader
	interactors *interactor.Registry
}

func newFakeServices() *fakeServices {
	return &fakeServices{
		reader:      newFakeReader(),
		interactors: interactor.NewRegistry(),
	}
}

func (s *fakeServices) Devices() device.Reader            { return s.reader }
func (s *fakeServices) Interactors() *interactor.Registry { return s.interactors }

func testBatteryRecord(id int64, capacity, charge units.WattHour, rate units.Watt) *device.Battery {
	return &device.Battery{
		Device:           device.Device{ID: id, Name: "battery", Kind: device.KindBattery},
		Capacity:         capacity,
		CurrentCharge:    charge,
		MaxChargeRate:    rate,
		MaxDischargeRate: rate,
		Efficiency:       1,
	}
}

func testConstantActionRecord(id int64, earliest, latest time.Time, duration time.Duration, power units.Watt) *device.ConstantActionDevice {
	return &device.ConstantActionDevice{
		Device: device.Device{ID: id, Name: "dishwasher", Kind: device.KindConstantAction},
		Action: device.ConstantAction{
			EarliestStart: earliest,
			LatestEnd:     latest,
			Duration:      duration,
			Power:         power,
		},
	}
}

func testVariableActionRecord(id int64, start, end time.Time, total units.WattHour, maxPower units.Watt) *device.VariableActionDevice {
	return &device.VariableActionDevice{
		Device: device.Device{ID: id, Name: "ev-charger", Kind: device.KindVariableAction},
		Action: device.VariableAction{
			Start:       start,
			End:         end,
			TotalEnergy: total,
			MaxPower:    maxPower,
		},
	}
}

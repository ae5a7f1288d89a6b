package interactor

import (
	"github.com/voltmesh/voltmesh-core/internal/txn"
)

// Registry is the in-memory interactor registry: one staged RollbackMap
// per device kind, keyed by device id. Mutations are buffered until the
// enclosing unit of work commits; lookups see the staged view.
//
// The registry is a long-lived shared instance; the staging buffers
// inside its maps are transaction-scoped. See the txn package for the
// single-transaction constraint.
type Registry struct {
	batteries       *txn.RollbackMap[*Battery]
	constantActions *txn.RollbackMap[*ConstantAction]
	variableActions *txn.RollbackMap[*VariableAction]
	generators      *txn.RollbackMap[*Generator]
}

// NewRegistry creates an empty interactor registry.
func NewRegistry() *Registry {
	return &Registry{
		batteries:       txn.NewRollbackMap[*Battery](),
		constantActions: txn.NewRollbackMap[*ConstantAction](),
		variableActions: txn.NewRollbackMap[*VariableAction](),
		generators:      txn.NewRollbackMap[*Generator](),
	}
}

// AddBattery stages a battery interactor under its device id.
func (r *Registry) AddBattery(i *Battery) {
	r.batteries.Set(i.DeviceID(), i)
}

// AddConstantAction stages a constant-action interactor.
func (r *Registry) AddConstantAction(i *ConstantAction) {
	r.constantActions.Set(i.DeviceID(), i)
}

// AddVariableAction stages a variable-action interactor.
func (r *Registry) AddVariableAction(i *VariableAction) {
	r.variableActions.Set(i.DeviceID(), i)
}

// AddGenerator stages a generator interactor.
func (r *Registry) AddGenerator(i *Generator) {
	r.generators.Set(i.DeviceID(), i)
}

// Battery returns the battery interactor for a device id.
func (r *Registry) Battery(id int64) (*Battery, bool) {
	return r.batteries.Get(id)
}

// ConstantAction returns the constant-action interactor for a device id.
func (r *Registry) ConstantAction(id int64) (*ConstantAction, bool) {
	return r.constantActions.Get(id)
}

// VariableAction returns the variable-action interactor for a device id.
func (r *Registry) VariableAction(id int64) (*VariableAction, bool) {
	return r.variableActions.Get(id)
}

// Generator returns the generator interactor for a device id.
func (r *Registry) Generator(id int64) (*Generator, bool) {
	return r.generators.Get(id)
}

// Remove stages removal of the interactor for id from every kind map.
// The id lives in at most one of them; absence everywhere is tolerated.
func (r *Registry) Remove(id int64) {
	r.batteries.Delete(id)
	r.constantActions.Delete(id)
	r.variableActions.Delete(id)
	r.generators.Delete(id)
}

// EachBattery visits every live battery interactor.
func (r *Registry) EachBattery(fn func(*Battery)) {
	r.batteries.Each(func(_ int64, i *Battery) { fn(i) })
}

// EachConstantAction visits every live constant-action interactor.
func (r *Registry) EachConstantAction(fn func(*ConstantAction)) {
	r.constantActions.Each(func(_ int64, i *ConstantAction) { fn(i) })
}

// EachVariableAction visits every live variable-action interactor.
func (r *Registry) EachVariableAction(fn func(*VariableAction)) {
	r.variableActions.Each(func(_ int64, i *VariableAction) { fn(i) })
}

// EachGenerator visits every live generator interactor.
func (r *Registry) EachGenerator(fn func(*Generator)) {
	r.generators.Each(func(_ int64, i *Generator) { fn(i) })
}

// Commit applies all staged interactor changes, one kind map at a time.
func (r *Registry) Commit() {
	r.batteries.Commit()
	r.constantActions.Commit()
	r.variableActions.Commit()
	r.generators.Commit()
}

// Rollback discards all staged interactor changes.
func (r *Registry) Rollback() {
	r.batteries.Rollback()
	r.constantActions.Rollback()
	r.variableActions.Rollback()
	r.generators.Rollback()
}

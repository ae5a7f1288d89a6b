package controller

import (
	"github.com/voltmesh/voltmesh-core/internal/txn"
)

// Registry holds the live controllers for every installed device, with
// transactional staging so additions and removals only become visible
// when the enclosing unit of work commits.
type Registry struct {
	batteries  *txn.RollbackMap[*Battery]
	constants  *txn.RollbackMap[*ConstantAction]
	variables  *txn.RollbackMap[*VariableAction]
	generators *txn.RollbackMap[*Generator]
}

// NewRegistry creates an empty controller registry.
func NewRegistry() *Registry {
	return &Registry{
		batteries:  txn.NewRollbackMap[*Battery](),
		constants:  txn.NewRollbackMap[*ConstantAction](),
		variables:  txn.NewRollbackMap[*VariableAction](),
		generators: txn.NewRollbackMap[*Generator](),
	}
}

// AddBattery stages a battery controller keyed by its device id.
func (r *Registry) AddBattery(c *Battery) {
	r.batteries.Set(c.DeviceID(), c)
}

// AddConstantAction stages a constant-action controller.
func (r *Registry) AddConstantAction(c *ConstantAction) {
	r.constants.Set(c.DeviceID(), c)
}

// AddVariableAction stages a variable-action controller.
func (r *Registry) AddVariableAction(c *VariableAction) {
	r.variables.Set(c.DeviceID(), c)
}

// AddGenerator stages a generator controller.
func (r *Registry) AddGenerator(c *Generator) {
	r.generators.Set(c.DeviceID(), c)
}

// Battery returns the battery controller for id, if present.
func (r *Registry) Battery(id int64) (*Battery, bool) {
	return r.batteries.Get(id)
}

// ConstantAction returns the constant-action controller for id, if
// present.
func (r *Registry) ConstantAction(id int64) (*ConstantAction, bool) {
	return r.constants.Get(id)
}

// VariableAction returns the variable-action controller for id, if
// present.
func (r *Registry) VariableAction(id int64) (*VariableAction, bool) {
	return r.variables.Get(id)
}

// Generator returns the generator controller for id, if present.
func (r *Registry) Generator(id int64) (*Generator, bool) {
	return r.generators.Get(id)
}

// Remove stages removal of the controller for id from whichever kind
// map holds it. Unknown ids are a no-op.
func (r *Registry) Remove(id int64) {
	r.batteries.Delete(id)
	r.constants.Delete(id)
	r.variables.Delete(id)
	r.generators.Delete(id)
}

// All returns every live controller across all four kinds. Iteration
// order is unspecified.
func (r *Registry) All() []Controller {
	var out []Controller
	r.batteries.Each(func(_ int64, c *Battery) {
		out = append(out, c)
	})
	r.constants.Each(func(_ int64, c *ConstantAction) {
		out = append(out, c)
	})
	r.variables.Each(func(_ int64, c *VariableAction) {
		out = append(out, c)
	})
	r.generators.Each(func(_ int64, c *Generator) {
		out = append(out, c)
	})
	return out
}

// Commit applies all staged additions and removals.
func (r *Registry) Commit() {
	r.batteries.Commit()
	r.constants.Commit()
	r.variables.Commit()
	r.generators.Commit()
}

// Rollback discards all staged additions and removals.
func (r *Registry) Rollback() {
	r.batteries.Rollback()
	r.constants.Rollback()
	r.variables.Rollback()
	r.generators.Rollback()
}

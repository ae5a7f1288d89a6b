package manager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voltmesh/voltmesh-core/internal/controller"
	"github.com/voltmesh/voltmesh-core/internal/device"
	"github.com/voltmesh/voltmesh-core/internal/interactor"
)

// Session is the view of the system handed to a unit-of-work closure:
// a device store bound to the open transaction plus the two in-memory
// registries in their staging state.
type Session struct {
	Store       device.Store
	Interactors *interactor.Registry
	Controllers *controller.Registry
}

// Runner executes closures as units of work. A closure's durable writes
// go through a single database transaction; its registry mutations stay
// staged until that transaction commits.
type Runner struct {
	db          *sql.DB
	interactors *interactor.Registry
	controllers *controller.Registry
}

// NewRunner creates a unit-of-work runner over the given database and
// registries.
func NewRunner(db *sql.DB, interactors *interactor.Registry, controllers *controller.Registry) *Runner {
	return &Runner{
		db:          db,
		interactors: interactors,
		controllers: controllers,
	}
}

// Execute runs fn inside a unit of work. If fn returns an error the
// transaction is rolled back and all staged registry mutations are
// discarded; otherwise the transaction commits first and the registry
// stages are applied after. A commit failure still discards the stages,
// so the registries never run ahead of the durable state.
func (r *Runner) Execute(ctx context.Context, fn func(ctx context.Context, s *Session) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("manager: begin transaction: %w", err)
	}

	s := &Session{
		Store:       device.NewSQLiteStore(tx),
		Interactors: r.interactors,
		Controllers: r.controllers,
	}

	if err := fn(ctx, s); err != nil {
		_ = tx.Rollback()
		r.interactors.Rollback()
		r.controllers.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		r.interactors.Rollback()
		r.controllers.Rollback()
		return fmt.Errorf("manager: commit transaction: %w", err)
	}

	r.interactors.Commit()
	r.controllers.Commit()
	return nil
}

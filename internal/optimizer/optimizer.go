package optimizer

import (
	"context"

	"github.com/voltmesh/voltmesh-core/internal/units"
)

// Optimizer turns a demand snapshot into a total cost and an assigned
// schedule. Implementations must be pure with respect to the snapshot:
// no registry or device access, all inputs arrive in the Snapshot.
type Optimizer interface {
	Optimize(ctx context.Context, snap *Snapshot) (units.Euro, *Schedule, error)
}

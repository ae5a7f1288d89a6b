package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Reader is the read-only device store API consumed by interactors and
// controllers during simulation.
type Reader interface {
	// GetDevice retrieves the shared identity record for any kind.
	// Returns ErrNotFound if the device does not exist.
	GetDevice(ctx context.Context, id int64) (*Device, error)

	// GetBattery retrieves a battery by id.
	// Returns ErrNotFound if absent or not a battery.
	GetBattery(ctx context.Context, id int64) (*Battery, error)

	// GetConstantActionDevice retrieves a constant-action device by id.
	GetConstantActionDevice(ctx context.Context, id int64) (*ConstantActionDevice, error)

	// GetVariableActionDevice retrieves a variable-action device by id.
	GetVariableActionDevice(ctx context.Context, id int64) (*VariableActionDevice, error)

	// GetGenerator retrieves a generator by id.
	GetGenerator(ctx context.Context, id int64) (*Generator, error)

	// ListDevices retrieves the identity records of all devices.
	ListDevices(ctx context.Context) ([]Device, error)
}

// Store is the full device store API. Inserts assign the device id and
// make it available to the caller before the enclosing transaction
// commits, which the device manager depends on when constructing the
// matching interactor and controller.
type Store interface {
	Reader

	// InsertBattery validates and inserts a battery, assigning its id.
	InsertBattery(ctx context.Context, b *Battery) (int64, error)

	// InsertConstantActionDevice validates and inserts a constant-action
	// device, assigning its id.
	InsertConstantActionDevice(ctx context.Context, d *ConstantActionDevice) (int64, error)

	// InsertVariableActionDevice validates and inserts a variable-action
	// device, assigning its id.
	InsertVariableActionDevice(ctx context.Context, d *VariableActionDevice) (int64, error)

	// InsertGenerator validates and inserts a generator, assigning its id.
	InsertGenerator(ctx context.Context, g *Generator) (int64, error)

	// DeleteDevice removes a device of any kind. Removing an absent id
	// is a tolerated no-op.
	DeleteDevice(ctx context.Context, id int64) error

	// UpdateBatteryCharge persists the simulated charge level of a
	// battery. Returns ErrNotFound if the battery does not exist.
	UpdateBatteryCharge(ctx context.Context, id int64, charge float64) error
}

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// The store works against either, so the unit of work can bind a store
// to its open transaction while tests and read paths use the pool
// directly.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db DBTX
}

// NewSQLiteStore creates a SQLite-backed device store bound to db,
// which may be a connection pool or an open transaction.
func NewSQLiteStore(db DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// timeFormat is how timestamps are stored in SQLite TEXT columns.
const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// insertDevice inserts the shared identity row and returns the assigned id.
func (s *SQLiteStore) insertDevice(ctx context.Context, name string, kind Kind) (int64, time.Time, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (name, kind, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, string(kind), formatTime(now), formatTime(now),
	)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("inserting device: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("reading assigned device id: %w", err)
	}
	return id, now, nil
}

// InsertBattery validates and inserts a battery, assigning its id.
func (s *SQLiteStore) InsertBattery(ctx context.Context, b *Battery) (int64, error) {
	if err := ValidateBattery(b); err != nil {
		return 0, err
	}
	id, now, err := s.insertDevice(ctx, b.Name, KindBattery)
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batteries (device_id, capacity, current_charge, max_charge_rate, max_discharge_rate, efficiency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, float64(b.Capacity), float64(b.CurrentCharge),
		float64(b.MaxChargeRate), float64(b.MaxDischargeRate), b.Efficiency,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting battery %d: %w", id, err)
	}
	b.ID = id
	b.Kind = KindBattery
	b.CreatedAt = now
	b.UpdatedAt = now
	return id, nil
}

// InsertConstantActionDevice validates and inserts a constant-action
// device, assigning its id.
func (s *SQLiteStore) InsertConstantActionDevice(ctx context.Context, d *ConstantActionDevice) (int64, error) {
	if err := ValidateConstantActionDevice(d); err != nil {
		return 0, err
	}
	id, now, err := s.insertDevice(ctx, d.Name, KindConstantAction)
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO constant_actions (device_id, earliest_start, latest_end, duration_seconds, power)
		 VALUES (?, ?, ?, ?, ?)`,
		id, formatTime(d.Action.EarliestStart), formatTime(d.Action.LatestEnd),
		int64(d.Action.Duration.Seconds()), float64(d.Action.Power),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting constant action %d: %w", id, err)
	}
	d.ID = id
	d.Kind = KindConstantAction
	d.CreatedAt = now
	d.UpdatedAt = now
	return id, nil
}

// InsertVariableActionDevice validates and inserts a variable-action
// device, assigning its id.
func (s *SQLiteStore) InsertVariableActionDevice(ctx context.Context, d *VariableActionDevice) (int64, error) {
	if err := ValidateVariableActionDevice(d); err != nil {
		return 0, err
	}
	id, now, err := s.insertDevice(ctx, d.Name, KindVariableAction)
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO variable_actions (device_id, start_at, end_at, total_energy, max_power)
		 VALUES (?, ?, ?, ?, ?)`,
		id, formatTime(d.Action.Start), formatTime(d.Action.End),
		float64(d.Action.TotalEnergy), float64(d.Action.MaxPower),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting variable action %d: %w", id, err)
	}
	d.ID = id
	d.Kind = KindVariableAction
	d.CreatedAt = now
	d.UpdatedAt = now
	return id, nil
}

// InsertGenerator validates and inserts a generator, assigning its id.
func (s *SQLiteStore) InsertGenerator(ctx context.Context, g *Generator) (int64, error) {
	if err := ValidateGenerator(g); err != nil {
		return 0, err
	}
	id, now, err := s.insertDevice(ctx, g.Name, KindGenerator)
	if err != nil {
		return 0, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generators (device_id, max_power, latitude, longitude) VALUES (?, ?, ?, ?)`,
		id, float64(g.MaxPower), g.Latitude, g.Longitude,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting generator %d: %w", id, err)
	}
	g.ID = id
	g.Kind = KindGenerator
	g.CreatedAt = now
	g.UpdatedAt = now
	return id, nil
}

// GetDevice retrieves the shared identity record for any kind.
func (s *SQLiteStore) GetDevice(ctx context.Context, id int64) (*Device, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind, created_at, updated_at FROM devices WHERE id = ?`, id)
	return scanDevice(row)
}

// GetBattery retrieves a battery by id.
func (s *SQLiteStore) GetBattery(ctx context.Context, id int64) (*Battery, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.kind, d.created_at, d.updated_at,
			b.capacity, b.current_charge, b.max_charge_rate, b.max_discharge_rate, b.efficiency
		FROM devices d JOIN batteries b ON b.device_id = d.id
		WHERE d.id = ?`, id)
	b, err := scanBattery(row)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetConstantActionDevice retrieves a constant-action device by id.
func (s *SQLiteStore) GetConstantActionDevice(ctx context.Context, id int64) (*ConstantActionDevice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.kind, d.created_at, d.updated_at,
			a.earliest_start, a.latest_end, a.duration_seconds, a.power
		FROM devices d JOIN constant_actions a ON a.device_id = d.id
		WHERE d.id = ?`, id)
	return scanConstantActionDevice(row)
}

// GetVariableActionDevice retrieves a variable-action device by id.
func (s *SQLiteStore) GetVariableActionDevice(ctx context.Context, id int64) (*VariableActionDevice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.kind, d.created_at, d.updated_at,
			a.start_at, a.end_at, a.total_energy, a.max_power
		FROM devices d JOIN variable_actions a ON a.device_id = d.id
		WHERE d.id = ?`, id)
	return scanVariableActionDevice(row)
}

// GetGenerator retrieves a generator by id.
func (s *SQLiteStore) GetGenerator(ctx context.Context, id int64) (*Generator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.kind, d.created_at, d.updated_at,
			g.max_power, g.latitude, g.longitude
		FROM devices d JOIN generators g ON g.device_id = d.id
		WHERE d.id = ?`, id)
	return scanGenerator(row)
}

// ListDevices retrieves the identity records of all devices.
func (s *SQLiteStore) ListDevices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, created_at, updated_at FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var (
			d                  Device
			kind, created, upd string
		)
		if err := rows.Scan(&d.ID, &d.Name, &kind, &created, &upd); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		d.Kind = Kind(kind)
		if d.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if d.UpdatedAt, err = parseTime(upd); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a device of any kind. The kind-specific row is
// removed by the ON DELETE CASCADE foreign key. Removing an absent id is
// a tolerated no-op.
func (s *SQLiteStore) DeleteDevice(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting device %d: %w", id, err)
	}
	return nil
}

// UpdateBatteryCharge persists the simulated charge level of a battery.
func (s *SQLiteStore) UpdateBatteryCharge(ctx context.Context, id int64, charge float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batteries SET current_charge = ? WHERE device_id = ?`, charge, id)
	if err != nil {
		return fmt.Errorf("updating battery %d charge: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking battery %d charge update: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE devices SET updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("touching device %d: %w", id, err)
	}
	return nil
}

// rowScanner abstracts *sql.Row for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner, extra ...any) (*Device, error) {
	var (
		d                  Device
		kind, created, upd string
	)
	dest := append([]any{&d.ID, &d.Name, &kind, &created, &upd}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device row: %w", err)
	}
	d.Kind = Kind(kind)
	var err error
	if d.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(upd); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDevice(row rowScanner) (*Device, error) {
	return scanIdentity(row)
}

func scanBattery(row rowScanner) (*Battery, error) {
	var b Battery
	d, err := scanIdentity(row,
		&b.Capacity, &b.CurrentCharge, &b.MaxChargeRate, &b.MaxDischargeRate, &b.Efficiency)
	if err != nil {
		return nil, err
	}
	b.Device = *d
	return &b, nil
}

func scanConstantActionDevice(row rowScanner) (*ConstantActionDevice, error) {
	var (
		c               ConstantActionDevice
		start, end      string
		durationSeconds int64
	)
	d, err := scanIdentity(row, &start, &end, &durationSeconds, &c.Action.Power)
	if err != nil {
		return nil, err
	}
	c.Device = *d
	if c.Action.EarliestStart, err = parseTime(start); err != nil {
		return nil, err
	}
	if c.Action.LatestEnd, err = parseTime(end); err != nil {
		return nil, err
	}
	c.Action.Duration = time.Duration(durationSeconds) * time.Second
	return &c, nil
}

func scanVariableActionDevice(row rowScanner) (*VariableActionDevice, error) {
	var (
		v          VariableActionDevice
		start, end string
	)
	d, err := scanIdentity(row, &start, &end, &v.Action.TotalEnergy, &v.Action.MaxPower)
	if err != nil {
		return nil, err
	}
	v.Device = *d
	if v.Action.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if v.Action.End, err = parseTime(end); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanGenerator(row rowScanner) (*Generator, error) {
	var g Generator
	d, err := scanIdentity(row, &g.MaxPower, &g.Latitude, &g.Longitude)
	if err != nil {
		return nil, err
	}
	g.Device = *d
	return &g, nil
}

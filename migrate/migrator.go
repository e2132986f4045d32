package migrate

import (
	"context"
	"fmt"
	"log/slog"
)

// Migrator drives a Target through the migrations of a Source: it compares
// the source against the target's reported state, and applies or reverts
// migrations in ID order. The target's bookkeeping primary key is the safety
// net if the same migration is ever submitted twice.
type Migrator struct {
	target *Target
	source *Source
	logger *slog.Logger
}

// Status describes the migration state of a target relative to a source.
type Status struct {
	Applied []ID        // recorded in the bookkeeping table, ascending
	Pending []Migration // present in the source but not yet applied, ascending
}

// NewMigrator creates a migrator over the given target and source.
func NewMigrator(target *Target, source *Source, logger *slog.Logger) *Migrator {
	return &Migrator{target: target, source: source, logger: logger}
}

// Up ensures the bookkeeping table exists and applies all source migrations
// with an ID greater than the highest applied one, in ascending order. It
// returns the IDs it applied, including any applied before an error occurred.
func (m *Migrator) Up(ctx context.Context) ([]ID, error) {
	if err := m.target.EnsureTable(ctx); err != nil {
		return nil, err
	}

	highest, ok, err := m.target.HighestApplied(ctx)
	if err != nil {
		return nil, err
	}

	var applied []ID
	for _, mig := range m.source.Migrations() {
		if ok && !highest.Less(mig.ID) {
			continue
		}

		m.logger.Debug("applying migration", "id", mig.ID, "name", mig.Name)
		if err := m.target.Apply(ctx, mig.ID, mig.UpSQL); err != nil {
			return applied, err
		}
		applied = append(applied, mig.ID)
		m.logger.Info("applied migration", "id", mig.ID, "name", mig.Name)
	}

	return applied, nil
}

// Down reverts up to steps of the most recently applied migrations, in
// descending ID order. Each reverted migration must have a down script in
// the source. It returns the IDs it reverted, including any reverted before
// an error occurred.
func (m *Migrator) Down(ctx context.Context, steps int) ([]ID, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}

	if err := m.target.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.target.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if steps > len(applied) {
		steps = len(applied)
	}

	var reverted []ID
	for i := len(applied) - 1; i >= len(applied)-steps; i-- {
		id := applied[i]
		mig, ok := m.source.Get(id)
		if !ok {
			return reverted, fmt.Errorf("applied migration %s not found in source", id)
		}
		if mig.DownSQL == "" {
			return reverted, fmt.Errorf("migration %s has no down script", id)
		}

		m.logger.Debug("reverting migration", "id", id, "name", mig.Name)
		if err := m.target.Revert(ctx, id, mig.DownSQL); err != nil {
			return reverted, err
		}
		reverted = append(reverted, id)
		m.logger.Info("reverted migration", "id", id, "name", mig.Name)
	}

	return reverted, nil
}

// Status reports the applied and pending migrations without changing any
// state other than ensuring the bookkeeping table exists.
func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	if err := m.target.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.target.Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[ID]struct{}, len(applied))
	for _, id := range applied {
		appliedSet[id] = struct{}{}
	}

	var pending []Migration
	for _, mig := range m.source.Migrations() {
		if _, ok := appliedSet[mig.ID]; !ok {
			pending = append(pending, mig)
		}
	}

	return &Status{Applied: applied, Pending: pending}, nil
}

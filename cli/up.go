package cli

import (
	"fmt"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
)

// The Up command applies all pending migrations, in ascending ID order.
type Up struct{}

// Run the up command.
func (c *Up) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}
	defer r.close()

	applied, err := r.migrator.Up(appCtx.Ctx)
	if err != nil {
		return aerrors.WithCause(err, nil, "applied", len(applied))
	}

	if len(applied) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No pending migrations.")
		return nil
	}

	for _, id := range applied {
		fmt.Fprintf(appCtx.Stdout, "Applied migration %s\n", id)
	}

	return nil
}

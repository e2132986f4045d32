package cli

import (
	"fmt"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
)

// The Down command reverts the most recently applied migrations.
type Down struct {
	Steps int `kong:"default='1',help='Number of migrations to revert.'"`
}

// Run the down command.
func (c *Down) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}
	defer r.close()

	reverted, err := r.migrator.Down(appCtx.Ctx, c.Steps)
	if err != nil {
		return aerrors.WithCause(err, nil, "reverted", len(reverted))
	}

	if len(reverted) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No applied migrations.")
		return nil
	}

	for _, id := range reverted {
		fmt.Fprintf(appCtx.Stdout, "Reverted migration %s\n", id)
	}

	return nil
}

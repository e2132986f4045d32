package cli

import (
	"fmt"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
)

// The Status command lists applied and pending migrations.
type Status struct{}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	r, err := newRunner(appCtx)
	if err != nil {
		return err
	}
	defer r.close()

	status, err := r.migrator.Status(appCtx.Ctx)
	if err != nil {
		return err
	}

	data := make([][]string, 0, len(status.Applied)+len(status.Pending))
	for _, id := range status.Applied {
		name := "-"
		if mig, ok := r.source.Get(id); ok {
			name = mig.Name
		}
		data = append(data, []string{id.String(), name, "applied"})
	}
	for _, mig := range status.Pending {
		data = append(data, []string{mig.ID.String(), mig.Name, "pending"})
	}

	if len(data) == 0 {
		fmt.Fprintln(appCtx.Stdout, "No migrations.")
		return nil
	}

	header := []string{"ID", "Name", "Status"}
	if err := renderTable(header, data, appCtx.Stdout); err != nil {
		return aerrors.NewWithCause("failed rendering the status table", err)
	}

	return nil
}

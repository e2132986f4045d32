package migrate

// Migration is an identified pair of forward and rollback SQL scripts. The
// SQL text is opaque to this package; it is executed as-is. Migrations are
// created by a Source and never mutated afterwards.
type Migration struct {
	ID      ID
	Name    string
	UpSQL   string
	DownSQL string
}

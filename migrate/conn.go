package migrate

import "database/sql"

// Conn selects the database connection a Target operates on, and who owns its
// lifecycle. It has exactly two variants: SharedConn and OwnedConn. The
// target dispatches on the variant; the variant itself performs no work.
type Conn interface {
	// conn seals the interface to the two variants defined in this package.
	conn()
}

// SharedConn wraps a connection the caller already owns and manages. The
// target treats it as always connected and never closes it, not even on
// operation errors or Shutdown.
type SharedConn struct {
	DB *sql.DB
}

func (SharedConn) conn() {}

// OwnedConn holds the connection string used to create a connection on first
// use. The target exclusively owns the connection it opens, and is
// responsible for closing it when an operation fails and on Shutdown.
type OwnedConn struct {
	DSN string
}

func (OwnedConn) conn() {}

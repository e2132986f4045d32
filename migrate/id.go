package migrate

// IDLength is the fixed width of a migration ID.
const IDLength = 14

// ID is a fixed-width, zero-padded migration identifier. IDs are expected to
// encode a sortable timestamp or sequence number, so that their lexicographic
// ordering matches the order migrations are meant to be applied in.
type ID string

// ParseID validates raw against the ID format and returns it as an ID. It
// returns an *InvalidIDError if raw is not exactly IDLength ASCII digits.
func ParseID(raw string) (ID, error) {
	if len(raw) != IDLength {
		return "", &InvalidIDError{Raw: raw, Reason: "wrong length"}
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return "", &InvalidIDError{Raw: raw, Reason: "contains non-digit characters"}
		}
	}

	return ID(raw), nil
}

// String returns the fixed-width raw representation of the ID.
func (id ID) String() string {
	return string(id)
}

// Less reports whether id orders before other. Since all IDs have the same
// width, byte ordering on the raw strings is total and matches the intended
// chronological ordering.
func (id ID) Less(other ID) bool {
	return id < other
}

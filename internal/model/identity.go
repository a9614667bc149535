package model

// Identity is the (collection alias, item pointer) pair that uniquely
// addresses one record in a CONTENTdm installation.
//
// An Identity with an empty Pointer is invalid: resolution for that
// record must be short-circuited and the record skipped.
type Identity struct {
	// Alias is the collection alias, e.g. "berea".
	Alias string

	// Pointer is the numeric item id as a string, e.g. "512".
	Pointer string
}

// Valid reports whether the identity can address a record.
func (id Identity) Valid() bool {
	return id.Pointer != ""
}

// String returns "alias/pointer" for log output.
func (id Identity) String() string {
	return id.Alias + "/" + id.Pointer
}

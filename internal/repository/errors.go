// Package repository implements the durable ledger over MySQL.  Each entity
// gets its own repo bound to a *sql.DB; the Ledger type in ledger.go bundles
// them behind the auction engine's store contract.  Lookups return (nil, nil)
// for absent rows; only genuine conflicts surface as sentinel errors.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of conflicting
// state, such as creating a team with a duplicate key inside a tournament.
var ErrConflict = errors.New("conflict")

package repository

import "errors"

// ErrNotFound means the requested row does not exist. Lookups return it in
// place of pgx.ErrNoRows so services can tell absence apart from a
// persistence failure.
var ErrNotFound = errors.New("not found")

// ErrBalanceGuardFailed means the conditional decrement found the persisted
// balance below the requested amount at write time (or no account row).
var ErrBalanceGuardFailed = errors.New("balance guard failed")

// ErrDuplicateUnlock means an UnlockRecord already exists for the
// (candidate, company) pair — the unique index rejected a second insert.
var ErrDuplicateUnlock = errors.New("unlock record already exists")

// ErrStatusGuardFailed means the application's status changed between the
// read and the conditional write of a transition.
var ErrStatusGuardFailed = errors.New("application status guard failed")

// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, out-of-range number).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// StorageError indicates a storage backend or network error.
	StorageError = 3
)

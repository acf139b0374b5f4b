// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, duplicate
	// email, unknown task reference).
	UserError = 1

	// AuthError indicates an auth/config error (not logged in, invalid
	// credentials, Google account not linked, unusable configuration).
	AuthError = 2

	// BackendError indicates a storage/backend/network error.
	BackendError = 3
)

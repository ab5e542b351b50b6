// Package fleet defines the configuration model shared by the clone, update,
// and status subcommands, including URL and path resolution for the
// repositories the fleet manages.
package fleet

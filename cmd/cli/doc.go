// Package cli assembles the gitfleet command hierarchy, wiring configuration
// loading, structured logging, and the fleet subcommands into a single Cobra
// application.
package cli

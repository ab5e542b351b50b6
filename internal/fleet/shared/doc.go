// Package shared declares the narrow collaborator interfaces and reporting
// sink used by every fleet subcommand service.
package shared

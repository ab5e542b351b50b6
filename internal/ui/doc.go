// Package ui renders command lifecycle events as human-readable log lines for
// console output, translating git invocations into fleet-oriented messages.
package ui

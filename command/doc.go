// Package command exposes go-command compatible command handlers for the
// write side of the schema registry (create, set, delete). Commands are wired
// by the service layer and can be invoked by any transport.
package command

// Package gatehound provides the command-line interface for the gatehound
// tool. It configures subcommands (scan, runs, ignore, ci, etc.), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/gatehound/gatehound/cmd/gatehound"
//	func main() { gatehound.Execute() }
package gatehound

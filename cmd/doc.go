// Package cmd implements the command-line interface for the zMap expiring
// multimap. It provides a hierarchical command structure for interacting
// with a Redis server as a client.
//
// The package is organized into several subpackages:
//
//   - mm: Commands for multimap operations (add, addat, get, del, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See zmap -help for a list of all commands.
package cmd

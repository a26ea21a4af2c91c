// Package main provides the entry point for the tablesync CLI tool.
package main

import (
	"github.com/agentstation/tablesync/cmd/tablesync/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}

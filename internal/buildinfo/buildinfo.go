// Package buildinfo carries version data stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/taskflow/internal/buildinfo.Version=v1.2.0 ..."
package buildinfo

import "fmt"

var (
	Version = "N/A"
	Commit  = "N/A"
	Date    = "N/A"
)

// String renders the build data on three lines.
func String() string {
	return fmt.Sprintf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", Version, Date, Commit)
}

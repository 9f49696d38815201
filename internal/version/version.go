// ABOUTME: Build and product version constants
// ABOUTME: Reported in logs and the TUI footer
package version

const (
	Version      = "0.2.0"
	Product      = "LiveTutor"
	Manufacturer = "Lumalearn"
)

package models

import "time"

// ToolState is the freshness classification of a monitored tool.
type ToolState string

const (
	// ToolOutOfDate means the tool's timestamp did not advance since the previous check.
	ToolOutOfDate ToolState = "out_of_date"
	// ToolUpToDate means the tool's timestamp advanced, or it was just observed for the first time.
	ToolUpToDate ToolState = "up_to_date"
)

// ToolStatus is a point-in-time view of one tool inside a watchdog group.
type ToolStatus struct {
	Name       string     `json:"name"`
	Source     string     `json:"source"`
	State      ToolState  `json:"state"`
	Available  bool       `json:"available"`
	Observed   bool       `json:"observed"`
	LastChange *time.Time `json:"last_change,omitempty"` // nil until the first state change
}

package models

import "time"

// GroupStatus is a point-in-time view of a watchdog group.
type GroupStatus struct {
	ID              GroupHandle   `json:"id"`
	Name            string        `json:"name"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	ElapsedActive   time.Duration `json:"elapsed_active"`
	Tools           []ToolStatus  `json:"tools"`
}

// UpToDate reports whether every tool in the group is up to date.
func (g GroupStatus) UpToDate() bool {
	for _, t := range g.Tools {
		if t.State != ToolUpToDate {
			return false
		}
	}
	return true
}

// StatusUpdate is the message published when a group's tool states change.
type StatusUpdate struct {
	GroupID              GroupHandle  `json:"group_id"`
	GroupName            string       `json:"group_name"`
	Timestamp            time.Time    `json:"timestamp"`
	ElapsedActiveSeconds float64      `json:"elapsed_active_seconds"`
	UpToDate             bool         `json:"up_to_date"`
	Tools                []ToolStatus `json:"tools"`
}

// NewStatusUpdate builds the published message from a group snapshot.
func NewStatusUpdate(g GroupStatus, at time.Time) StatusUpdate {
	return StatusUpdate{
		GroupID:              g.ID,
		GroupName:            g.Name,
		Timestamp:            at,
		ElapsedActiveSeconds: g.ElapsedActive.Seconds(),
		UpToDate:             g.UpToDate(),
		Tools:                g.Tools,
	}
}

// GroupHandle identifies a watchdog group.
type GroupHandle string

// Package watchdog provides the Engine that classifies monitored tools
// as up to date or out of date.
//
// On every tick the engine reads each tool's source timestamp and compares it
// with the value read on the previous tick. A changed timestamp means the tool
// produced data since the last check; an unchanged one means it went stale.
// A tool seen for the first time is always up to date.
//
// The engine also accumulates, per group, the wall-clock time it has been active,
// measured as the real gap between ticks rather than the nominal interval.
//
// The engine does no work on its own. A scheduler calls [*Engine.UpdateWatchdogNodes]
// periodically, and a registry keeps its group table current through the
// [scene.Observer] methods.
package watchdog

// Package permission persists the exact-alarm permission.
//
// The FileRepository keeps the state as YAML on disk; it plays the part of the
// per-app "Alarms & reminders" toggle that the host alarm service consults.
package permission

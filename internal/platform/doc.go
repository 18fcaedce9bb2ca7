// Package platform describes the host alarm service the bridge talks to.
//
// AlarmManager mirrors the exact-alarm entry points of a mobile OS alarm
// service. Capabilities replaces OS version checks: callers ask whether the
// host gates exact alarms behind a permission and whether it offers an
// idle-aware exact entry point.
package platform

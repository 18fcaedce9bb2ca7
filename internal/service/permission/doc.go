// Package permission implements the alarm-permission commands that grant,
// revoke and report the exact-alarm permission stored next to the bridge server.
package permission

// Package alarm contains the domain types shared by the bridge, the alarm
// manager and the transports.
//
// ScheduleRequest is the decoded form of a scheduleExactAlarm call, Payload is
// what the receiver gets when the alarm fires, and PermissionState records the
// exact-alarm permission together with who changed it last.
package alarm

// Package local implements platform.AlarmManager inside the process.
//
// Every alarm slot, keyed by receiver target and request code, holds at most
// one timer. Registering a slot again replaces the pending alarm; fired alarms
// leave the registry before the receiver runs.
package local

// Package bridge exposes the exact-alarm facility on a named method channel.
//
// The Bridge decodes loosely-typed arguments, asks the host alarm service
// about its capabilities and forwards each call. It keeps no state and does
// not catch failures of the alarm service; transports decide how to report them.
package bridge

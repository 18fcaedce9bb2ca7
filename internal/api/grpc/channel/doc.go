// Package channel serves the alarm method channel over gRPC.
//
// The channel name is used as the gRPC service name and each channel method
// as a gRPC method, so a call looks like
// /com.example.simplenotification/alarm/scheduleExactAlarm. Arguments travel
// as google.protobuf.Struct and results as google.protobuf.Value. No service
// descriptor is generated: calls reach the dispatcher through an unknown
// service handler, which is also what lets any method name be answered with
// Unimplemented instead of a transport error.
package channel

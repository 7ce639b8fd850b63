// Package msgs defines the protobuf messages carrying decoded records off
// the device and the typed envelope wrapping them.
//
// The wire schema is kept in hub.proto. The Go types are maintained by
// hand and rely on the struct tags for (un)marshaling.
package msgs

// Package records decodes the hub's FIFO record layouts.
//
// All multi-byte fields are big-endian. Every FIFO sample starts with a
// Raw record; depending on the output mode a Scd, Algo or AlgoExtended
// record follows immediately.
package records

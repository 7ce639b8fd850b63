// Package comm provides the command transport to the sensor hub.
package comm

// The hub is a stateless command/response device on a two-wire bus.
// Every request is a frame [family, index, data...] and every response
// starts with a status byte, 0 meaning success.
//
// The MFIO line doubles as the wake line in application mode: it is
// pulled low for the whole transaction. In bootloader mode the line is
// held low by the entry sequence and is not toggled per transaction.

// Package device drives the biometric sensor hub in application mode.
//
// A Hub is created with New, brought up with Init and then moved between
// acquisition modes. Decoded records are produced by a background poller
// started with Run and consumed with the non-blocking Fetch methods.
package device

// Package status fetches the live status of game servers from the status
// provider service.
//
// Addresses are validated before any request leaves the process. Failures are
// reported as one of two kinds: an *InvalidAddressError, which the user can
// fix by correcting the address, and a *TransientError, which covers every
// network or provider problem and is expected to clear up on its own.
package status

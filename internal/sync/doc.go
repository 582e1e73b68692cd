// Package sync brings the display surfaces of monitored servers in line with
// their live status.
//
// # Updater
//
// The Updater is the unit of work of a synchronization pass. For one guild it:
//
//   - reads the guild's monitored servers fresh from the store
//   - takes a single snapshot of the guild's channels
//   - fetches every server's status concurrently at low priority
//   - reconciles the status into target labels and a visibility change
//   - renames only the surfaces whose current name differs from the target
//
// A server whose status fetch fails transiently is left untouched for the
// pass. An invalid address is shown on the status surface instead. Mutation
// failures never stop the other servers of the guild: they are classified,
// counted and, unless they are rate limits or missing permissions, logged.
//
// # Coordinator Package
//
// The sync/coordinator subpackage schedules passes over every guild with a
// bounded number of guilds in flight. See its documentation for the
// interval calculation and the overlap policy.
package sync

// Package cli provides the interactive community calendar client.
//
// It wires configuration, the local SQLite store, the remote row store and a
// notifier into the auth, reminder and event services, and drives them from
// a line-oriented REPL.
//
// Key features:
//   - Guest sign-in, administrator registration behind the master password
//     and administrator login
//   - Event listing with an offline cache, event editing for administrators
//   - Reminders that work offline and sync to the server when it is reachable
//   - Audit log and guest counts
//
// Two watchers run alongside the REPL: StartOnlineStatusWatcher pings the
// server and StartReminderWatcher fires due reminders. App.Run blocks until
// the user exits.
package cli

// Package services contains the calendar client's application services.
//
//   - AuthService: device identity, master password bootstrap, administrator
//     registration and verification, local sessions, presence and the audit
//     trail.
//   - ReminderService: per-event reminders kept in the local store and
//     mirrored best-effort to the remote reminders table, plus notification
//     delivery.
//   - EventService: the event catalogue with a local offline cache, RSVP QR
//     codes and poster uploads.
//
// Remote failures on read paths degrade to empty results and are logged.
// Local-first mutations report how far they got with models.SyncResult.
package services

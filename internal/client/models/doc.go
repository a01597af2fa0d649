// Package models defines the calendar client's domain types: identities,
// audit entries, reminders and events, together with their row and local
// store encodings.
package models

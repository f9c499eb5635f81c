// Package device provides the inventory store: devices categorised by
// type, location and status.
//
// Types, locations and statuses live in lookup tables and are addressed
// by name at the API boundary. Writes resolve names to row IDs and reject
// unknown names as validation failures; the vocabulary is seeded, not
// grown by device writes.
package device

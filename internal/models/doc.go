// Package models defines the records persisted by the saved-ledger store.
//
// The ledger itself lives in package ledger and travels through storage in
// its document form (package document). A record adds what the store needs
// around it: a stable ID, the title users pick it by, and timestamps.
//
// # Design Principles
//
// 1. **Title is the handle**: front ends open a ledger by its title, the way
//    a user picks a file by name. Titles are unique.
// 2. **Document, not rows**: users and purchases are not normalized into
//    tables. The sparse document is small and is always read and written
//    whole, under the same single-writer discipline as the in-memory ledger.
// 3. **IDs for references**: the UUID never changes, even if a front end
//    later supports renaming.
package models

// Package session owns the client's authentication lifecycle and the data
// the signed-in user is looking at.
//
// A Store is constructed explicitly and injected into whatever renders it;
// there is no package-level instance. Its state moves through
//
//	Unstarted -> Initializing -> {Authenticated, Unauthenticated}
//
// with Login/Register taking Unauthenticated to Authenticated and Logout
// going back. Only {isAuthenticated, user} survives a restart: it is
// projected by Persist, written after every mutation, and read back through
// Restore when the next Store is built.
//
// Writes made after a successful backend call are merged locally without a
// confirming re-fetch, so read-after-write is not guaranteed. Concurrent
// FetchTransactions calls are not ordered: whichever response arrives last
// replaces the collection.
package session

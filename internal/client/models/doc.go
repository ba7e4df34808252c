// Package models defines the PayChain client's data types as they travel on
// the wire and are held in the session store.
//
// Types that list/table views operate on (Transaction, Notification,
// ScheduledPayment, NFTReceipt, UserSecurity, PayChainError) expose a
// Field(name) accessor keyed by their JSON field names so the generic
// search/filter/sort toolkit can read them without reflection.
package models

// Package cli provides the interactive PayChain command-line client.
//
// It wires configuration, local storage, the API client, the session store
// and the notification poller behind a read-eval-print loop. On start the
// stored session is restored, the notification poller and a background
// connectivity watcher are launched, and user commands run until exit.
//
// Key features:
//   - Register / Login / Logout, profile and balance
//   - Transaction list with search, filters, sorting and pagination
//   - Send payments, payment links and the receive QR payload
//   - Notifications, scheduled payments, NFT receipts and analytics
//   - Admin review (system stats, user security, error log)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

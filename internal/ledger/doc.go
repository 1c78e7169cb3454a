// Package ledger holds the pure tuition rules: fee totals and balances,
// the 8-session attendance cycle, billing-month tags and duplicate checks.
// Nothing here performs I/O; the service layer persists the results.
package ledger

// Package models defines the core domain models for Tabshare.
//
// # Models
//
//   - Receipt: a shared bill owned by one host, joined by guests via a join code
//   - ReceiptItem: a line item that guests claim and the host marks paid
//   - User: a registered account or a placeholder guest, with payment handles
//   - Checkout: a ledger entry for one host checkout
//
// # Design Principles
//
// 1. **Stable identifiers**: items carry a UUID assigned at creation, never a position
// 2. **Exact money**: amounts are decimals rounded to cents at defined points
// 3. **IDs over pointers**: relationships are user/receipt ID strings
// 4. **Store-owned**: the repository is the source of truth; clients hold copies
package models

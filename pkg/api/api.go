// Package api defines the request and response messages of the tabshare
// RPC services. Messages travel as JSON; amounts are decimal strings with
// two fractional digits.
package api

// PaymentHandles are the accounts a user receives payments on.
type PaymentHandles struct {
	Venmo       string `json:"venmo,omitempty"`
	CashApp     string `json:"cash_app,omitempty"`
	PayPalEmail string `json:"paypal_email,omitempty" validate:"omitempty,email"`
}

// User is a participant's public profile.
type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email,omitempty"`
	DisplayName string         `json:"display_name"`
	Phone       string         `json:"phone,omitempty"`
	HasAccount  bool           `json:"has_account"`
	Payments    PaymentHandles `json:"payments"`
	CreatedAt   int64          `json:"created_at"`
}

// Item is a receipt line item.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        string   `json:"price"`
	Paid         bool     `json:"paid"`
	PurchaserIDs []string `json:"purchaser_ids"`
}

// Receipt is a shared bill.
type Receipt struct {
	ID        string   `json:"id"`
	JoinCode  string   `json:"join_code"`
	Name      string   `json:"name,omitempty"`
	Vendor    string   `json:"vendor,omitempty"`
	HostID    string   `json:"host_id"`
	GuestIDs  []string `json:"guest_ids"`
	Items     []Item   `json:"items"`
	Subtotal  string   `json:"subtotal"`
	Tax       string   `json:"tax"`
	Total     string   `json:"total"`
	Version   int64    `json:"version"`
	CreatedAt int64    `json:"created_at"`
}

// PersonItem is one item's contribution to a person's share.
type PersonItem struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Paid   bool   `json:"paid"`
}

// PersonShare is what one purchaser owes.
type PersonShare struct {
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Subtotal    string       `json:"subtotal"`
	Tax         string       `json:"tax"`
	Total       string       `json:"total"`
	Items       []PersonItem `json:"items"`
}

// ReceiptSummary is a receipt as listed on a user's receipts screen.
type ReceiptSummary struct {
	Receipt     Receipt  `json:"receipt"`
	HostName    string   `json:"host_name"`
	MemberNames []string `json:"member_names"`
}

// Checkout records one host checkout.
type Checkout struct {
	ID        string   `json:"id"`
	ReceiptID string   `json:"receipt_id"`
	UserID    string   `json:"user_id"`
	ItemIDs   []string `json:"item_ids"`
	Amount    string   `json:"amount"`
	CreatedAt int64    `json:"created_at"`
}

// ItemInput is an item supplied when creating a receipt.
type ItemInput struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

// ReceiptService messages.

type CreateReceiptRequest struct {
	Name   string      `json:"name,omitempty"`
	Vendor string      `json:"vendor,omitempty"`
	Items  []ItemInput `json:"items" validate:"dive"`
}

type CreateReceiptResponse struct {
	Receipt Receipt `json:"receipt"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receipt_id" validate:"required"`
}

type GetReceiptResponse struct {
	Receipt Receipt `json:"receipt"`

	// Names maps the host and guest IDs to display names.
	Names map[string]string `json:"names"`

	Shares      []PersonShare `json:"shares"`
	Received    string        `json:"received"`
	Outstanding string        `json:"outstanding"`
	Unclaimed   string        `json:"unclaimed"`
}

type JoinReceiptRequest struct {
	JoinCode string `json:"join_code" validate:"required"`
}

type JoinReceiptResponse struct {
	ReceiptID string  `json:"receipt_id"`
	Receipt   Receipt `json:"receipt"`
}

type ListReceiptsRequest struct{}

type ListReceiptsResponse struct {
	Hosted    []ReceiptSummary `json:"hosted"`
	Requested []ReceiptSummary `json:"requested"`
}

type AddItemRequest struct {
	ReceiptID string `json:"receipt_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Price     string `json:"price" validate:"required"`

	// ExpectedVersion, when non-zero, rejects the write if the receipt
	// changed since it was read.
	ExpectedVersion int64 `json:"expected_version,omitempty"`
}

type AddItemResponse struct {
	Item    Item    `json:"item"`
	Receipt Receipt `json:"receipt"`
}

type RemoveItemRequest struct {
	ReceiptID       string `json:"receipt_id" validate:"required"`
	ItemID          string `json:"item_id" validate:"required"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

type RemoveItemResponse struct {
	Receipt Receipt `json:"receipt"`
}

type MarkItemsPaidRequest struct {
	ReceiptID string   `json:"receipt_id" validate:"required"`
	ItemIDs   []string `json:"item_ids" validate:"required,min=1"`
}

type MarkItemsPaidResponse struct {
	Checkout Checkout `json:"checkout"`
	Receipt  Receipt  `json:"receipt"`
}

// AddGuestRequest adds an existing user by UserID, or a new guest without
// an account by DisplayName and Phone.
type AddGuestRequest struct {
	ReceiptID   string `json:"receipt_id" validate:"required"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty" validate:"required_without=UserID"`
	Phone       string `json:"phone,omitempty"`
}

type AddGuestResponse struct {
	Guest   User    `json:"guest"`
	Receipt Receipt `json:"receipt"`
}

type QuotePaymentRequest struct {
	ReceiptID string   `json:"receipt_id" validate:"required"`
	ItemIDs   []string `json:"item_ids" validate:"required,min=1"`
	Method    string   `json:"method" validate:"required"`
}

type QuotePaymentResponse struct {
	Subtotal string `json:"subtotal"`
	Amount   string `json:"amount"`
	Method   string `json:"method"`
	Link     string `json:"link"`
}

type ListCheckoutsRequest struct {
	ReceiptID string `json:"receipt_id" validate:"required"`
}

type ListCheckoutsResponse struct {
	Checkouts []Checkout `json:"checkouts"`
}

// ProfileService messages.

type GetUserProfileRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type GetUserProfileResponse struct {
	User User `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Phone       string `json:"phone,omitempty"`
}

type UpdateProfileResponse struct {
	User User `json:"user"`
}

type UpdatePaymentHandlesRequest struct {
	Payments PaymentHandles `json:"payments"`
}

type UpdatePaymentHandlesResponse struct {
	User User `json:"user"`
}

// AuthService messages.

type RegisterRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	DisplayName string         `json:"display_name" validate:"required"`
	Phone       string         `json:"phone,omitempty"`
	Payments    PaymentHandles `json:"payments"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

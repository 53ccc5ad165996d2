// Package settlement finalizes a participant's selected items: the host
// marks them paid in one repository write, a guest is sent to an external
// payment app with a prefilled amount.
package settlement

// Session identifies the signed-in participant. It is passed explicitly to
// every settlement operation.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Valid reports whether the session carries a user.
func (s Session) Valid() bool {
	return s.UserID != ""
}

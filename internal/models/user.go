package models

// User is the account object returned by the registration endpoint.
// The client never stores users; the type exists to decode the creation
// confirmation.
type User struct {
	// ID is the numeric user identifier. Expense payer references point
	// at these IDs.
	ID int `json:"id"`

	// Username is the login name, unique server-side.
	Username string `json:"username"`
}

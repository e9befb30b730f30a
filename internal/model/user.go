package model

// UserProfile is the canonical user shape owned by the session. It is
// replaced wholesale on login/refresh and cleared on logout.
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

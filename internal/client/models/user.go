package models

import "github.com/shopspring/decimal"

// User is the authenticated account as returned by /users/me.
type User struct {
	ID          ID               `json:"id"`
	Email       string           `json:"email"`
	PrincipalID string           `json:"principalId"`
	Name        string           `json:"name,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Avatar      string           `json:"avatar,omitempty"`
	IsVerified  *bool            `json:"isVerified,omitempty"`
}

// Clone returns a deep copy of u; nil stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Balance != nil {
		b := *u.Balance
		c.Balance = &b
	}
	if u.IsVerified != nil {
		v := *u.IsVerified
		c.IsVerified = &v
	}
	return &c
}

// UserUpdate is a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	Email       *string `json:"email,omitempty"`
	PrincipalID *string `json:"principalId,omitempty"`
	Name        *string `json:"name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (p UserUpdate) IsEmpty() bool {
	return p.Email == nil && p.PrincipalID == nil && p.Name == nil && p.Avatar == nil
}

// Apply merges the non-nil fields of p into a copy of u.
func (p UserUpdate) Apply(u *User) *User {
	c := u.Clone()
	if c == nil {
		return nil
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PrincipalID != nil {
		c.PrincipalID = *p.PrincipalID
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Avatar != nil {
		c.Avatar = *p.Avatar
	}
	return c
}

// LoginResponse is the credential exchange result. Some backends embed the
// user; when User is nil the caller must fetch it separately.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// Balance is the body of GET /balance.
type Balance struct {
	Balance decimal.Decimal `json:"balance"`
}

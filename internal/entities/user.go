package entities

import "it-inventory/pkg/types"

type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"-"`
	FullName       *string `json:"full_name,omitempty"`
	IsActive       bool    `json:"is_active"`
	IsSuperuser    bool    `json:"is_superuser"`

	types.BaseEntity
}

func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

// Actor - пользователь, от имени которого выполняется изменение.
// nil означает системное действие (сидер, миграция).
type Actor struct {
	UserID int64
	Email  string
}

func (a *Actor) ID() *int64 {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &id
}

package models

import (
	"time"
)

// RoleAdmin unlocks the maintenance routes. It cannot be chosen at
// registration; only configured admin emails receive it.
const RoleAdmin = "admin"

// User is an account of a district staff member. Role is a free-form
// position title.
type User struct {
	UID          string    `firestore:"uid" json:"uid"`
	Email        string    `firestore:"email" json:"email"`
	PasswordHash string    `firestore:"passwordHash" json:"-"`
	Role         string    `firestore:"role" json:"role"`
	Name         string    `firestore:"name" json:"name"`
	FirstName    string    `firestore:"firstName" json:"firstName"`
	LastName     string    `firestore:"lastName" json:"lastName"`
	IsActive     bool      `firestore:"isActive" json:"isActive"`
	LastLogin    time.Time `firestore:"lastLogin" json:"lastLogin"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updatedAt"`
}

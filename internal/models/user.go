package models

import (
	"time"
)

// Realm is a tenant namespace in which users and roles live
type Realm struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

type User struct {
	ID            string `gorm:"primaryKey"`
	RealmID       string `gorm:"uniqueIndex:idx_users_realm_username;not null"`
	Username      string `gorm:"uniqueIndex:idx_users_realm_username;not null"`
	FirstName     *string
	LastName      *string
	Email         *string
	Enabled       bool `gorm:"not null;default:false"`
	EmailVerified bool `gorm:"not null;default:false"`

	Attributes []UserAttribute `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Roles      []Role          `gorm:"many2many:user_roles;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attribute returns the single value of the named attribute
func (u *User) Attribute(name string) (string, bool) {
	for _, a := range u.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttributeMap returns the attributes keyed by name
func (u *User) AttributeMap() map[string]string {
	out := make(map[string]string, len(u.Attributes))
	for _, a := range u.Attributes {
		out[a.Name] = a.Value
	}
	return out
}

// HasRole returns true if the user has been granted the named role
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the names of all granted roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserAttribute is a single-valued named attribute. A cleared attribute has no row.
type UserAttribute struct {
	UserID string `gorm:"primaryKey"`
	Name   string `gorm:"primaryKey"`
	Value  string `gorm:"not null"`
}

type Role struct {
	ID          string `gorm:"primaryKey"`
	RealmID     string `gorm:"uniqueIndex:idx_roles_realm_name;not null"`
	Name        string `gorm:"uniqueIndex:idx_roles_realm_name;not null"`
	Description string
	CreatedAt   time.Time
}

// UserRole is the join row of a role grant
type UserRole struct {
	UserID string `gorm:"primaryKey"`
	RoleID string `gorm:"primaryKey"`
}

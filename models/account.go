package models

import (
	"time"

	"goflare.io/storefront/models/enum"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	Role      enum.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == enum.RoleAdmin
}

// Session is what the backend hands back after a successful sign-in.
type Session struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

type Address struct {
	ID         int64  `json:"id"`
	UserID     string `json:"userId"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type ProfileInput struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" validate:"required"`
	IsDefault  bool   `json:"isDefault"`
}

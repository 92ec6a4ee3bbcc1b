package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	PhoneNumber  string         `json:"phone_number"`
	Role         string         `json:"role" gorm:"default:'customer'"` // admin, artist, customer
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleArtist   UserRole = "artist"
	RoleCustomer UserRole = "customer"
)

// ActorRole identifies who is requesting an order transition. It covers the
// three user roles plus the system actor (payment webhook, timeout sweeper).
type ActorRole string

const (
	ActorAdmin    ActorRole = "admin"
	ActorArtist   ActorRole = "artist"
	ActorCustomer ActorRole = "customer"
	ActorSystem   ActorRole = "system"
)

package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type VerificationStatus string

const (
	//確認コード送信済み・未検証
	VerificationPending VerificationStatus = "PENDING"

	//メール検証済み
	VerificationVerified VerificationStatus = "VERIFIED"
)

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(50);not null" json:"last_name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Mobile       string `gorm:"type:varchar(10)" json:"mobile"`

	//メール検証の状態と確認コード
	Verification     VerificationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"verification"`
	VerificationCode string             `gorm:"type:varchar(5)" json:"-"`

	Role        Role `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsActive    bool `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

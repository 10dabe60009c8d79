package domain

import "time"

const OTPPurposeReset = "reset"

// OTPRecord is a one-time passcode issued to a phone number. The auth flows
// never delete records and expired rows simply stop matching; only the
// migrate cleanup command purges them.
type OTPRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Phone      string     `gorm:"size:32;not null;index:idx_otp_phone_purpose" json:"phone"`
	Code       string     `gorm:"size:6;not null" json:"-"`
	Purpose    string     `gorm:"size:32;not null;default:reset;index:idx_otp_phone_purpose" json:"purpose"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	Verified   bool       `gorm:"not null;default:false" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (OTPRecord) TableName() string { return "otp_records" }

func (o OTPRecord) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

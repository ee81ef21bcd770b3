package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion.
// Issued automatically when the final quiz is passed; issuance is idempotent.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index:idx_certificates_user_course,unique,priority:1;not null"`
	CourseID          uint      `json:"course_id" gorm:"index:idx_certificates_user_course,unique,priority:2;not null"`
	CertificateURL    string    `json:"certificate_url"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	ScorePct          int       `json:"score_pct" gorm:"default:0"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}

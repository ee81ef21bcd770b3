package utils

import (
	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateService issues course completion certificates. Issuance is
// idempotent per (user, course): the unique index on certificates makes a
// second call a no-op.
type CertificateService struct {
	db     *gorm.DB
	client *resty.Client
}

func NewCertificateService(db *gorm.DB) *CertificateService {
	return &CertificateService{
		db: db,
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetRetryCount(2),
	}
}

// IssueCertificate creates the certificate record, asks the renderer for a
// download URL and emails the learner. Rendering and email failures are
// logged but never fail issuance.
func (s *CertificateService) IssueCertificate(userID, courseID uint, scorePct int) error {
	var existing courseModels.Certificate
	if err := s.db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error; err == nil {
		return nil // already issued
	}

	var user models.User
	if err := s.db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return err
	}
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return err
	}

	certificate := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: "CERT-" + strings.ToUpper(uuid.New().String()[:8]),
		ScorePct:          scorePct,
		IssuedAt:          time.Now(),
	}
	certificate.CertificateURL = s.renderCertificate(certificate.CertificateNumber, user.Name, course.Title, scorePct)

	if err := s.db.Create(&certificate).Error; err != nil {
		// A concurrent final-quiz pass already created it
		log.Printf("[CERTIFICATE] Create failed for user %d course %d: %v", userID, courseID, err)
		return nil
	}

	log.Printf("[CERTIFICATE] Issued %s to user %d for course %d", certificate.CertificateNumber, userID, courseID)

	go func() {
		if err := SendCertificateEmail(user.Name, user.Email, course.Title, certificate.CertificateURL); err != nil {
			log.Printf("[CERTIFICATE] Error emailing certificate %s: %v", certificate.CertificateNumber, err)
		}
	}()

	return nil
}

// renderCertificate asks the external renderer for a hosted certificate URL.
// Returns an empty URL when the renderer is unconfigured or unavailable.
func (s *CertificateService) renderCertificate(number, userName, courseTitle string, scorePct int) string {
	if config.AppConfig.CertRenderURL == "" {
		return ""
	}

	var rendered struct {
		URL string `json:"url"`
	}

	resp, err := s.client.R().
		SetBody(map[string]interface{}{
			"certificate_number": number,
			"user_name":          userName,
			"course_title":       courseTitle,
			"score_pct":          scorePct,
		}).
		SetResult(&rendered).
		Post(config.AppConfig.CertRenderURL)
	if err != nil {
		log.Printf("[CERTIFICATE] Renderer unreachable for %s: %v", number, err)
		return ""
	}
	if resp.IsError() {
		log.Printf("[CERTIFICATE] Renderer returned %d for %s", resp.StatusCode(), number)
		return ""
	}

	return rendered.URL
}

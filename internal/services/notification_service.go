// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/harvestx/harvestx-backend/internal/config"
	"github.com/harvestx/harvestx-backend/internal/models"
)

// NotificationService sends workflow emails. Callers fire it from a
// goroutine; failures are logged and never affect the triggering
// operation.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// NotifyRequestCreated tells a farmer a new investment request landed
// on one of their offers.
func (s *NotificationService) NotifyRequestCreated(farmerID uuid.UUID, request *models.InvestmentRequest) {
	farmer, err := s.loadUser(farmerID)
	if err != nil {
		logrus.WithError(err).Warn("request-created notification skipped")
		return
	}

	data := map[string]interface{}{
		"Username":   farmer.Username,
		"Quantity":   request.RequestedQuantity,
		"PricePerKg": request.OfferedPricePerKg,
		"Total":      request.TotalOffered,
		"RequestID":  request.ID,
	}

	tmpl := s.getEmailTemplate("request_created")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Warn("failed to render request-created email")
		return
	}

	if err := s.sendEmail(farmer.Email, tmpl.Subject, body); err != nil {
		logrus.WithError(err).Warn("failed to send request-created email")
	}
}

// NotifyRequestDecided tells an investor their request was accepted or
// rejected.
func (s *NotificationService) NotifyRequestDecided(request *models.InvestmentRequest, accepted bool) {
	investor, err := s.loadUser(request.InvestorID)
	if err != nil {
		logrus.WithError(err).Warn("request-decided notification skipped")
		return
	}

	templateType := "request_rejected"
	if accepted {
		templateType = "request_accepted"
	}

	data := map[string]interface{}{
		"Username":  investor.Username,
		"Quantity":  request.RequestedQuantity,
		"Total":     request.TotalOffered,
		"RequestID": request.ID,
	}

	tmpl := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Warn("failed to render request-decided email")
		return
	}

	if err := s.sendEmail(investor.Email, tmpl.Subject, body); err != nil {
		logrus.WithError(err).Warn("failed to send request-decided email")
	}
}

// NotifyTradeSettled tells both parties the trade was tokenized and
// shares moved.
func (s *NotificationService) NotifyTradeSettled(trade *models.Transaction) {
	tmpl := s.getEmailTemplate("trade_settled")

	for _, userID := range []uuid.UUID{trade.FarmerID, trade.InvestorID} {
		user, err := s.loadUser(userID)
		if err != nil {
			logrus.WithError(err).Warn("trade-settled notification skipped")
			continue
		}

		data := map[string]interface{}{
			"Username":      user.Username,
			"Quantity":      trade.Quantity,
			"Total":         trade.TotalAmount,
			"TransactionID": trade.ID,
		}

		body, err := s.renderTemplate(tmpl.Body, data)
		if err != nil {
			logrus.WithError(err).Warn("failed to render trade-settled email")
			continue
		}

		if err := s.sendEmail(user.Email, tmpl.Subject, body); err != nil {
			logrus.WithError(err).Warn("failed to send trade-settled email")
		}
	}
}

// Helper methods
func (s *NotificationService) loadUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("user %s not found: %w", id, err)
	}
	return &user, nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email delivery skipped")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"request_created": {
			Subject: "New Investment Request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>An investor requested {{.Quantity}} kg at {{.PricePerKg}} per kg (total {{.Total}}).</p>
	<p>Request ID: {{.RequestID}}</p>
	<p>Log in to accept or reject the request.</p>
	<p>Best regards,<br>HarvestX Team</p>
</body>
</html>`,
		},
		"request_accepted": {
			Subject: "Investment Request Accepted",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your request for {{.Quantity}} kg (total {{.Total}}) was accepted.</p>
	<p>Deposit the agreed amount to the escrow account shown in your dashboard to complete the trade.</p>
	<p>Best regards,<br>HarvestX Team</p>
</body>
</html>`,
		},
		"request_rejected": {
			Subject: "Investment Request Rejected",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Your request for {{.Quantity}} kg (total {{.Total}}) was rejected by the farmer.</p>
	<p>Best regards,<br>HarvestX Team</p>
</body>
</html>`,
		},
		"trade_settled": {
			Subject: "Trade Settled",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Trade {{.TransactionID}} settled: {{.Quantity}} kg of harvest shares transferred.</p>
	<p>Best regards,<br>HarvestX Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}

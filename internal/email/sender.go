package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/praxisdesk/practice-api/internal/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers reminder emails. The worker owns retry policy.
type Sender interface {
	SendAppointmentReminder(to, patientName string, apt *model.Appointment) error
}

type smtpSender struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg Config) Sender {
	return &smtpSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpSender) SendAppointmentReminder(to, patientName string, apt *model.Appointment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lembrete de consulta - %s", apt.Date))
	m.SetBody("text/plain", fmt.Sprintf(
		"Olá %s,\n\nVocê tem uma consulta de %s marcada para %s às %s.\n\nAté lá!",
		patientName, apt.Type, apt.Date, apt.Time,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

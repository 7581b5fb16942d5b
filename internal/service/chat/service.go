package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/praxisdesk/practice-api/internal/assistant"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

// fallbackReply is returned when the assistant provider is down so the
// conversation never dead-ends.
const fallbackReply = "Desculpe, não consegui processar sua mensagem agora. Tente novamente em instantes."

type Service struct {
	repo     repository.ChatRepository
	patients repository.PatientRepository
	client   assistant.Client
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.ChatRepository, patients repository.PatientRepository, client assistant.Client, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		client:   client,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SendMessage records the practitioner's message, asks the assistant
// for a reply in the patient's clinical context and records that too.
// Provider failures degrade to a fallback reply instead of an error.
func (s *Service) SendMessage(ctx context.Context, patientID uuid.UUID, content string) ([]*model.ChatMessage, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	userMsg := &model.ChatMessage{
		ID:        uuid.New(),
		PatientID: patientID,
		Sender:    model.ChatSenderUser,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.repo.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	reply := s.complete(ctx, patient, history, content)

	aiMsg := &model.ChatMessage{
		ID:        uuid.New(),
		PatientID: patientID,
		Sender:    model.ChatSenderAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	}
	if err := s.repo.Append(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	return []*model.ChatMessage{userMsg, aiMsg}, nil
}

func (s *Service) complete(ctx context.Context, patient *model.Patient, history []*model.ChatMessage, content string) string {
	start := time.Now()

	turns := make([]assistant.Message, 0, len(history)+1)
	for _, msg := range history {
		role := assistant.RoleUser
		if msg.Sender == model.ChatSenderAssistant {
			role = assistant.RoleAssistant
		}
		turns = append(turns, assistant.Message{Role: role, Content: msg.Content})
	}
	turns = append(turns, assistant.Message{Role: assistant.RoleUser, Content: content})

	reply, err := s.client.Complete(ctx, systemPrompt(patient), turns)
	s.metrics.AssistantLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.AssistantRequests.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).
			Str("patient_id", patient.ID.String()).
			Msg("assistant completion failed, using fallback")
		return fallbackReply
	}
	s.metrics.AssistantRequests.WithLabelValues("ok").Inc()
	return reply
}

// systemPrompt frames the assistant as a clinical aide with the
// patient's record at hand.
func systemPrompt(p *model.Patient) string {
	var b strings.Builder
	b.WriteString("Você é um assistente clínico que apoia o profissional de saúde. ")
	b.WriteString("Responda de forma objetiva e nunca prescreva sem ressalvas.\n\n")
	fmt.Fprintf(&b, "Paciente: %s, %d anos.\n", p.Name, p.Age)
	if p.Condition != "" {
		fmt.Fprintf(&b, "Condição: %s.\n", p.Condition)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Marcadores: %s.\n", strings.Join(p.Tags, ", "))
	}
	if p.Anamnesis != "" {
		fmt.Fprintf(&b, "Anamnese:\n%s\n", p.Anamnesis)
	}
	return b.String()
}

// History returns the full conversation for a patient in order.
func (s *Service) History(ctx context.Context, patientID uuid.UUID) ([]*model.ChatMessage, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListForPatient(ctx, patientID)
}

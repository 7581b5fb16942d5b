package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
)

// Fixed ids keep the demo dataset addressable across restarts.
var (
	seedPatientMaria    = uuid.MustParse("6f1f64a5-11d2-4c4b-8f5a-6a41f0a3c101")
	seedPatientJoao     = uuid.MustParse("6f1f64a5-11d2-4c4b-8f5a-6a41f0a3c102")
	seedPatientAna      = uuid.MustParse("6f1f64a5-11d2-4c4b-8f5a-6a41f0a3c103")
	seedPatientCarlos   = uuid.MustParse("6f1f64a5-11d2-4c4b-8f5a-6a41f0a3c104")
	seedPatientFernanda = uuid.MustParse("6f1f64a5-11d2-4c4b-8f5a-6a41f0a3c105")
)

// Seed loads the demo dataset into the given repositories. Appointment
// dates are laid out relative to asOf so today/upcoming views have
// something to show.
func Seed(ctx context.Context, patients repository.PatientRepository, appointments repository.AppointmentRepository, templates repository.TemplateRepository, asOf time.Time) error {
	today := model.NewISODate(asOf)

	seedPatients := []*model.Patient{
		{
			Base:      model.Base{ID: seedPatientMaria, CreatedAt: asOf.AddDate(0, -4, 0), UpdatedAt: asOf.AddDate(0, -4, 0)},
			Name:      "Maria Silva Santos",
			Email:     "maria.silva@email.com",
			Phone:     "(11) 99999-1234",
			Condition: "Hipertensão Arterial",
			Age:       45,
			Gender:    model.GenderFemale,
			Tags:      []string{"Crônico", "Controlado"},
			LastVisit: today.AddDays(-17),
			Anamnesis: "Paciente com histórico de hipertensão arterial há 5 anos.",
			Status:    model.PatientStatusActive,
		},
		{
			Base:      model.Base{ID: seedPatientJoao, CreatedAt: asOf.AddDate(0, -3, 0), UpdatedAt: asOf.AddDate(0, -3, 0)},
			Name:      "João Pedro Oliveira",
			Email:     "joao.pedro@email.com",
			Phone:     "(11) 98888-5678",
			Condition: "Ansiedade Generalizada",
			Age:       28,
			Gender:    model.GenderMale,
			Tags:      []string{"Primeira Vez", "Ansioso"},
			LastVisit: today.AddDays(-14),
			Anamnesis: "Paciente jovem com quadro de ansiedade.",
			Status:    model.PatientStatusActive,
		},
		{
			Base:      model.Base{ID: seedPatientAna, CreatedAt: asOf.AddDate(0, -4, -15), UpdatedAt: asOf.AddDate(0, -4, -15)},
			Name:      "Ana Carolina Lima",
			Email:     "ana.carolina@email.com",
			Phone:     "(11) 97777-9101",
			Condition: "Diabetes Tipo 2",
			Age:       52,
			Gender:    model.GenderFemale,
			Tags:      []string{"Crônico", "Diabetes"},
			LastVisit: today.AddDays(-10),
			Anamnesis: "Diagnóstico de diabetes tipo 2 há 3 anos.",
			Status:    model.PatientStatusActive,
		},
		{
			Base:      model.Base{ID: seedPatientCarlos, CreatedAt: asOf.AddDate(0, -2, 0), UpdatedAt: asOf.AddDate(0, -2, 0)},
			Name:      "Carlos Eduardo Costa",
			Email:     "carlos.eduardo@email.com",
			Phone:     "(11) 96666-1122",
			Condition: "Lesão no Joelho",
			Age:       35,
			Gender:    model.GenderMale,
			Tags:      []string{"Urgente", "Fisioterapia"},
			LastVisit: today.AddDays(-7),
			Anamnesis: "Lesão no joelho direito durante atividade esportiva.",
			Status:    model.PatientStatusActive,
		},
		{
			Base:      model.Base{ID: seedPatientFernanda, CreatedAt: asOf.AddDate(0, -1, -10), UpdatedAt: asOf.AddDate(0, -1, -10)},
			Name:      "Fernanda Santos",
			Email:     "fernanda.santos@email.com",
			Phone:     "(11) 95555-3344",
			Condition: "Sobrepeso",
			Age:       30,
			Gender:    model.GenderFemale,
			Tags:      []string{"Nutrição", "Primeira Vez"},
			LastVisit: today.AddDays(-4),
			Anamnesis: "Busca orientação nutricional para perda de peso.",
			Status:    model.PatientStatusActive,
		},
	}
	sortPatientsByName(seedPatients)

	for _, p := range seedPatients {
		if err := patients.Create(ctx, p); err != nil {
			return err
		}
	}

	seedAppointments := []*model.Appointment{
		{PatientID: seedPatientMaria, Date: today, Time: "09:00", Type: "Consulta de Retorno", Status: model.AppointmentStatusScheduled},
		{PatientID: seedPatientJoao, Date: today, Time: "10:30", Type: "Primeira Consulta", Status: model.AppointmentStatusScheduled},
		{PatientID: seedPatientAna, Date: today.AddDays(1), Time: "14:00", Type: "Acompanhamento", Status: model.AppointmentStatusScheduled},
		{PatientID: seedPatientCarlos, Date: today.AddDays(2), Time: "11:00", Type: "Fisioterapia", Status: model.AppointmentStatusScheduled},
		{PatientID: seedPatientFernanda, Date: today.AddDays(4), Time: "15:30", Type: "Avaliação Nutricional", Status: model.AppointmentStatusScheduled},
		{PatientID: seedPatientMaria, Date: today.AddDays(-17), Time: "09:00", Type: "Consulta de Retorno", Status: model.AppointmentStatusCompleted},
		{PatientID: seedPatientAna, Date: today.AddDays(-10), Time: "14:00", Type: "Acompanhamento", Status: model.AppointmentStatusCompleted},
		{PatientID: seedPatientJoao, Date: today.AddDays(3), Time: "16:00", Type: "Consulta de Retorno", Status: model.AppointmentStatusCancelled},
	}

	for i, apt := range seedAppointments {
		apt.ID = uuid.New()
		apt.CreatedAt = asOf.Add(time.Duration(i) * time.Minute)
		apt.UpdatedAt = apt.CreatedAt
		if err := appointments.Create(ctx, apt); err != nil {
			return err
		}
	}

	seedTemplates := []*model.AnamnesisTemplate{
		{ID: uuid.New(), Specialty: "Cardiologia", Name: "Anamnese Cardiológica", Content: "Queixa principal:\nHistória da doença atual:\nAntecedentes cardiovasculares:\nMedicações em uso:", CreatedAt: asOf},
		{ID: uuid.New(), Specialty: "Nutrição", Name: "Avaliação Nutricional", Content: "Objetivo:\nHábitos alimentares:\nRestrições:\nHistórico de peso:", CreatedAt: asOf},
		{ID: uuid.New(), Specialty: "Psiquiatria", Name: "Anamnese Psiquiátrica", Content: "Queixa principal:\nHistória psiquiátrica:\nSono e apetite:\nRede de apoio:", CreatedAt: asOf},
	}

	for _, tmpl := range seedTemplates {
		if err := templates.Create(ctx, tmpl); err != nil {
			return err
		}
	}

	return nil
}

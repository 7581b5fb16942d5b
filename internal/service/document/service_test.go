package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (*Service, *model.Patient) {
	t.Helper()

	patients := memory.NewPatientRepository()
	svc := NewService(
		memory.NewDocumentRepository(),
		memory.NewTemplateRepository(),
		patients,
	).WithClock(testClock)

	p := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Ana Paula",
		Email:  "ana@example.com",
		Gender: model.GenderFemale,
		Status: model.PatientStatusActive,
	}
	require.NoError(t, patients.Create(context.Background(), p))
	return svc, p
}

func TestAttachAndListDocuments(t *testing.T) {
	svc, p := newFixture(t)
	ctx := context.Background()

	doc, err := svc.Attach(ctx, p.ID, &model.CreateDocumentRequest{
		Name: "exame-sangue.pdf",
		Type: "exam",
		URL:  "https://files.example.com/exame-sangue.pdf",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, p.ID, doc.PatientID)
	assert.Equal(t, testClock(), doc.UploadedAt)

	docs, err := svc.ListForPatient(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "exame-sangue.pdf", docs[0].Name)
}

func TestAttachUnknownPatient(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Attach(context.Background(), uuid.New(), &model.CreateDocumentRequest{
		Name: "doc.pdf",
		Type: "exam",
		URL:  "https://files.example.com/doc.pdf",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteDocument(t *testing.T) {
	svc, p := newFixture(t)
	ctx := context.Background()

	doc, err := svc.Attach(ctx, p.ID, &model.CreateDocumentRequest{
		Name: "doc.pdf",
		Type: "exam",
		URL:  "https://files.example.com/doc.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.ID))

	docs, err := svc.ListForPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, doc.ID)))
}

func TestTemplateLifecycle(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	tpl, err := svc.CreateTemplate(ctx, &model.CreateTemplateRequest{
		Specialty: "psicologia",
		Name:      "Anamnese inicial",
		Content:   "Queixa principal:\nHistorico:",
	})
	require.NoError(t, err)

	got, err := svc.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anamnese inicial", got.Name)

	_, err = svc.CreateTemplate(ctx, &model.CreateTemplateRequest{
		Specialty: "nutricao",
		Name:      "Avaliacao nutricional",
		Content:   "Peso:\nAltura:",
	})
	require.NoError(t, err)

	all, err := svc.ListTemplates(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPsi, err := svc.ListTemplates(ctx, "psicologia")
	require.NoError(t, err)
	require.Len(t, onlyPsi, 1)
	assert.Equal(t, "psicologia", onlyPsi[0].Specialty)

	require.NoError(t, svc.DeleteTemplate(ctx, tpl.ID))
	_, err = svc.GetTemplate(ctx, tpl.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

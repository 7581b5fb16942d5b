package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

// Plans shown on the pricing page. Prices are BRL cents.
var plans = []model.Plan{
	{
		ID:           "essencial",
		Name:         "Essencial",
		MonthlyPrice: 9700,
		YearlyPrice:  93100,
		Features: []string{
			"Agenda e prontuário",
			"Até 100 pacientes",
			"Lembretes por e-mail",
		},
	},
	{
		ID:           "profissional",
		Name:         "Profissional",
		MonthlyPrice: 19700,
		YearlyPrice:  189100,
		Features: []string{
			"Pacientes ilimitados",
			"Assistente clínico com IA",
			"Modelos de anamnese",
			"Relatórios do consultório",
		},
	},
	{
		ID:           "clinica",
		Name:         "Clínica",
		MonthlyPrice: 39700,
		YearlyPrice:  381100,
		Features: []string{
			"Tudo do Profissional",
			"Múltiplos profissionais",
			"Suporte prioritário",
		},
	},
}

type Config struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

// sessionCreator matches checkoutsession.New so tests can stub the
// Stripe call.
type sessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type Service struct {
	cfg        Config
	newSession sessionCreator
}

func NewService(cfg Config) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{cfg: cfg, newSession: checkoutsession.New}
}

func (s *Service) withSessionCreator(fn sessionCreator) *Service {
	s.newSession = fn
	return s
}

// Plans returns the subscription tiers.
func (s *Service) Plans() []model.Plan {
	out := make([]model.Plan, len(plans))
	copy(out, plans)
	return out
}

func planByID(id string) (model.Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return model.Plan{}, false
}

// CreateCheckout opens a Stripe subscription checkout for a plan and
// billing cycle.
func (s *Service) CreateCheckout(_ context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.CheckoutSession, error) {
	if s.cfg.SecretKey == "" {
		return nil, apperrors.Internal("billing is not configured", nil)
	}
	plan, ok := planByID(req.PlanID)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown plan %q", req.PlanID), nil)
	}
	if !req.Cycle.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid billing cycle %q", req.Cycle), nil)
	}

	amount := plan.MonthlyPrice
	interval := string(stripe.PriceRecurringIntervalMonth)
	if req.Cycle == model.BillingCycleYearly {
		amount = plan.YearlyPrice
		interval = string(stripe.PriceRecurringIntervalYear)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyBRL)),
					UnitAmount: stripe.Int64(amount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(interval),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("PraxisDesk " + plan.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id":       userID.String(),
			"plan_id":       plan.ID,
			"billing_cycle": string(req.Cycle),
		},
	}

	sess, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &model.CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

package insights

import (
	"context"
	"errors"

	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/warrantywizard-backend/pkg/errors"
	"github.com/angelmondragon/warrantywizard-backend/pkg/llm"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

// InsightTypeRisk is the only insight kind generated today.
const InsightTypeRisk = "risk_assessment"

const (
	llmConfidence   = 0.8
	rulesConfidence = 0.6
)

type warrantyReader interface {
	Get(ctx context.Context, id int64) (*warranties.Record, error)
	Today() types.Date
}

type Service struct {
	repo       Repository
	warranties warrantyReader
	completer  llm.Completer
	logg       *logger.Logger
}

// NewService builds the generator. completer may be nil, in which case every
// insight comes from the rule-based fallback.
func NewService(repo Repository, reader warrantyReader, completer llm.Completer, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("insight repository required")
	}
	if reader == nil {
		return nil, errors.New("warranty reader required")
	}
	return &Service{repo: repo, warranties: reader, completer: completer, logg: logg}, nil
}

// Generate assesses a warranty, preferring the LLM and falling back to the
// day-count rules on any provider or parse failure, then stores the result.
func (s *Service) Generate(ctx context.Context, warrantyID int64) (*models.AIInsight, error) {
	rec, err := s.warranties.Get(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	today := s.warranties.Today()
	assessment := s.assess(ctx, rec.Warranty, today)

	confidence := rulesConfidence
	if assessment.Source == SourceLLM {
		confidence = llmConfidence
	}
	insight := &models.AIInsight{
		WarrantyID:      rec.ID,
		InsightType:     InsightTypeRisk,
		ConfidenceScore: confidence,
		RiskScore:       assessment.RiskScore,
		Message:         assessment.Insight,
	}
	if assessment.Recommendation != "" {
		recommendation := assessment.Recommendation
		insight.Recommendation = &recommendation
	}
	if err := s.repo.Create(ctx, insight); err != nil {
		return nil, pkgerrors.FromDatabase(err, "store insight")
	}
	return insight, nil
}

func (s *Service) List(ctx context.Context, warrantyID int64) ([]models.AIInsight, error) {
	if _, err := s.warranties.Get(ctx, warrantyID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForWarranty(ctx, warrantyID)
	if err != nil {
		return nil, pkgerrors.FromDatabase(err, "list insights")
	}
	return rows, nil
}

func (s *Service) DeleteForWarranty(ctx context.Context, warrantyID int64) error {
	return s.repo.DeleteForWarranty(ctx, warrantyID)
}

func (s *Service) assess(ctx context.Context, w models.Warranty, today types.Date) Assessment {
	if s.completer == nil {
		return Fallback(w, today)
	}

	content, err := s.completer.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: Prompt(w, today)}},
		Temperature: 0.5,
		MaxTokens:   300,
	})
	if err == nil {
		var a Assessment
		if a, err = ParseAssessment(content); err == nil {
			return a
		}
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithFields(s.logg.WithWarrantyID(ctx, w.ID), map[string]any{
			"error": err.Error(),
		}), "insight generation fell back to rules")
	}
	return Fallback(w, today)
}

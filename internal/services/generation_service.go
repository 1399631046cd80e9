package services

import (
	"context"
	"fmt"

	"github.com/math-2025/www.riyaziyyat.az/internal/genai"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/utils"
)

type generationService struct {
	client *genai.Client
	logger utils.Logger
}

func NewGenerationService(client *genai.Client, logger utils.Logger) GenerationService {
	return &generationService{
		client: client,
		logger: logger,
	}
}

// GenerateFromPDF turns an uploaded PDF into question drafts for teacher
// review. An empty model response is a hard error so a broken generation
// never silently produces an empty exam.
func (s *generationService) GenerateFromPDF(ctx context.Context, pdfData []byte, numQuestions int) ([]QuestionDraft, error) {
	if s.client == nil {
		return nil, ErrGenerationDisabled
	}
	if len(pdfData) == 0 {
		return nil, ErrInvalidPDF
	}

	generated, err := s.client.GenerateQuestions(ctx, pdfData, numQuestions)
	if err != nil {
		s.logger.LogError(err, "Question generation failed", "num_questions", numQuestions)
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}

	drafts := make([]QuestionDraft, 0, len(generated))
	for _, q := range generated {
		drafts = append(drafts, QuestionDraft{
			Text:          q.Text,
			Type:          models.QuestionType(q.Type),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	s.logger.Info("Questions generated", "count", len(drafts))
	return drafts, nil
}

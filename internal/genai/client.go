package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/math-2025/www.riyaziyyat.az/internal/models"
)

// GeneratedQuestion is one question produced by the model.
type GeneratedQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type generationResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// Client wraps an OpenAI-compatible API client for question generation.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new generation client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// GenerateQuestions extracts exam questions from a PDF document. The model
// must return exactly numQuestions questions; an empty result is an error,
// never a silent success.
func (c *Client) GenerateQuestions(ctx context.Context, pdfData []byte, numQuestions int) ([]GeneratedQuestion, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF document")
	}
	if numQuestions <= 0 {
		return nil, fmt.Errorf("number of questions must be positive, got %d", numQuestions)
	}

	dataURI := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfData)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildGenerationPrompt(numQuestions),
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Generate the questions from this document.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURI,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generation API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("generation response", "raw", raw)

	questions, err := parseGenerationResponse(raw)
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	return questions, nil
}

// parseGenerationResponse decodes and validates the model output.
func parseGenerationResponse(raw string) ([]GeneratedQuestion, error) {
	var parsed generationResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse generation response: %w (raw: %s)", err, raw)
	}

	for i, q := range parsed.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %d has empty text", i+1)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("question %d has empty correct answer", i+1)
		}

		switch models.QuestionType(q.Type) {
		case models.MultipleChoice:
			if err := validateMultipleChoice(q); err != nil {
				return nil, fmt.Errorf("question %d: %w", i+1, err)
			}
		case models.FreeForm:
			if len(q.Options) > 0 {
				return nil, fmt.Errorf("question %d: free-form question must not have options", i+1)
			}
		default:
			return nil, fmt.Errorf("question %d has unknown type %q", i+1, q.Type)
		}
	}

	return parsed.Questions, nil
}

func validateMultipleChoice(q GeneratedQuestion) error {
	if len(q.Options) != models.MultipleChoiceOptionCount {
		return fmt.Errorf("multiple-choice question must have %d options, got %d",
			models.MultipleChoiceOptionCount, len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	containsAnswer := false
	for _, opt := range q.Options {
		if seen[opt] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = true
		if opt == q.CorrectAnswer {
			containsAnswer = true
		}
	}

	if !containsAnswer {
		return fmt.Errorf("options do not contain the correct answer %q", q.CorrectAnswer)
	}

	return nil
}

func buildGenerationPrompt(numQuestions int) string {
	var sb strings.Builder
	sb.WriteString("You are an expert exam creator for a mathematics school. ")
	sb.WriteString("Analyze the attached PDF document and generate exam questions based on its content.\n\n")
	sb.WriteString(fmt.Sprintf("Generate EXACTLY %d questions.\n\n", numQuestions))
	sb.WriteString("RULES:\n")
	sb.WriteString("- Each question is either \"multiple_choice\" or \"free_form\".\n")
	sb.WriteString(fmt.Sprintf("- A multiple_choice question MUST have exactly %d distinct options, and one of the options MUST equal the correct answer.\n", models.MultipleChoiceOptionCount))
	sb.WriteString("- A free_form question MUST have an empty options array.\n")
	sb.WriteString("- Write questions in the language of the document.\n")
	sb.WriteString("- The correct answer must be unambiguous.\n")
	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"questions": [{"text": "<question text>", "type": "<multiple_choice|free_form>", "options": ["..."], "correctAnswer": "<answer>"}]}`)
	sb.WriteString("\n")

	return sb.String()
}

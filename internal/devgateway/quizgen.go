package devgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

const defaultQuizSize = 5

// QuizGenerator produces a question set for an article. n <= 0 means the
// generator's default size.
type QuizGenerator interface {
	Generate(ctx context.Context, article Article, n int) ([]models.QuizQuestion, error)
}

// LLMConfig configures the chat-completion backed generator. Any
// OpenAI-compatible vendor works; DeepSeek is the default base URL.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    int
}

type llmGenerator struct {
	client *openai.Client
	model  string
	size   int
	log    *logger.Logger
}

// NewLLMGenerator builds a generator over an OpenAI-compatible endpoint.
func NewLLMGenerator(cfg LLMConfig) QuizGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}
	size := cfg.Size
	if size <= 0 {
		size = defaultQuizSize
	}
	return &llmGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		size:   size,
		log:    logger.Default().WithPrefix("quizgen"),
	}
}

type quizPayload struct {
	Questions []models.QuizQuestion `json:"questions"`
}

func (g *llmGenerator) Generate(ctx context.Context, article Article, n int) ([]models.QuizQuestion, error) {
	if n <= 0 {
		n = g.size
	}

	prompt := fmt.Sprintf(`You are an English reading teacher. Based on the article below, write %d multiple-choice comprehension questions for an intermediate learner.

Article title: %s
Article:
%s

Return strict JSON, no markdown fences, in this shape:
{"questions": [{"question": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "answer": "A", "explanation": "..."}]}`,
		n, article.Title, article.Content)

	g.log.Debug("generating %d questions for article %d", n, article.ID)
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	content := stripFences(resp.Choices[0].Message.Content)
	var payload quizPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parse quiz payload: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	g.log.Info("generated %d questions for article %d", len(payload.Questions), article.ID)
	return payload.Questions, nil
}

// stripFences drops a ```json ... ``` wrapper some models emit anyway.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// StaticGenerator serves canned comprehension questions so the stack works
// offline with no API key.
type StaticGenerator struct{}

func (StaticGenerator) Generate(_ context.Context, article Article, n int) ([]models.QuizQuestion, error) {
	questions := []models.QuizQuestion{
		{
			Question: "What is the title of the article you just read?",
			Options: []string{
				"A) " + article.Title,
				"B) A Day at the Office",
				"C) The Lost Letter",
				"D) Winter Evenings",
			},
			Answer:      "A",
			Explanation: "The title is shown at the top of the reading page.",
		},
		{
			Question: "What is the best strategy when you meet an unknown word while reading?",
			Options: []string{
				"A) Stop reading immediately",
				"B) Guess the meaning from context, then check it",
				"C) Skip the whole paragraph",
				"D) Memorize the word letter by letter",
			},
			Answer:      "B",
			Explanation: "Context-based guessing keeps the reading flow and aids retention.",
		},
		{
			Question: "Which activity best reinforces new vocabulary after reading?",
			Options: []string{
				"A) Spaced-repetition review",
				"B) Reading the dictionary cover to cover",
				"C) Copying the article once",
				"D) Ignoring it until the exam",
			},
			Answer:      "A",
			Explanation: "Spaced repetition schedules reviews just before forgetting.",
		},
	}
	if n > 0 && n < len(questions) {
		questions = questions[:n]
	}
	return questions, nil
}

var _ QuizGenerator = (*llmGenerator)(nil)
var _ QuizGenerator = StaticGenerator{}

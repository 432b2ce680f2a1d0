package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a judge. You must respond with ONLY 'yes' or 'no'. Don't explain your reasoning."

// question returns the user prompt for a variant with the message embedded.
func (v Variant) question(text string) string {
	switch v {
	case VariantSmoking:
		return fmt.Sprintf("Evaluate this message and decide if this person is talking about smoking or going for a smoke. Respond with ONLY 'yes' or 'no':\n\n%s", text)
	default:
		return fmt.Sprintf("Evaluate this message and decide if this person is absent today. Respond with ONLY 'yes' or 'no':\n\n%s", text)
	}
}

// chatCompleter is the slice of the OpenAI client the classifier needs;
// *openai.Client satisfies it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type GPTClassifier struct {
	client      chatCompleter
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTClassifier(apiKey string, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTClassifier {
	return &GPTClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Classify asks the model a yes/no question about the message. Anything other
// than a literal "yes" answer, including API errors, counts as no.
func (c *GPTClassifier) Classify(ctx context.Context, text string, variant Variant) bool {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: variant.question(text),
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)

	if err != nil {
		c.logger.Error("Failed to get classifier response",
			zap.Error(err),
			zap.String("variant", variant.String()))
		return false
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("Classifier returned no choices",
			zap.String("variant", variant.String()))
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	c.logger.Debug("Classifier verdict",
		zap.String("variant", variant.String()),
		zap.String("answer", answer))

	return answer == "yes"
}

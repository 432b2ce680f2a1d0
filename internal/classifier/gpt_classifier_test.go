package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	answer  string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.answer}},
		},
	}, nil
}

func testClassifier(completer chatCompleter) *GPTClassifier {
	return &GPTClassifier{
		client:      completer,
		model:       openai.GPT4oMini,
		maxTokens:   5,
		temperature: 0.7,
		logger:      zap.NewNop(),
	}
}

func TestClassify_AnswerParsing(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"yes", true},
		{"Yes", true},
		{"  YES \n", true},
		{"no", false},
		{"No.", false},
		{"yes, definitely", false},
		{"maybe", false},
		{"", false},
	}

	for _, tc := range cases {
		completer := &fakeCompleter{answer: tc.answer}
		got := testClassifier(completer).Classify(context.Background(), "I'm sick today", VariantAbsence)
		require.Equal(t, tc.want, got, "answer=%q", tc.answer)
	}
}

func TestClassify_APIErrorFailsClosed(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	require.False(t, testClassifier(completer).Classify(context.Background(), "I'm sick today", VariantAbsence))
}

func TestClassify_EmptyChoicesFailsClosed(t *testing.T) {
	c := testClassifier(&emptyCompleter{})
	require.False(t, c.Classify(context.Background(), "anything", VariantSmoking))
}

type emptyCompleter struct{}

func (emptyCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, nil
}

func TestClassify_RequestShape(t *testing.T) {
	completer := &fakeCompleter{answer: "yes"}
	testClassifier(completer).Classify(context.Background(), "going for a smoke", VariantSmoking)

	req := completer.lastReq
	require.Equal(t, 5, req.MaxTokens)
	require.InDelta(t, 0.7, float64(req.Temperature), 0.001)
	require.Len(t, req.Messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "ONLY 'yes' or 'no'")
	require.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	require.Contains(t, req.Messages[1].Content, "going for a smoke")
	require.Contains(t, req.Messages[1].Content, "smoking")
}

func TestVariantString(t *testing.T) {
	require.Equal(t, "absence", VariantAbsence.String())
	require.Equal(t, "smoking", VariantSmoking.String())
}

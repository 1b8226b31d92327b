package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/llm"
	types "supportflow/internal/types"
)

func TestClassifier_ParsesReplyWithCommentary(t *testing.T) {
	f := llm.NewFakeClient().SetReply(llm.PhaseClassify,
		"Sure! Here you go:\n{\"category\":\"Refund\",\"urgency\":\"high\",\"sentiment\":\"negative\",\"summary\":\"wants money back\"}\nHope that helps")
	c := &Classifier{LLM: f}

	got := c.Classify(context.Background(), "Refund request", "My event was cancelled")
	assert.Equal(t, types.Classification{
		Category:  types.CategoryRefund,
		Urgency:   types.UrgencyHigh,
		Sentiment: types.SentimentNegative,
		Summary:   "wants money back",
	}, got)

	calls := f.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "Subject: Refund request")
}

func TestClassifier_NormalizesUnknownValues(t *testing.T) {
	f := llm.NewFakeClient().SetReply(llm.PhaseClassify,
		`{"category":"billing","urgency":"whenever","sentiment":"ecstatic","summary":"x"}`)
	got := (&Classifier{LLM: f}).Classify(context.Background(), "", "")
	assert.Equal(t, types.CategoryGeneral, got.Category)
	assert.Equal(t, types.UrgencyMedium, got.Urgency)
	assert.Equal(t, types.SentimentNeutral, got.Sentiment)
}

func TestClassifier_PreservesOffTopic(t *testing.T) {
	f := llm.NewFakeClient().SetReply(llm.PhaseClassify,
		`{"category":"off_topic","urgency":"low","sentiment":"neutral","summary":"weather"}`)
	got := (&Classifier{LLM: f}).Classify(context.Background(), "Weather", "Will it rain?")
	assert.Equal(t, types.CategoryOffTopic, got.Category)
}

func TestClassifier_DegradesOnGarbage(t *testing.T) {
	f := llm.NewFakeClient().SetReply(llm.PhaseClassify, "I cannot classify this")
	got := (&Classifier{LLM: f}).Classify(context.Background(), "", "")
	assert.Equal(t, types.CategoryGeneral, got.Category)
	assert.Equal(t, types.UrgencyMedium, got.Urgency)
	assert.Equal(t, types.SentimentNeutral, got.Sentiment)
	assert.Contains(t, got.Summary, "parse error")
}

func TestClassifier_DegradesOnModelFailure(t *testing.T) {
	f := llm.NewFakeClient().SetError(llm.PhaseClassify, errors.New("quota exceeded"))
	got := (&Classifier{LLM: f}).Classify(context.Background(), "Subject", "Body")
	assert.Equal(t, types.CategoryGeneral, got.Category)
	assert.Contains(t, got.Summary, "quota exceeded")
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"supportflow/internal/llm"
	t "supportflow/internal/types"
	"supportflow/internal/util/jsonutil"
)

// Classifier labels a ticket with category, urgency, sentiment and summary.
// It never fails: unusable model output degrades to general/medium/neutral.
type Classifier struct {
	LLM     llm.LLMClient
	Timeout time.Duration
	Log     *zap.Logger
}

type classifyReply struct {
	Category  string `json:"category"`
	Urgency   string `json:"urgency"`
	Sentiment string `json:"sentiment"`
	Summary   string `json:"summary"`
}

func (c *Classifier) Classify(ctx context.Context, subject, description string) t.Classification {
	ctx = llm.WithPhase(ctx, llm.PhaseClassify)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	raw, err := c.LLM.Generate(ctx, promptClassify, fmt.Sprintf(promptClassifyUser, subject, description))
	if err != nil {
		logger(c.Log).Warn("classification call failed", zap.Error(err))
		return t.DegradedClassification(fmt.Sprintf("Classification unavailable: %v", err))
	}

	var reply classifyReply
	if err := jsonutil.UnmarshalObject(raw, &reply); err != nil {
		logger(c.Log).Warn("classification reply unparsable", zap.Error(err), zap.Int("reply_bytes", len(raw)))
		return t.DegradedClassification(fmt.Sprintf("Classification parse error: %v", err))
	}
	return t.Classification{
		Category:  t.ParseCategory(reply.Category),
		Urgency:   t.ParseUrgency(reply.Urgency),
		Sentiment: t.ParseSentiment(reply.Sentiment),
		Summary:   reply.Summary,
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

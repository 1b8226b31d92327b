package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportflow/internal/gateway/config"
	"supportflow/internal/llm"
	types "supportflow/internal/types"
)

func localConfig() *config.Config {
	cfg := config.Default()
	cfg.LLM.Provider = "fake"
	return &cfg
}

func TestNewEngine_LocalBackends(t *testing.T) {
	e, err := NewEngine(context.Background(), localConfig(), nil)
	require.NoError(t, err)
	defer e.Close()

	out := e.Process(context.Background(), types.NewTicket("T-100", "Refund policy",
		"Can I get a refund for my ticket? What is the refund policy?", "ada@example.com", ""))
	assert.Equal(t, "T-100", out.TicketID)
	assert.NotEmpty(t, out.FinalStatus)
	assert.True(t, out.TicketSaved)

	recent, err := e.Store.RecentTickets(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "T-100", recent[0].TicketID)
}

func TestNewEngine_OffTopicNeverSearches(t *testing.T) {
	fake := llm.NewFakeClient().SetReply(llm.PhaseClassify,
		`{"category":"off_topic","urgency":"low","sentiment":"neutral","summary":"weather"}`)
	e, err := NewEngine(context.Background(), localConfig(), nil, WithLLM(fake))
	require.NoError(t, err)
	defer e.Close()

	out := e.Process(context.Background(), types.NewTicket("T-101", "Weather", "What's the weather in Lisbon?", "", ""))
	assert.Equal(t, types.StatusResolved, out.FinalStatus)
	assert.True(t, out.ToolResults.OffTopic())
	assert.Equal(t, 0, fake.CallsFor(llm.PhaseResolve))
}

func TestNewEngine_BadSeedFile(t *testing.T) {
	cfg := localConfig()
	cfg.SeedFile = "does-not-exist.yaml"
	_, err := NewEngine(context.Background(), cfg, nil)
	assert.Error(t, err)
}

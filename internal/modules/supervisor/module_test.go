package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/notify"
	"scalper_bot/internal/runner"
)

func TestAttachStatus(t *testing.T) {
	t.Parallel()

	s, err := runner.NewSupervisor([]string{"EURUSD", "GBPUSD"}, runner.Deps{}, runner.DefaultConfig())
	require.NoError(t, err)

	assert.True(t, attachStatus(new(notify.Telegram), s))
	assert.False(t, attachStatus(notify.NewStdout(), s), "stdout has no /status command")

	// до Run циклов нет
	assert.Equal(t, "⚙️ Циклы: 0/2 ", notify.FormatStatus(s.Running(), []string{"EURUSD", "GBPUSD"}))
}

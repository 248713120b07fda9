package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krisha_scrooper/config"
	"krisha_scrooper/models"
)

type fakeRunner struct {
	mu       sync.Mutex
	runs     int
	commands []models.CommandType
	watches  []string
	fail     bool
}

func (r *fakeRunner) RunAll(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	return nil
}

func (r *fakeRunner) HandleCommand(_ context.Context, cmd models.CommandType, params *models.CommandParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
	r.watches = append(r.watches, params.Watch)
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *fakeRunner) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

type fakeQueue struct {
	pending   []models.Command
	processed []int64
}

func (q *fakeQueue) GetPendingCommands() ([]models.Command, error) {
	cmds := q.pending
	q.pending = nil
	return cmds, nil
}

func (q *fakeQueue) MarkCommandProcessed(id int64) error {
	q.processed = append(q.processed, id)
	return nil
}

func TestProcessCommands(t *testing.T) {
	runner := &fakeRunner{fail: true}
	queue := &fakeQueue{pending: []models.Command{
		{ID: 1, Command: models.CmdPause},
		{ID: 2, Command: models.CmdScrapeWatch, Params: json.RawMessage(`{"watch":"almaty"}`)},
		{ID: 3, Command: models.CmdScrapeWatch, Params: json.RawMessage(`{not json`)},
	}}

	s := New(config.SchedulerConfig{}, runner, queue)
	s.processCommands(context.Background())

	assert.Equal(t, []models.CommandType{models.CmdPause, models.CmdScrapeWatch}, runner.commands)
	assert.Equal(t, []string{"", "almaty"}, runner.watches)
	assert.Equal(t, []int64{1, 2, 3}, queue.processed)
}

func TestStartRejectsBadCron(t *testing.T) {
	s := New(config.SchedulerConfig{Cron: "not a cron"}, &fakeRunner{}, &fakeQueue{})
	assert.Error(t, s.Start(context.Background()))
}

func TestIntervalSchedule(t *testing.T) {
	runner := &fakeRunner{}
	s := New(config.SchedulerConfig{Interval: 10 * time.Millisecond}, runner, &fakeQueue{})

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return runner.runCount() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
}

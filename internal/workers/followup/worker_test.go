package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"crm/config"
	"crm/infras/kafka"
	kafkaMocks "crm/infras/kafka/mocks"
	otelMocks "crm/infras/otel/mocks"
	"crm/internal/domains/activity/mocks"
	"crm/internal/domains/activity/model"
	gDto "crm/shared/dto"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func newWorker(t *testing.T) (*Worker, *mocks.MockActivity, *kafkaMocks.MockClient) {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Worker.FollowUp.IntervalSeconds = 1
	cfg.Worker.FollowUp.BatchSize = 2
	cfg.Kafka.Topics.FollowUpDue = "crm.activity.followup_due"

	repo := mocks.NewMockActivity(ctrl)
	client := kafkaMocks.NewMockClient(ctrl)

	w := New(repo, client, cfg, otelMocks.NewOtel())
	w.now = func() time.Time { return now }

	return w, repo, client
}

func TestTick(t *testing.T) {
	w, repo, client := newWorker(t)
	due := now.Add(-time.Hour)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Activity, error) {
			assert.Equal(t, 2, params.Limit)
			assert.Equal(t, model.FieldDueAt, params.SortBy)

			return []model.Activity{
				{ID: "a1", LeadID: "l1", Subject: "Call back", AssignedTo: "u1", DueAt: &due},
				{ID: "a2", LeadID: "l2", Subject: "Send menu", AssignedTo: "u2", DueAt: &due},
			}, nil
		})

	client.EXPECT().SendMessages(gomock.Any(), "crm.activity.followup_due", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			require.Len(t, messages, 2)
			assert.Equal(t, "l1", messages[0].Key)

			event, ok := messages[0].Value.(model.FollowUpDue)
			require.True(t, ok)
			assert.Equal(t, "a1", event.ActivityID)
			assert.Equal(t, "u1", event.AssignedTo)

			return nil
		})

	repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
			assert.Equal(t, now, fields[model.FieldRemindedAt])

			f, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, []string{"a1", "a2"}, f.Value)

			return nil
		})

	reminded, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, reminded)
}

func TestTickNothingDue(t *testing.T) {
	w, repo, _ := newWorker(t)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	reminded, err := w.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reminded)
}

func TestTickPublishFailureLeavesUnstamped(t *testing.T) {
	w, repo, client := newWorker(t)

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Activity{{ID: "a1", LeadID: "l1"}}, nil)
	client.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

	_, err := w.Tick(context.Background())
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestRunStopsOnCancel(t *testing.T) {
	w, repo, _ := newWorker(t)

	ticked := make(chan struct{}, 1)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Activity, error) {
			select {
			case ticked <- struct{}{}:
			default:
			}

			return nil, nil
		}).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("worker did not run its first batch")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

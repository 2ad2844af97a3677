package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"crm/shared/cache"
	"crm/shared/cache/mocks"
)

type summary struct {
	Leads int `json:"leads"`
}

func TestRemember_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	redis := mocks.NewMockRedisCache(ctrl)

	redis.EXPECT().Get(gomock.Any(), "dashboard:1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, v any) error {
		*(v.(*summary)) = summary{Leads: 7}

		return nil
	})

	res, err := cache.Remember(context.Background(), redis, "dashboard:1", 60, func(context.Context) (summary, error) {
		t.Fatal("load must not run on a hit")

		return summary{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, res.Leads)
}

func TestRemember_MissFillsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	redis := mocks.NewMockRedisCache(ctrl)
	saved := make(chan any, 1)

	redis.EXPECT().Get(gomock.Any(), "dashboard:1", gomock.Any()).Return(cache.Nil)
	redis.EXPECT().Save(gomock.Any(), "dashboard:1", gomock.Any(), 60).DoAndReturn(func(_ context.Context, _ string, v any, _ int) error {
		saved <- v

		return nil
	})

	res, err := cache.Remember(context.Background(), redis, "dashboard:1", 60, func(context.Context) (summary, error) {
		return summary{Leads: 3}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Leads)

	select {
	case v := <-saved:
		assert.Equal(t, summary{Leads: 3}, v)
	case <-time.After(time.Second):
		t.Fatal("cache was not filled")
	}
}

func TestRemember_LoadErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	redis := mocks.NewMockRedisCache(ctrl)
	boom := errors.New("db down")

	redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)

	_, err := cache.Remember(context.Background(), redis, "dashboard:1", 60, func(context.Context) (summary, error) {
		return summary{}, boom
	})

	assert.ErrorIs(t, err, boom)
}

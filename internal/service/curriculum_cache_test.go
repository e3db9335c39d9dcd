package service

import (
	"context"
	"coursetrack_backend/internal/util"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCachedCurriculumWithoutRedis(t *testing.T) {
	source := staticCurriculum{1: {10, 11}}

	provider := NewCachedCurriculum(source, nil, time.Minute)
	_, cached := provider.(*CachedCurriculum)
	assert.False(t, cached)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	provider = NewCachedCurriculum(source, rdb, 0)
	_, cached = provider.(*CachedCurriculum)
	assert.False(t, cached)
}

func TestCachedCurriculumFallsBackWhenRedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	provider := NewCachedCurriculum(staticCurriculum{1: {10, 11}}, rdb, time.Minute)

	ids, err := provider.GetCurriculum(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11}, ids)

	_, err = provider.GetCurriculum(context.Background(), 2)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCurriculumKey(t *testing.T) {
	assert.Equal(t, "curriculum:42", curriculumKey(42))
}

func TestCachedCurriculumHitSkipsSource(t *testing.T) {
	rdb := newFakeRedis()
	source := &countingCurriculum{staticCurriculum: staticCurriculum{1: {10, 11, 12}}}
	provider := &CachedCurriculum{Source: source, Redis: rdb, TTL: time.Minute}
	ctx := context.Background()

	ids, err := provider.GetCurriculum(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11, 12}, ids)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, "[10,11,12]", rdb.values["curriculum:1"])
	assert.Equal(t, time.Minute, rdb.ttls["curriculum:1"])

	ids, err = provider.GetCurriculum(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11, 12}, ids)
	assert.Equal(t, 1, source.calls, "second read is served from cache")
}

func TestCachedCurriculumReloadsCorruptedEntry(t *testing.T) {
	rdb := newFakeRedis()
	rdb.values["curriculum:1"] = "not-json"
	source := &countingCurriculum{staticCurriculum: staticCurriculum{1: {10, 11}}}
	provider := &CachedCurriculum{Source: source, Redis: rdb, TTL: time.Minute}

	ids, err := provider.GetCurriculum(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11}, ids)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, "[10,11]", rdb.values["curriculum:1"], "corrupted entry is overwritten")
}

func TestCachedCurriculumDoesNotCacheMissingCourse(t *testing.T) {
	rdb := newFakeRedis()
	provider := &CachedCurriculum{Source: staticCurriculum{}, Redis: rdb, TTL: time.Minute}

	_, err := provider.GetCurriculum(context.Background(), 9)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	assert.Empty(t, rdb.values)
}

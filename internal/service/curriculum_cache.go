package service

import (
	"context"
	"coursetrack_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const curriculumCacheKeyPrefix = "curriculum:"

// CachedCurriculum 在 Redis 中短期缓存课程大纲。
// 只缓存大纲（教师端维护、运行期稳定），观看记录和选课记录从不缓存
type CachedCurriculum struct {
	Source CurriculumProvider
	Redis  redis.Cmdable
	TTL    time.Duration
}

func NewCachedCurriculum(source CurriculumProvider, rdb *redis.Client, ttl time.Duration) CurriculumProvider {
	if rdb == nil || ttl <= 0 {
		return source
	}
	return &CachedCurriculum{Source: source, Redis: rdb, TTL: ttl}
}

func (c *CachedCurriculum) GetCurriculum(ctx context.Context, courseID uint) ([]uint, error) {
	key := curriculumKey(courseID)

	val, err := c.Redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var lectureIDs []uint
		if jsonErr := json.Unmarshal([]byte(val), &lectureIDs); jsonErr == nil {
			return lectureIDs, nil
		}
		logger.Log.Warn("Corrupted curriculum cache entry, reloading", zap.Uint("courseId", courseID))
	case err != redis.Nil:
		// 缓存不可用时直接回源
		logger.Log.Warn("Curriculum cache read failed", zap.Uint("courseId", courseID), zap.Error(err))
	}

	lectureIDs, err := c.Source.GetCurriculum(ctx, courseID)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(lectureIDs)
	if err := c.Redis.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		logger.Log.Warn("Curriculum cache write failed", zap.Uint("courseId", courseID), zap.Error(err))
	}
	return lectureIDs, nil
}

func curriculumKey(courseID uint) string {
	return fmt.Sprintf("%s%d", curriculumCacheKeyPrefix, courseID)
}

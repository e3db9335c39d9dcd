package service

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/repository"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/database"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db          *gorm.DB
	courses     *repository.CurriculumRepository
	progressDB  *repository.ProgressRepository
	enrollments *repository.EnrollmentRepository

	progress   *ProgressService
	analytics  *AnalyticsService
	enrollment *EnrollmentService
	dashboard  *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:          db,
		courses:     repository.NewCurriculumRepository(db),
		progressDB:  repository.NewProgressRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
	}
	f.progress = NewProgressService(f.progressDB, f.courses, nil)
	f.analytics = NewAnalyticsService(f.courses, f.enrollments, f.progress)
	f.enrollment = NewEnrollmentService(f.courses, f.enrollments)
	f.dashboard = NewDashboardService(f.courses, f.enrollments, f.progress, f.analytics)
	return f
}

// course 创建一门课程，返回课程及按顺序排列的章节 ID
func (f *fixture) course(t *testing.T, instructorID uint, price int64, lectures int) (*model.Course, []uint) {
	t.Helper()

	course := &model.Course{Title: fmt.Sprintf("course by %d", instructorID), InstructorID: instructorID, Price: price}
	for i := 1; i <= lectures; i++ {
		course.Lectures = append(course.Lectures, model.Lecture{Title: fmt.Sprintf("L%d", i), Position: i})
	}
	require.NoError(t, f.courses.CreateCourse(context.Background(), course))

	ids := make([]uint, 0, len(course.Lectures))
	for _, l := range course.Lectures {
		ids = append(ids, l.ID)
	}
	return course, ids
}

func (f *fixture) enroll(t *testing.T, studentID, courseID uint, price int64, at time.Time, rating *int) {
	t.Helper()
	require.NoError(t, f.enrollments.Create(context.Background(), &model.Enrollment{
		StudentID:         studentID,
		CourseID:          courseID,
		EnrolledAt:        at,
		PriceAtEnrollment: price,
		Rating:            rating,
	}))
}

func (f *fixture) viewAll(t *testing.T, studentID, courseID uint, lectures []uint) {
	t.Helper()
	for _, l := range lectures {
		require.NoError(t, f.progress.RecordView(context.Background(), studentID, courseID, l))
	}
}

func intPtr(v int) *int { return &v }

// failingProgressStore 模拟存储不可用
type failingProgressStore struct {
	err error
}

func (s *failingProgressStore) GetProgress(ctx context.Context, studentID, courseID uint) ([]model.LectureProgress, error) {
	return nil, s.err
}

func (s *failingProgressStore) UpsertViewed(ctx context.Context, studentID, courseID, lectureID uint) (*model.LectureProgress, error) {
	return nil, s.err
}

func (s *failingProgressStore) ResetAll(ctx context.Context, studentID, courseID uint) error {
	return s.err
}

type staticCurriculum map[uint][]uint

func (c staticCurriculum) GetCurriculum(ctx context.Context, courseID uint) ([]uint, error) {
	ids, ok := c[courseID]
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return ids, nil
}

type publishedMessage struct {
	channel string
	payload []byte
}

// fakeRedis 只实现缓存与通知用到的 GET/SET/PUBLISH，其余方法调用会 panic
type fakeRedis struct {
	redis.Cmdable

	mu        sync.Mutex
	values    map[string]string
	ttls      map[string]time.Duration
	gets      int
	published []publishedMessage
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, publishedMessage{channel: channel, payload: message.([]byte)})
	return redis.NewIntResult(1, nil)
}

// countingCurriculum 统计回源次数
type countingCurriculum struct {
	staticCurriculum
	calls int
}

func (c *countingCurriculum) GetCurriculum(ctx context.Context, courseID uint) ([]uint, error) {
	c.calls++
	return c.staticCurriculum.GetCurriculum(ctx, courseID)
}

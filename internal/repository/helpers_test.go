package repository

import (
	"context"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/pkg/database"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint, price int64, positions ...int) *model.Course {
	t.Helper()

	course := &model.Course{Title: "course", InstructorID: instructorID, Price: price}
	for i, pos := range positions {
		course.Lectures = append(course.Lectures, model.Lecture{Title: fmt.Sprintf("lecture %d", i+1), Position: pos})
	}
	require.NoError(t, NewCurriculumRepository(db).CreateCourse(context.Background(), course))
	return course
}

// 写入一门演示课程和若干选课记录，便于本地调试仪表盘和统计接口
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"context"
	"coursetrack_backend/internal/config"
	"coursetrack_backend/internal/model"
	"coursetrack_backend/internal/repository"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/database"
	"coursetrack_backend/pkg/logger"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	ctx := context.Background()
	courses := repository.NewCurriculumRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	course := &model.Course{
		Title:        "Go 并发编程入门",
		InstructorID: 1,
		Price:        9900,
	}
	for i := 1; i <= 3; i++ {
		course.Lectures = append(course.Lectures, model.Lecture{
			Title:    fmt.Sprintf("第 %d 讲", i),
			Position: i,
		})
	}
	if err := courses.CreateCourse(ctx, course); err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	now := time.Now()
	for studentID := uint(100); studentID < 103; studentID++ {
		err := enrollments.Create(ctx, &model.Enrollment{
			StudentID:         studentID,
			CourseID:          course.ID,
			EnrolledAt:        now.Add(-time.Duration(studentID-100) * time.Hour),
			PriceAtEnrollment: course.Price,
		})
		if err != nil && !errors.Is(err, util.ErrAlreadyEnrolled) {
			log.Fatalf("创建选课记录失败: %v", err)
		}
	}

	log.Printf("完成！课程ID=%d，章节数=%d", course.ID, len(course.Lectures))
}

package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostsTable 帖子表名
const PostsTable = "posts"

const postsSchema = `CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    title TEXT NOT NULL,
    content TEXT NOT NULL
)`

// SeedPost 初始化数据
type SeedPost struct {
	Title   string
	Content string
}

// DefaultPosts initdb 写入的默认帖子
var DefaultPosts = []SeedPost{
	{Title: "2020 CNCF Annual Report", Content: "The Cloud Native Computing Foundation (CNCF) annual report for 2020 is now available. The report highlights the growth of the community, events, projects, and more, over the past year."},
	{Title: "KubeCon + CloudNativeCon 2021", Content: "KubeCon + CloudNativeCon 2021 is the Cloud Native Computing Foundation's flagship conference, which gathers adopters and technologists from leading open source and cloud native communities."},
	{Title: "Kubernetes Certification", Content: "The Cloud Native Computing Foundation offers a certification program that allows users to demonstrate their competence in a hands-on, command-line environment."},
	{Title: "Kubernetes Release 1.20", Content: "The Kubernetes 1.20 release is here, with new features, deprecations, and removals across the control plane, the kubelet and the API."},
	{Title: "CNCF Cloud Native Definition", Content: "Cloud native technologies empower organizations to build and run scalable applications in modern, dynamic environments such as public, private, and hybrid clouds."},
}

// Open 以读写创建模式打开数据库（文件不存在则创建），仅供 initdb 与测试使用
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// InitSchema 创建 posts 表
func InitSchema(db *gorm.DB) error {
	if err := db.Exec(postsSchema).Error; err != nil {
		return fmt.Errorf("failed to create posts table: %w", err)
	}
	return nil
}

// Seed 写入初始帖子；表中已有数据时跳过，返回实际写入条数
func Seed(db *gorm.DB, posts []SeedPost) (int, error) {
	var count int64
	if err := db.Table(PostsTable).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range posts {
			if err := tx.Exec("INSERT INTO posts (title, content) VALUES (?, ?)", p.Title, p.Content).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed posts: %w", err)
	}
	return len(posts), nil
}

// Close 关闭 gorm 底层连接
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

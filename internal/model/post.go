package model

import "time"

// Post 帖子。id 由数据库自增分配，创建后不可变
type Post struct {
	ID      int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Created time.Time `json:"created" gorm:"column:created;->"` // 只读，由数据库默认值填充
	Title   string    `json:"title" gorm:"column:title" validate:"required"`
	Content string    `json:"content" gorm:"column:content"`
}

func (Post) TableName() string { return "posts" }

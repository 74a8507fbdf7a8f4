package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/d60-Lab/techtrends/internal/model"
	"github.com/d60-Lab/techtrends/pkg/database"
)

var (
	// ErrPostNotFound 帖子不存在（调用方据此返回 404，不视为故障）
	ErrPostNotFound = errors.New("post not found")
	// ErrEmptyTitle 标题为空
	ErrEmptyTitle = errors.New("title is required")
)

var (
	validate = validator.New()
	tracer   = otel.Tracer("github.com/d60-Lab/techtrends/internal/repository")
)

// ConnectionProvider 按操作获取连接
type ConnectionProvider interface {
	Acquire(ctx context.Context) (*database.Conn, error)
}

// PostCountRecorder 记录最近一次全量列表的条数
type PostCountRecorder interface {
	RecordPostCount(n int)
}

// PostRepository 帖子仓储接口
type PostRepository interface {
	// List 返回全部帖子，顺序由存储引擎决定（不排序）
	List(ctx context.Context) ([]*model.Post, error)

	// GetByID 根据 ID 查询帖子，不存在时返回 ErrPostNotFound
	GetByID(ctx context.Context, id int64) (*model.Post, error)

	// Create 创建帖子，标题为空时返回 ErrEmptyTitle
	Create(ctx context.Context, title, content string) (*model.Post, error)

	// Count 统计帖子数量
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	conns    ConnectionProvider
	recorder PostCountRecorder
}

// NewPostRepository 创建帖子仓储，recorder 可为 nil
func NewPostRepository(conns ConnectionProvider, recorder PostCountRecorder) PostRepository {
	return &postRepository{conns: conns, recorder: recorder}
}

func (r *postRepository) List(ctx context.Context) (posts []*model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostRepository.List")
	defer func() { endSpan(span, err) }()

	conn, err := r.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.DB.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if r.recorder != nil {
		r.recorder.RecordPostCount(len(posts))
	}
	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (_ *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostRepository.GetByID", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer func() {
		if errors.Is(err, ErrPostNotFound) {
			endSpan(span, nil)
			return
		}
		endSpan(span, err)
	}()

	conn, err := r.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var post model.Post
	err = conn.DB.Where("id = ?", id).Take(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, title, content string) (_ *model.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostRepository.Create")
	defer func() { endSpan(span, err) }()

	// 仅校验去空白后的标题，入库保留原值
	if err := validate.Var(strings.TrimSpace(title), "required"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyTitle, err)
	}
	post := &model.Post{Title: title, Content: content}

	conn, err := r.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.DB.Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	// 回读 created 默认值
	if err := conn.DB.Where("id = ?", post.ID).Take(post).Error; err != nil {
		return nil, fmt.Errorf("failed to reload post %d: %w", post.ID, err)
	}
	span.SetAttributes(attribute.Int64("post.id", post.ID))
	return post, nil
}

func (r *postRepository) Count(ctx context.Context) (_ int64, err error) {
	ctx, span := tracer.Start(ctx, "PostRepository.Count")
	defer func() { endSpan(span, err) }()

	conn, err := r.conns.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var count int64
	if err := conn.DB.Model(&model.Post{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rohitdas13/postdeck/internal/models"
	"github.com/rohitdas13/postdeck/internal/repository"
	"github.com/rohitdas13/postdeck/internal/transfer"
)

type PostService interface {
	List(ctx context.Context, userID string) ([]models.Post, error)
	Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error)
	Update(ctx context.Context, userID string, pu *transfer.PostUpdate) (*models.Post, error)
	Remove(ctx context.Context, userID, postID string) error
}

type postService struct {
	pr repository.PostRepository
}

func NewPostService(pr repository.PostRepository) PostService {
	return &postService{pr: pr}
}

// composerStatuses are the states a user may place a post into directly.
// sending and sent belong to the dispatch engine.
var composerStatuses = map[string]struct{}{
	models.PostStatusDraft:     {},
	models.PostStatusReady:     {},
	models.PostStatusScheduled: {},
}

func (s *postService) List(ctx context.Context, userID string) ([]models.Post, error) {
	posts, err := s.pr.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Create(ctx context.Context, userID string, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}
	if pc.ThreadOrder < 0 {
		return nil, errors.New("thread order must not be negative")
	}

	status := pc.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if _, ok := composerStatuses[status]; !ok {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	scheduledFor, err := parseScheduledFor(pc.ScheduledFor)
	if err != nil {
		return nil, err
	}
	if status == models.PostStatusScheduled && scheduledFor == nil {
		return nil, errors.New("scheduled posts need a scheduled time")
	}

	posts, err := s.pr.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	if pc.ParentID != "" && findPost(posts, pc.ParentID) == nil {
		return nil, fmt.Errorf("parent post %s does not exist", pc.ParentID)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:           id,
		UserID:       userID,
		Content:      pc.Content,
		MediaRefs:    pc.MediaRefs,
		Status:       status,
		ScheduledFor: scheduledFor,
		ThreadOrder:  pc.ThreadOrder,
		ParentID:     pc.ParentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	posts = append(posts, post)
	if err := s.pr.ReplaceAll(ctx, userID, posts); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	return &post, nil
}

func (s *postService) Update(ctx context.Context, userID string, pu *transfer.PostUpdate) (*models.Post, error) {
	if pu == nil || pu.ID == "" {
		err := errors.New("post id is required")
		slog.Info(err.Error())
		return nil, err
	}

	posts, err := s.pr.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	post := findPost(posts, pu.ID)
	if post == nil {
		return nil, fmt.Errorf("post %s not found", pu.ID)
	}
	if post.Status == models.PostStatusSent {
		return nil, errors.New("sent posts cannot be modified")
	}

	if pu.Content != nil {
		if *pu.Content == "" {
			return nil, errors.New("content cannot be empty")
		}
		post.Content = *pu.Content
	}
	if pu.MediaRefs != nil {
		post.MediaRefs = *pu.MediaRefs
	}
	if pu.Status != nil {
		if _, ok := composerStatuses[*pu.Status]; !ok {
			return nil, fmt.Errorf("invalid status %q", *pu.Status)
		}
		post.Status = *pu.Status
	}
	if pu.ScheduledFor != nil {
		scheduledFor, err := parseScheduledFor(*pu.ScheduledFor)
		if err != nil {
			return nil, err
		}
		post.ScheduledFor = scheduledFor
	}
	if pu.ThreadOrder != nil {
		if *pu.ThreadOrder < 0 {
			return nil, errors.New("thread order must not be negative")
		}
		post.ThreadOrder = *pu.ThreadOrder
	}
	if pu.ParentID != nil {
		if *pu.ParentID != "" && findPost(posts, *pu.ParentID) == nil {
			return nil, fmt.Errorf("parent post %s does not exist", *pu.ParentID)
		}
		post.ParentID = *pu.ParentID
	}

	if post.Status == models.PostStatusScheduled && post.ScheduledFor == nil {
		return nil, errors.New("scheduled posts need a scheduled time")
	}

	post.UpdatedAt = time.Now().UTC()

	if err := s.pr.ReplaceAll(ctx, userID, posts); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	updated := *post
	return &updated, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID string) error {
	if postID == "" {
		return errors.New("post id is required")
	}

	posts, err := s.pr.ListAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("error listing posts: %w", err)
	}

	filtered := posts[:0:0]
	for _, p := range posts {
		if p.ID != postID {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == len(posts) {
		return fmt.Errorf("post %s not found", postID)
	}

	if err := s.pr.ReplaceAll(ctx, userID, filtered); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func findPost(posts []models.Post, id string) *models.Post {
	for i := range posts {
		if posts[i].ID == id {
			return &posts[i]
		}
	}
	return nil
}

func parseScheduledFor(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled time format: %w", err)
	}
	utc := t.UTC()
	return &utc, nil
}

package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/repository"
)

// MaxCommentLength 评论最大字符数
const MaxCommentLength = 2000

// CommentStore 评论存储
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	ListRoots(ctx context.Context, contentID string, limit, offset int) ([]*model.Comment, int64, error)
	ListByRoots(ctx context.Context, rootIDs []string) ([]*model.Comment, error)
	CreateReply(ctx context.Context, reply *model.Comment, n *model.Notification) error
	UpdateReaction(ctx context.Context, id string, mutate func(c *model.Comment) *model.Notification) (*model.Comment, error)
}

// Author 发表评论的用户
type Author struct {
	ID    string
	Name  string
	Image string
}

// CommentService 评论服务
type CommentService struct {
	store CommentStore
	newID func() string
	now   func() time.Time
}

func NewCommentService(store CommentStore) *CommentService {
	return &CommentService{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Validation("评论内容不能为空")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", Validation("评论内容过长")
	}
	return text, nil
}

// PostComment 发表根评论
func (s *CommentService) PostComment(ctx context.Context, author Author, contentID, text string) (*model.Comment, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, Validation("contentId 不能为空")
	}
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	c := &model.Comment{
		ID:        s.newID(),
		ContentID: contentID,
		UserID:    author.ID,
		UserName:  author.Name,
		UserImage: author.Image,
		Text:      text,
		CreatedAt: s.now(),
	}
	c.Normalize()
	if err := s.store.Create(ctx, c); err != nil {
		return nil, Internal("发表评论失败", err)
	}
	return c, nil
}

// PostReply 回复评论。回复、父评论 replies 更新与通知在同一事务中写入
func (s *CommentService) PostReply(ctx context.Context, author Author, parentID, text string) (*model.Comment, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, Validation("parentCommentId 不能为空")
	}
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	parent, err := s.store.FindByID(ctx, parentID)
	if err != nil {
		return nil, Internal("获取父评论失败", err)
	}
	if parent == nil {
		return nil, NotFound("父评论不存在")
	}

	rootID := parent.ThreadRootID()
	pid := parent.ID
	reply := &model.Comment{
		ID:            s.newID(),
		ContentID:     parent.ContentID,
		UserID:        author.ID,
		UserName:      author.Name,
		UserImage:     author.Image,
		Text:          text,
		ParentID:      &pid,
		RootCommentID: &rootID,
		CreatedAt:     s.now(),
	}
	reply.Normalize()

	var n *model.Notification
	if parent.UserID != author.ID {
		replyID := reply.ID
		n = &model.Notification{
			ID:          s.newID(),
			RecipientID: parent.UserID,
			SenderID:    author.ID,
			Type:        model.NotificationReply,
			ContentID:   parent.ContentID,
			CommentID:   parent.ID,
			ReplyID:     &replyID,
			CreatedAt:   reply.CreatedAt,
		}
	}

	if err := s.store.CreateReply(ctx, reply, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("父评论不存在")
		}
		return nil, Internal("回复评论失败", err)
	}
	return reply, nil
}

// React 切换点赞/点踩，新增互动且非本人评论时通知作者
func (s *CommentService) React(ctx context.Context, commentID, userID, action string) (*model.Comment, error) {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return nil, Validation("commentId 不能为空")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != model.ReactionLike && action != model.ReactionDislike {
		return nil, Validation("无效的操作类型")
	}

	c, err := s.store.UpdateReaction(ctx, commentID, func(c *model.Comment) *model.Notification {
		added := c.ApplyReaction(userID, action)
		if !added || c.UserID == userID {
			return nil
		}
		typ := model.NotificationLike
		if action == model.ReactionDislike {
			typ = model.NotificationDislike
		}
		return &model.Notification{
			ID:          s.newID(),
			RecipientID: c.UserID,
			SenderID:    userID,
			Type:        typ,
			ContentID:   c.ContentID,
			CommentID:   c.ID,
			CreatedAt:   s.now(),
		}
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("评论不存在")
	}
	if err != nil {
		return nil, Internal("更新评论互动失败", err)
	}
	return c, nil
}

// List 分页获取根评论，每条附带完整评论串
func (s *CommentService) List(ctx context.Context, contentID string, page int) (*model.CommentPage, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, Validation("contentId 不能为空")
	}
	page, offset := pageOffset(page, model.CommentsPerPage)

	roots, total, err := s.store.ListRoots(ctx, contentID, model.CommentsPerPage, offset)
	if err != nil {
		return nil, Internal("获取评论失败", err)
	}

	views, err := s.threads(ctx, roots)
	if err != nil {
		return nil, err
	}
	return &model.CommentPage{
		Comments:   views,
		Page:       page,
		TotalPages: totalPages(total, model.CommentsPerPage),
		Total:      total,
		PerPage:    model.CommentsPerPage,
	}, nil
}

// Thread 获取单个评论串
func (s *CommentService) Thread(ctx context.Context, rootID string) (*model.ThreadView, error) {
	rootID = strings.TrimSpace(rootID)
	if rootID == "" {
		return nil, Validation("rootId 不能为空")
	}
	c, err := s.store.FindByID(ctx, rootID)
	if err != nil {
		return nil, Internal("获取评论失败", err)
	}
	if c == nil {
		return nil, NotFound("评论不存在")
	}
	// 传入回复 ID 时返回其所在的整串
	if !c.IsRoot() {
		if c, err = s.store.FindByID(ctx, c.ThreadRootID()); err != nil {
			return nil, Internal("获取评论失败", err)
		}
		if c == nil {
			return nil, NotFound("评论不存在")
		}
	}

	views, err := s.threads(ctx, []*model.Comment{c})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// threads 一次查询加载全部根评论的回复并组装
func (s *CommentService) threads(ctx context.Context, roots []*model.Comment) ([]*model.ThreadView, error) {
	views := make([]*model.ThreadView, 0, len(roots))
	if len(roots) == 0 {
		return views, nil
	}

	ids := make([]string, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	replies, err := s.store.ListByRoots(ctx, ids)
	if err != nil {
		return nil, Internal("获取回复失败", err)
	}

	byRoot := make(map[string][]*model.Comment, len(roots))
	for _, r := range replies {
		if r.RootCommentID != nil {
			byRoot[*r.RootCommentID] = append(byRoot[*r.RootCommentID], r)
		}
	}
	for _, root := range roots {
		root.Normalize()
		t := model.BuildThread(root, byRoot[root.ID])
		views = append(views, &model.ThreadView{Comment: root, Thread: t.Flatten()})
	}
	return views, nil
}

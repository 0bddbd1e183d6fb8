package model

import (
	"sort"
	"time"

	"github.com/lib/pq"
)

// CommentsPerPage 每页根评论数
const CommentsPerPage = 10

// 评论互动类型
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Comment 评论。回复同时记录直接父评论与根评论，便于单次查询整串回复
type Comment struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ContentID     string         `json:"contentId" gorm:"index:idx_comment_content_created,priority:1;not null"`
	UserID        string         `json:"userId" gorm:"index;not null"`
	UserName      string         `json:"userName"`
	UserImage     string         `json:"userImage"`
	Text          string         `json:"text" gorm:"type:text;not null"`
	ParentID      *string        `json:"parentId" gorm:"index;type:varchar(36)"`
	RootCommentID *string        `json:"rootCommentId" gorm:"index;type:varchar(36)"`
	Likes         pq.StringArray `json:"likes" gorm:"type:text[];not null;default:'{}'"`
	Dislikes      pq.StringArray `json:"dislikes" gorm:"type:text[];not null;default:'{}'"`
	Replies       pq.StringArray `json:"replies" gorm:"type:text[];not null;default:'{}'"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"index:idx_comment_content_created,priority:2"`
}

func (Comment) TableName() string {
	return "content_comments"
}

// IsRoot 是否为根评论
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// ThreadRootID 该评论所在评论串的根评论 ID
func (c *Comment) ThreadRootID() string {
	if c.RootCommentID != nil && *c.RootCommentID != "" {
		return *c.RootCommentID
	}
	return c.ID
}

// Normalize 保证数组字段序列化为 [] 而不是 null
func (c *Comment) Normalize() {
	if c.Likes == nil {
		c.Likes = pq.StringArray{}
	}
	if c.Dislikes == nil {
		c.Dislikes = pq.StringArray{}
	}
	if c.Replies == nil {
		c.Replies = pq.StringArray{}
	}
}

// ApplyReaction 切换点赞/点踩。已在目标数组中则移除，否则加入并从相反数组移除。
// 返回 true 表示本次为新增互动。
func (c *Comment) ApplyReaction(userID, action string) bool {
	c.Normalize()
	target, opposite := &c.Likes, &c.Dislikes
	if action == ReactionDislike {
		target, opposite = &c.Dislikes, &c.Likes
	}

	if containsString(*target, userID) {
		*target = removeString(*target, userID)
		return false
	}
	*target = append(*target, userID)
	*opposite = removeString(*opposite, userID)
	return true
}

// PrependReply 将回复 ID 插入到最前（最新在前）
func (c *Comment) PrependReply(replyID string) {
	c.Replies = append(pq.StringArray{replyID}, c.Replies...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list pq.StringArray, s string) pq.StringArray {
	out := make(pq.StringArray, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// Thread 评论串：以 ID 为键的平铺表，外加按父评论建立的子节点索引
type Thread struct {
	Root     *Comment            `json:"-"`
	Nodes    map[string]*Comment `json:"-"`
	Children map[string][]string `json:"-"`
}

// BuildThread 由根评论和同一 rootCommentId 下的全部回复组装评论串
func BuildThread(root *Comment, replies []*Comment) *Thread {
	t := &Thread{
		Root:     root,
		Nodes:    make(map[string]*Comment, len(replies)+1),
		Children: make(map[string][]string),
	}
	t.Nodes[root.ID] = root

	// 父评论 replies 数组中未登记的孤儿回复按时间倒序追加
	sorted := make([]*Comment, 0, len(replies))
	for _, r := range replies {
		if r == nil || r.ID == root.ID {
			continue
		}
		t.Nodes[r.ID] = r
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	for id, node := range t.Nodes {
		seen := make(map[string]bool, len(node.Replies))
		for _, childID := range node.Replies {
			if child, ok := t.Nodes[childID]; ok && !seen[childID] && child.ParentID != nil && *child.ParentID == id {
				t.Children[id] = append(t.Children[id], childID)
				seen[childID] = true
			}
		}
	}
	for _, r := range sorted {
		parentID := root.ID
		if r.ParentID != nil {
			parentID = *r.ParentID
		}
		if _, ok := t.Nodes[parentID]; !ok {
			parentID = root.ID
		}
		if !containsString(t.Children[parentID], r.ID) {
			t.Children[parentID] = append(t.Children[parentID], r.ID)
		}
	}
	return t
}

// Flatten 深度优先展开回复（不含根评论），使用显式栈避免深层递归
func (t *Thread) Flatten() []*Comment {
	out := make([]*Comment, 0, len(t.Nodes))
	visited := make(map[string]bool, len(t.Nodes))
	visited[t.Root.ID] = true

	stack := make([]string, 0, len(t.Nodes))
	children := t.Children[t.Root.ID]
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, t.Nodes[id])

		kids := t.Children[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// ThreadView 评论列表中的一串：根评论及其全部回复
type ThreadView struct {
	*Comment
	Thread []*Comment `json:"thread"`
}

// CommentPage 根评论分页结果
type CommentPage struct {
	Comments   []*ThreadView `json:"comments"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int64         `json:"total"`
	PerPage    int           `json:"perPage"`
}

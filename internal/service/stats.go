package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/user/hanime/internal/utils"
)

const statsDateLayout = "2006-01-02"

// StatsQuery 广告统计查询参数
type StatsQuery struct {
	StartDate  string
	FinishDate string
	GroupBy    string
	Placement  string
}

// StatsService 广告网络统计代理
type StatsService struct {
	client  *utils.HTTPClient
	baseURL string
	now     func() time.Time
}

func NewStatsService(client *utils.HTTPClient, baseURL string) *StatsService {
	return &StatsService{client: client, baseURL: baseURL, now: time.Now}
}

// normalize 校验日期，缺省查询最近 7 天
func (s *StatsService) normalize(q StatsQuery) (StatsQuery, error) {
	today := s.now().UTC()
	if q.FinishDate == "" {
		q.FinishDate = today.Format(statsDateLayout)
	}
	finish, err := time.Parse(statsDateLayout, q.FinishDate)
	if err != nil {
		return q, Validation("finish_date 格式应为 YYYY-MM-DD")
	}
	if q.StartDate == "" {
		q.StartDate = finish.AddDate(0, 0, -7).Format(statsDateLayout)
	}
	start, err := time.Parse(statsDateLayout, q.StartDate)
	if err != nil {
		return q, Validation("start_date 格式应为 YYYY-MM-DD")
	}
	if start.After(finish) {
		return q, Validation("start_date 不能晚于 finish_date")
	}
	if q.GroupBy == "" {
		q.GroupBy = "date"
	}
	return q, nil
}

// Fetch 使用创作者凭证查询统计，上游 JSON 原样返回，不重试
func (s *StatsService) Fetch(ctx context.Context, creds *CreatorCredentials, q StatsQuery) (json.RawMessage, error) {
	if s.baseURL == "" {
		return nil, Internal("未配置统计接口", nil)
	}
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}
	if q.Placement == "" {
		q.Placement = creds.PlacementID
	}

	params := url.Values{}
	params.Set("start_date", q.StartDate)
	params.Set("finish_date", q.FinishDate)
	params.Set("group_by", q.GroupBy)
	if q.Placement != "" {
		params.Set("placement", q.Placement)
	}

	headers := http.Header{}
	headers.Set("X-API-Key", creds.APIKey)
	body, err := s.client.GetBytes(ctx, s.baseURL+"?"+params.Encode(), headers)
	if err != nil {
		return nil, upstreamErr("统计接口请求失败", err)
	}
	if !json.Valid(body) {
		return nil, Internal("统计接口返回格式错误", nil)
	}
	return json.RawMessage(body), nil
}

// upstreamErr 上游非 2xx 保留状态码，其余视为内部错误
func upstreamErr(msg string, err error) error {
	var ue *utils.UpstreamError
	if errors.As(err, &ue) {
		return &Error{Kind: KindUpstream, Message: msg, Status: ue.Status, Err: err}
	}
	return Internal(msg, err)
}

package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// VideoProxy 视频流代理，转发 Range 请求
type VideoProxy struct {
	client       *http.Client
	allowedHosts []string
}

// NewVideoProxy allowedHosts 为空时不限制主机
func NewVideoProxy(client *http.Client, allowedHosts []string) *VideoProxy {
	if client == nil {
		// 流式传输不设整体超时
		client = &http.Client{}
	}
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts = append(hosts, strings.ToLower(strings.TrimSpace(h)))
	}
	return &VideoProxy{client: client, allowedHosts: hosts}
}

// Validate 校验目标地址
func (p *VideoProxy) Validate(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, Validation("url 不能为空")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, Validation("无效的视频地址")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Validation("仅支持 http/https 地址")
	}
	if !p.hostAllowed(u.Hostname()) {
		return nil, Forbidden("不允许代理该主机")
	}
	return u, nil
}

func (p *VideoProxy) hostAllowed(host string) bool {
	if len(p.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, h := range p.allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Open 请求上游视频，调用方负责关闭响应体
func (p *VideoProxy) Open(ctx context.Context, raw, rangeHeader string) (*http.Response, error) {
	u, err := p.Validate(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, Internal("创建视频请求失败", err)
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Internal("视频源请求失败", err)
	}
	return resp, nil
}

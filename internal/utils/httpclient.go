package utils

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// maxUpstreamBody 上游 JSON 响应体上限
const maxUpstreamBody = 10 << 20

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("上游请求失败，状态码: %d", e.Status)
}

// HTTPClient 上游 HTTP 客户端
type HTTPClient struct {
	httpClient *http.Client
	userAgents []string
}

// NewHTTPClient 创建新的HTTP客户端
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

// Do 发送请求，headers 覆盖默认请求头
func (c *HTTPClient) Do(ctx context.Context, method, url string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "创建请求失败: %s", url)
	}
	req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
	req.Header.Set("Accept", "application/json, */*;q=0.8")
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.httpClient.Do(req)
}

// GetBytes 发送GET请求并读取解压后的响应体，非 2xx 返回 *UpstreamError
func (c *HTTPClient) GetBytes(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Accept-Encoding", "gzip, deflate")

	resp, err := c.Do(ctx, http.MethodGet, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "创建gzip读取器失败")
		}
		defer reader.Close()
	case "deflate":
		reader = flate.NewReader(resp.Body)
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxUpstreamBody))
	if err != nil {
		return nil, errors.Wrap(err, "读取响应失败")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// GetJSON 发送GET请求并解析JSON响应
func (c *HTTPClient) GetJSON(ctx context.Context, url string, headers http.Header, target interface{}) error {
	body, err := c.GetBytes(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		log.Printf("解析JSON失败: %v, 响应体: %.200s", err, body)
		return errors.Wrap(err, "解析JSON失败")
	}
	return nil
}

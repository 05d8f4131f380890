package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/linkfolio/internal/db"
)

// 变更通知事件类型。
const (
	EventProfileCreated  = "profile_created"
	EventProfileUpdated  = "profile_updated"
	EventProfileDeleted  = "profile_deleted"
	EventSettingsUpdated = "settings_updated"
	EventLinkAdded       = "link_added"
	EventLinkUpdated     = "link_updated"
	EventLinkDeleted     = "link_deleted"
	EventLinksReordered  = "links_reordered"
	EventLinkClicked     = "link_clicked"
)

// 单次投递的超时上限，避免慢回调拖住请求路径之外的 goroutine 过久。
const webhookTimeout = 5 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookNotifier 在主页发生变更后向配置的回调地址发送尽力而为的通知。
// 投递失败只记录日志，绝不回滚或阻塞已提交的原始操作，也不做重试。
type WebhookNotifier struct {
	http httpDoer
}

// webhookPayload 是发往回调地址的 JSON 结构。
type webhookPayload struct {
	Event     string         `json:"event"`
	Slug      string         `json:"slug"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewWebhookNotifier 构造 WebhookNotifier，默认使用 5 秒超时的 HTTP 客户端。
func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{http: &http.Client{Timeout: webhookTimeout}}
}

// SetHTTPClient 允许在测试时注入自定义客户端。
func (n *WebhookNotifier) SetHTTPClient(client httpDoer) {
	if client == nil {
		n.http = &http.Client{Timeout: webhookTimeout}
		return
	}
	n.http = client
}

// Notify 在主页配置了回调地址时异步投递一条事件通知。
// 应在事务提交之后调用，投递结果不影响调用方。
func (n *WebhookNotifier) Notify(profile *db.Profile, event string, data map[string]any) {
	if profile == nil {
		return
	}
	target := strings.TrimSpace(profile.WebhookURL)
	if target == "" {
		return
	}

	payload := webhookPayload{
		Event:     event,
		Slug:      profile.Slug,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	go func() {
		if err := n.Deliver(target, payload); err != nil {
			log.Printf("webhook delivery failed for %s (%s): %v", profile.Slug, event, err)
		}
	}()
}

// Deliver 同步投递一条通知，非 2xx 响应视为失败。
func (n *WebhookNotifier) Deliver(target string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

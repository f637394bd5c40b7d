package voiceapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Message 信箱中的一条短信
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Text string `json:"text"`
}

// loginRequest 登录请求
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse 登录响应
type loginResponse struct {
	Token string `json:"token"`
}

// messagesResponse 信箱消息列表响应
type messagesResponse struct {
	Messages []Message `json:"messages"`
}

// sendRequest 发送短信请求
type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Client 语音信箱 Web 账号客户端
// 接收端轮询和 google_voice 短信服务商共用同一套会话接口
type Client struct {
	httpClient *resty.Client
	email      string
	password   string
	logger     *zap.Logger

	mu    sync.Mutex
	token string
}

// NewClient 创建语音信箱客户端
func NewClient(baseURL, email, password string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		email:      email,
		password:   password,
		logger:     logger,
	}
}

// Login 登录并缓存会话 token
func (c *Client) Login(ctx context.Context) error {
	if c.email == "" || c.password == "" {
		return fmt.Errorf("voice account credentials are not configured")
	}

	var result loginResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(loginRequest{Email: c.email, Password: c.password}).
		SetResult(&result).
		Post("/api/login")

	if err != nil {
		return fmt.Errorf("failed to login to voice account: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("voice account login rejected: status %d", resp.StatusCode())
	}
	if result.Token == "" {
		return fmt.Errorf("voice account login returned empty token")
	}

	c.mu.Lock()
	c.token = result.Token
	c.mu.Unlock()

	return nil
}

// sessionToken 获取缓存的会话 token，未登录时先登录
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token != "" {
		return token, nil
	}

	if err := c.Login(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	token = c.token
	c.mu.Unlock()
	return token, nil
}

// invalidateSession 会话过期时清除 token，下次调用重新登录
func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Messages 拉取信箱中的短信列表
func (c *Client) Messages(ctx context.Context) ([]Message, error) {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	var result messagesResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		Get("/api/sms")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch voice messages: %w", err)
	}
	if resp.StatusCode() == 401 {
		c.invalidateSession()
		return nil, fmt.Errorf("voice account session expired")
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to fetch voice messages: status %d", resp.StatusCode())
	}

	return result.Messages, nil
}

// SendSMS 通过语音信箱账号发送一条短信
func (c *Client) SendSMS(ctx context.Context, to, text string) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(sendRequest{To: to, Text: text}).
		Post("/api/sms/send")

	if err != nil {
		return fmt.Errorf("failed to send sms via voice account: %w", err)
	}
	if resp.StatusCode() == 401 {
		c.invalidateSession()
		return fmt.Errorf("voice account session expired")
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("voice account send rejected: status %d", resp.StatusCode())
	}

	return nil
}

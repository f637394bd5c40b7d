package poller

import (
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// IMAPMailbox 基于 IMAP over TLS 的 Mailbox 实现
// 每个周期建立一条新连接，结束即登出，不维持长连接
type IMAPMailbox struct {
	server   string
	port     int
	email    string
	password string
	logger   *zap.Logger
}

// NewIMAPMailbox 创建 IMAP 邮箱源
func NewIMAPMailbox(server string, port int, email, password string, logger *zap.Logger) *IMAPMailbox {
	if logger == nil {
		panic("logger is required")
	}
	return &IMAPMailbox{
		server:   server,
		port:     port,
		email:    email,
		password: password,
		logger:   logger,
	}
}

// FetchUnseen 搜索 INBOX 中的未读邮件，取回信封与正文
func (m *IMAPMailbox) FetchUnseen(ctx context.Context) ([]InboundEmail, error) {
	addr := fmt.Sprintf("%s:%d", m.server, m.port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(m.email, m.password); err != nil {
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}
	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select inbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search unseen messages: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqset, items, messages)
	}()

	var emails []InboundEmail
	for msg := range messages {
		email := InboundEmail{UID: msg.Uid}
		if msg.Envelope != nil && len(msg.Envelope.From) > 0 {
			email.From = msg.Envelope.From[0].Address()
		}
		if body := msg.GetBody(section); body != nil {
			email.Body = m.textBody(body)
		}
		emails = append(emails, email)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return emails, nil
}

// textBody 解析 MIME 结构，返回第一个 text/plain 部分
func (m *IMAPMailbox) textBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		m.logger.Debug("Failed to parse email body",
			zap.Error(err),
		)
		return ""
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		if contentType != "text/plain" && contentType != "" {
			continue
		}
		text, err := io.ReadAll(part.Body)
		if err != nil {
			return ""
		}
		return string(text)
	}
	return ""
}

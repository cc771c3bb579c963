package mail

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// IMAPConfig — параметры подключения к IMAP серверу.
type IMAPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// IMAPDialer открывает IMAP соединения по конфигурации.
type IMAPDialer struct {
	cfg IMAPConfig
}

// NewIMAPDialer создаёт экземпляр.
func NewIMAPDialer(cfg IMAPConfig) *IMAPDialer {
	return &IMAPDialer{cfg: cfg}
}

// Dial подключается к серверу, логинится и открывает INBOX.
func (d *IMAPDialer) Dial(ctx context.Context) (Transport, error) {
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)

	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap: подключение к %s: %w", addr, err)
	}

	if err := c.Login(d.cfg.User, d.cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap: логин: %w", err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("imap: открытие INBOX: %w", err)
	}

	return &imapTransport{client: c}, nil
}

// imapTransport реализует Transport поверх живого IMAP соединения.
type imapTransport struct {
	client *client.Client
}

// ListUnseen ищет непрочитанные письма и скачивает их тела.
// Используется Peek, чтобы сама выборка не помечала письма прочитанными.
func (t *imapTransport) ListUnseen(ctx context.Context) ([]Message, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := t.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap: поиск непрочитанных: %w", err)
	}
	if len(uids) == 0 {
		return []Message{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- t.client.UidFetch(seqset, items, ch)
	}()

	messages := []Message{}
	for msg := range ch {
		parsed, err := decodeMessage(msg, section)
		if err != nil {
			// Нечитаемое письмо пропускаем, остальную пачку обрабатываем.
			continue
		}
		messages = append(messages, parsed)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap: выборка писем: %w", err)
	}

	return messages, nil
}

// MarkSeen помечает письмо прочитанным по UID.
func (t *imapTransport) MarkSeen(ctx context.Context, uid uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := t.client.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("imap: пометка прочитанным uid=%d: %w", uid, err)
	}
	return nil
}

// Close завершает IMAP сессию.
func (t *imapTransport) Close() error {
	return t.client.Logout()
}

// decodeMessage извлекает тему, отправителя и текстовую часть письма.
func decodeMessage(msg *imap.Message, section *imap.BodySectionName) (Message, error) {
	out := Message{UID: msg.Uid}

	if msg.Envelope != nil {
		out.Subject = msg.Envelope.Subject
		if len(msg.Envelope.From) > 0 {
			out.From = strings.ToLower(msg.Envelope.From[0].Address())
		}
	}

	body := msg.GetBody(section)
	if body == nil {
		return out, fmt.Errorf("imap: пустое тело письма uid=%d", msg.Uid)
	}

	text, err := extractTextPart(body)
	if err != nil {
		return out, err
	}
	out.Body = text

	return out, nil
}

// extractTextPart достаёт первую text/plain часть MIME дерева,
// либо любую текстовую часть, если plain не нашлось.
func extractTextPart(r io.Reader) (string, error) {
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("imap: разбор MIME: %w", err)
	}

	var fallback string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("imap: чтение части письма: %w", err)
		}

		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		if contentType == "text/plain" {
			return string(data), nil
		}
		if fallback == "" && strings.HasPrefix(contentType, "text/") {
			fallback = string(data)
		}
	}

	if fallback == "" {
		return "", fmt.Errorf("imap: текстовая часть не найдена")
	}
	return fallback, nil
}

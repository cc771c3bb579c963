package mail

import "context"

// Message — входящее письмо в том виде, в каком его видит конвейер.
type Message struct {
	UID     uint32
	Subject string
	From    string
	Body    string
}

// Transport — открытое соединение с почтовым ящиком.
// Ящик — удалённый ресурс с состоянием: он может быть недоступен, а
// пометка "прочитано" — единственная доступная форма подтверждения.
type Transport interface {
	// ListUnseen возвращает непрочитанные письма из INBOX.
	ListUnseen(ctx context.Context) ([]Message, error)
	// MarkSeen помечает письмо прочитанным (консумированным).
	MarkSeen(ctx context.Context, uid uint32) error
	// Close закрывает соединение.
	Close() error
}

// Dialer открывает соединение с почтовым ящиком на один цикл опроса.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}

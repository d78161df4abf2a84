package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

const DefaultNoticeLimit = 50

// Notice is a message for the cook, shown as a transient toast.
type Notice struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NoticeLog keeps the most recent notices for the UI to poll.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
	limit   int
	logger  aqm.Logger
	now     func() time.Time
}

func NewNoticeLog(limit int, logger aqm.Logger) *NoticeLog {
	if limit <= 0 {
		limit = DefaultNoticeLimit
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &NoticeLog{limit: limit, logger: logger, now: time.Now}
}

func (l *NoticeLog) Notify(ctx context.Context, n Notice) {
	if n.At.IsZero() {
		n.At = l.now()
	}

	switch n.Level {
	case LevelDanger:
		l.logger.Error("dashboard notice", "title", n.Title, "message", n.Message)
	case LevelWarning:
		l.logger.Info("dashboard notice", "level", string(n.Level), "title", n.Title, "message", n.Message)
	default:
		l.logger.Debug("dashboard notice", "title", n.Title, "message", n.Message)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
	if over := len(l.notices) - l.limit; over > 0 {
		l.notices = append([]Notice(nil), l.notices[over:]...)
	}
}

// Recent returns the kept notices, oldest first.
func (l *NoticeLog) Recent() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notice, len(l.notices))
	copy(out, l.notices)
	return out
}

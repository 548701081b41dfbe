package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"screener-engine/internal/domain"
)

// PushSender delivers push notifications to device tokens.
type PushSender interface {
	IsEnabled() bool
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// Notifier pushes high scoring records to registered devices, at most once
// per symbol per cooldown.
type Notifier struct {
	sender   PushSender
	tokens   domain.TokenRepository
	minScore float64
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	notified map[string]time.Time
	mu       sync.Mutex
}

func NewNotifier(sender PushSender, tokens domain.TokenRepository, minScore float64, cooldown time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		tokens:   tokens,
		minScore: minScore,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
		notified: make(map[string]time.Time),
	}
}

// Notify sends one notification per qualifying record and returns how many
// were delivered.
func (n *Notifier) Notify(ctx context.Context, records []domain.AnalysisRecord) int {
	if n.sender == nil || !n.sender.IsEnabled() {
		return 0
	}
	tokens := n.tokens.GetAll()
	if len(tokens) == 0 {
		return 0
	}

	now := n.now()
	sent := 0
	for _, rec := range records {
		if rec.Score < n.minScore || rec.Simulated {
			continue
		}
		if !n.claim(rec.Symbol, now) {
			continue
		}

		title, body, data := notificationFor(rec)
		if err := n.sender.SendMulticast(ctx, tokens, title, body, data); err != nil {
			n.logger.Error("send notification", "symbol", rec.Symbol, "error", err)
			n.release(rec.Symbol)
			continue
		}
		n.logger.Info("notification sent", "symbol", rec.Symbol, "devices", len(tokens))
		sent++
	}

	n.cleanup(now)
	return sent
}

// claim reserves the symbol for this cooldown window.
func (n *Notifier) claim(symbol string, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if last, ok := n.notified[symbol]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.notified[symbol] = now
	return true
}

func (n *Notifier) release(symbol string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.notified, symbol)
}

func (n *Notifier) cleanup(now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for symbol, ts := range n.notified {
		if now.Sub(ts) > n.cooldown*2 {
			delete(n.notified, symbol)
		}
	}
}

func notificationFor(rec domain.AnalysisRecord) (string, string, map[string]string) {
	title := fmt.Sprintf("%s %s - score %.0f", domain.BaseAsset(rec.Symbol), rec.Status, rec.Score)
	body := fmt.Sprintf("Price: $%.6g | 24h: %.2f%% | Confidence: %.0f%%",
		rec.Snapshot.Price, rec.Snapshot.Change24h, rec.Confidence)
	if rec.Plan != nil {
		body += fmt.Sprintf(" | Stop: $%.6g", rec.Plan.StopLoss)
	}

	data := map[string]string{
		"type":   "ranking",
		"symbol": rec.Symbol,
		"score":  fmt.Sprintf("%.2f", rec.Score),
		"price":  fmt.Sprintf("%g", rec.Snapshot.Price),
		"status": rec.Status,
	}
	return title, body, data
}

package livepush

import (
	"context"
	"time"

	"cc-live/internal/livepush/platforms"

	"github.com/rs/zerolog/log"
)

type panelForgetter interface {
	ForgetPanel(endpoint, panelKey string)
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			metricPushQueueLen.Set(int64(len(m.dispatchCh)))
			m.deliver(ctx, job)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, job pushJob) {
	adapter := m.adapters[job.Target.Platform]
	if adapter == nil {
		metricPushDroppedTotal.Add(1)
		return
	}
	key := job.key()
	now := m.clock.Now()

	if till, benched := m.health.benched(key, now); benched {
		metricPushCircuitOpenTotal.Add(1)
		m.reschedule(job, till.Sub(now), "target cooling down")
		return
	}

	if err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, toPlatformMessage(job.Formatted)); err != nil {
		metricPushFailedTotal.Add(1)
		if m.health.failed(key, m.clock.Now()) {
			log.Warn().Str("platform", job.Target.Platform).Dur("cooldown", m.cfg.CircuitOpenDuration).Msg("live push target benched")
		}
		m.reschedule(job, 0, err.Error())
		return
	}

	metricPushSentTotal.Add(1)
	m.health.delivered(key)
	if job.Final && job.Formatted.PanelKey != "" {
		if f, ok := adapter.(panelForgetter); ok {
			f.ForgetPanel(job.Target.Endpoint, job.Formatted.PanelKey)
		}
	}
}

// retryBudget is how many extra attempts a job gets. An interim scoreboard
// gets at most one.
func (m *Manager) retryBudget(job pushJob) int {
	if job.Kind == NoticeScoreboard && !job.Final && m.cfg.RetryMax > 1 {
		return 1
	}
	return m.cfg.RetryMax
}

// reschedule queues job again after the larger of its backoff and minDelay,
// or drops it once its budget is spent.
func (m *Manager) reschedule(job pushJob, minDelay time.Duration, cause string) {
	if job.Attempt >= m.retryBudget(job) {
		metricPushRetryDroppedTotal.Add(1)
		m.logDrop(job, cause)
		return
	}
	job.Attempt++
	delay := m.cfg.RetryBase << (job.Attempt - 1)
	if delay < minDelay {
		delay = minDelay
	}
	metricPushRetryTotal.Add(1)
	m.retryQ.Enqueue(job, delay)
}

// logDrop reports a job that will not be delivered. A lost final scoreboard
// logs at error level.
func (m *Manager) logDrop(job pushJob, cause string) {
	ev := log.Warn()
	if job.Kind == NoticeScoreboard && job.Final {
		ev = log.Error()
	}
	ev = ev.Str("platform", job.Target.Platform).Str("notice", string(job.Kind))
	if job.GameID != "" {
		ev = ev.Str("game_id", job.GameID)
	}
	ev.Int("attempts", job.Attempt+1).Str("cause", cause).Msg("live push dropped")
}

func toPlatformMessage(msg FormattedMessage) platforms.Message {
	fields := make([]platforms.Field, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return platforms.Message{
		PanelKey:    msg.PanelKey,
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
		Fields:      fields,
	}
}

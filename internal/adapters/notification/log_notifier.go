package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/core/domain"
	"github.com/lifeblock/activity-engine/internal/observability"
)

var _ domain.MilestoneSink = (*LogNotifier)(nil)

// LogNotifier records milestone events in the log. Actual user-facing delivery
// belongs to the host application's notification service; this sink exists so
// the engine always has somewhere to emit.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, event domain.MilestoneEvent) {
	observability.RecordMilestoneEvent()

	n.log.WithField("streak", event.Streak).
		WithField("day", event.Day.Format(domain.DayFormat)).
		Info("streak milestone reached")
}

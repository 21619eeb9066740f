package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"evamed-backend/utilities"
)

const auditTimeout = 10 * time.Second

// SubscribeCompletionAudit logs the verdict of every evaluation that
// completes. The result is recomputed from storage when the event arrives.
func SubscribeCompletionAudit(bus *utilities.EventBus, results ResultService) {
	bus.Subscribe(EventEvaluationCompleted, func(data interface{}) {
		ev, ok := data.(EvaluationCompleted)
		if !ok {
			utilities.Warn("unexpected %s payload %T", EventEvaluationCompleted, data)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		res, err := results.Get(ctx, ev.Token)
		if err != nil {
			utilities.L().Error("cannot score completed evaluation", zap.String("token", ev.Token), zap.Error(err))
			return
		}
		fields := []zap.Field{
			zap.String("token", ev.Token),
			zap.String("profile", ev.Profile),
			zap.Float64("overall_pct", res.OverallPct),
			zap.String("verdict", res.Verdict),
			zap.Time("completed_at", ev.CompletedAt),
		}
		for _, a := range res.Areas {
			fields = append(fields, zap.Float64("area."+a.Key, a.Pct))
		}
		utilities.L().Info("evaluation verdict", fields...)
	})
}

package notify

import (
	"github.com/rateworks/critica/pkg/logger"
	"go.uber.org/zap"
)

// LogNotifier writes messages to the application log instead of sending
// them. Used in development, where the confirmation code is read straight
// from the log output.
type LogNotifier struct{}

func (LogNotifier) Send(recipient, subject, body string) error {
	logger.Log.Info("Outbound notification (log only)",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

package app

import (
	"log/slog"

	hook "github.com/robotn/gohook"
)

// listenHotkeys registers the F9 start/stop toggle and pumps the global
// hook until the process exits. Toggle presses are dropped, not queued,
// when one is already pending.
func listenHotkeys(logger *slog.Logger, toggle chan<- struct{}) {
	hook.Register(hook.KeyDown, []string{"f9"}, func(e hook.Event) {
		select {
		case toggle <- struct{}{}:
			logger.Info("f9 pressed")
		default:
		}
	})
	logger.Info("hotkeys registered, press f9 to start or stop")
	chain := hook.Start()
	defer hook.End()
	<-hook.Process(chain)
}

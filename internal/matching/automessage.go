package matching

import (
	"context"
	"strings"

	"github.com/oggyb/muzz-matching/internal/db"
)

// triggerAutoMessage sends the sender's configured opener to the new match.
// A blank or disabled template sends nothing, and an opener identical to the
// last message in that direction is not repeated.
func (e *Engine) triggerAutoMessage(ctx context.Context, sender, receiver *db.User) {
	if e.messages == nil {
		return
	}
	e.dispatch.Go(ctx, "auto_message", func(ctx context.Context) error {
		prefs, err := e.prefs.Get(ctx, sender.ID)
		if err != nil {
			return err
		}
		content := strings.TrimSpace(prefs.AutoMessageTemplate)
		if !prefs.AutoMessageEnabled || content == "" {
			return nil
		}

		last, err := e.messages.LatestFrom(ctx, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		if last != nil && last.Content == content {
			return nil
		}
		return e.messages.Send(ctx, sender.ID, receiver.ID, content)
	})
}

// internal/cli/app.go
package cli

import (
	"log/slog"

	"safari-connect/internal/config"
	"safari-connect/internal/inventory"
	"safari-connect/internal/notify"
	"safari-connect/internal/responder"
)

func loadCatalog(path string) (*responder.Catalog, error) {
	if path == "" {
		return responder.DefaultCatalog()
	}
	return responder.LoadCatalog(path)
}

// buildResponder loads the configured catalog and wires it into a responder.
func buildResponder(cfg *config.Config) (*responder.Responder, error) {
	catalog, err := loadCatalog(cfg.Chat.RepliesFile)
	if err != nil {
		return nil, err
	}
	return responderBuilder(cfg)(catalog)
}

// responderBuilder applies contact details, the typing delay and, when
// enabled, the local model. The model is given the rule-based template as
// context.
func responderBuilder(cfg *config.Config) responder.BuildFunc {
	return func(catalog *responder.Catalog) (*responder.Responder, error) {
		opts := []responder.Option{
			responder.WithTypingDelay(cfg.Chat.TypingDelayMin, cfg.Chat.TypingDelayMax),
		}
		if cfg.Chat.LLM.Enabled {
			base, err := responder.New(catalog, cfg.Contact)
			if err != nil {
				return nil, err
			}
			client := responder.NewOllamaClient(cfg.Chat.LLM.URL, cfg.Chat.LLM.Model, cfg.Chat.LLM.Timeout, base.Render)
			opts = append(opts, responder.WithOverride(client))
			slog.Debug("model replies enabled", "url", cfg.Chat.LLM.URL, "model", cfg.Chat.LLM.Model)
		}
		return responder.New(catalog, cfg.Contact, opts...)
	}
}

func buildSimulator(cfg *config.Config) (*inventory.Simulator, error) {
	loc, err := cfg.Inventory.Location()
	if err != nil {
		return nil, err
	}
	return inventory.NewSimulator(
		inventory.WithLocation(loc),
		inventory.WithDecrementProbability(cfg.Inventory.DecrementProbability),
	), nil
}

// buildNotifiers always includes the log channel. Telegram and Discord are
// added when their credentials are configured.
func buildNotifiers(cfg *config.Config) ([]notify.Notifier, error) {
	notifiers := []notify.Notifier{notify.NewLogNotifier(slog.Default())}
	if cfg.Notify.Telegram.Enabled() {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}
	if cfg.Notify.Discord.Enabled() {
		dc, err := notify.NewDiscordNotifier(cfg.Notify.Discord.Token, cfg.Notify.Discord.ChannelID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, dc)
	}
	return notifiers, nil
}

package commands

import (
	log "github.com/sirupsen/logrus"
)

// CommandStart confirms the bot is alive and explains what it does.
func CommandStart() string {
	log.Debug("processing command /start")

	return "✅ *The bot is up and watching its sources*\n" +
		"📊 New price lists are adjusted and republished automatically"
}

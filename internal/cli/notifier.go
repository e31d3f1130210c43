package cli

import log "github.com/sirupsen/logrus"

// logNotifier reports panel outcomes through logrus in headless mode.
type logNotifier struct {
	log *log.Logger
}

func (n logNotifier) Success(title, message string) {
	n.log.WithField("title", title).Info(message)
}

func (n logNotifier) Error(title, message string) {
	n.log.WithField("title", title).Error(message)
}

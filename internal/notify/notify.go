// Package notify sends best-effort desktop notifications.
package notify

import "github.com/sirupsen/logrus"

// Send shows a desktop notification. Fire-and-forget: failures are only
// visible at debug level and never affect the caller.
func Send(log *logrus.Entry, title, body string) {
	if err := send(title, body); err != nil {
		log.WithError(err).Debug("desktop notification failed")
	}
}

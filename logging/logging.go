// Package logging centralizes the scoped-entry idiom the teacher uses
// for structured logging (auth.AuditLog's logrus.Fields{...} records),
// so every package gets its diagnostics tagged with a "component" field
// rather than free-floating logrus calls.
package logging

import "github.com/sirupsen/logrus"

// New returns a logrus entry scoped to component, logging at Info level
// by default. Callers add further fields with WithFields as needed.
func New(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

package logger

import (
	"github.com/satishbabariya/sphinxql-go/pkg/client"
)

type clientLogger struct {
	log Logger
}

// ForClient adapts l to the client.Logger interface.
func ForClient(l Logger) client.Logger {
	return &clientLogger{log: l}
}

func (c *clientLogger) Debug(msg string, fields ...client.Field) { c.log.Debug(msg, convert(fields)...) }
func (c *clientLogger) Info(msg string, fields ...client.Field)  { c.log.Info(msg, convert(fields)...) }
func (c *clientLogger) Warn(msg string, fields ...client.Field)  { c.log.Warn(msg, convert(fields)...) }
func (c *clientLogger) Error(msg string, fields ...client.Field) { c.log.Error(msg, convert(fields)...) }

func convert(fields []client.Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, Error(err))
			continue
		}
		out = append(out, Any(f.Key, f.Value))
	}
	return out
}

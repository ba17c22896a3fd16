package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logger writing to out. Unknown levels fall back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

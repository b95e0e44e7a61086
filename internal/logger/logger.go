package logger

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Newはアプリ共通のロガー（JSON出力）
func New(level string) *log.Logger {
	return newWithOutput(level, os.Stdout)
}

func newWithOutput(level string, out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)
	l.SetFormatter(&log.JSONFormatter{})

	lv, err := log.ParseLevel(level)
	if err != nil {
		lv = log.InfoLevel
	}
	l.SetLevel(lv)
	return l
}

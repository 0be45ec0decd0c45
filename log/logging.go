// SPDX-License-Identifier: GPL-3.0-or-later
package log

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   map[string]*logrus.Logger
	loggersMu sync.Mutex
)

func NewPrefixLogger(prefix string) *PrefixLogger {
	stringPrefix := fmt.Sprintf("%s:\t", prefix)

	formatter := &logrus.TextFormatter{}
	formatter.FullTimestamp = true
	formatter.TimestampFormat = "15:04:05"
	formatter.DisableColors = strings.Contains(runtime.GOOS, "windows")
	return &PrefixLogger{
		formatter,
		[]byte(stringPrefix),
	}
}

type PrefixLogger struct {
	formatter logrus.Formatter
	prefix    []byte
}

func (f *PrefixLogger) Format(entry *logrus.Entry) ([]byte, error) {
	text, err := f.formatter.Format(entry)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, f.prefix...), text...), nil
}

const (
	LOG_MAIN       = "MA"
	LOG_CLASSIFIER = "CL"
	LOG_STORE      = "ST"
	LOG_TRAINER    = "TR"
	LOG_EVALUATION = "EV"
	LOG_IMAP       = "IM"
)

var prefixes = []string{
	LOG_MAIN,
	LOG_CLASSIFIER,
	LOG_STORE,
	LOG_TRAINER,
	LOG_EVALUATION,
	LOG_IMAP,
}

func getLevel(loglevel string) logrus.Level {
	switch strings.ToLower(loglevel) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "panic":
		return logrus.PanicLevel
	case "fatal":
		return logrus.FatalLevel
	}

	// Info is default
	return logrus.InfoLevel
}

func newLogger(prefix, loglevel string) *logrus.Logger {
	l := logrus.New()
	l.Level = getLevel(loglevel)
	l.Formatter = NewPrefixLogger(prefix)
	return l
}

func InitLogging(loglevel string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Logger)
	for _, prefix := range prefixes {
		loggers[prefix] = newLogger(prefix, loglevel)
	}
}

func SetLogLevel(loglevel string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, v := range loggers {
		v.Level = getLevel(loglevel)
	}
}

// Logger returns the logger registered for prefix. Logging is initialised at
// info level if InitLogging has not been called yet, which keeps library use
// and tests free of setup boilerplate.
func Logger(logger string) *logrus.Logger {
	loggersMu.Lock()
	if loggers == nil {
		loggers = make(map[string]*logrus.Logger)
		for _, prefix := range prefixes {
			loggers[prefix] = newLogger(prefix, "info")
		}
	}
	l, ok := loggers[logger]
	loggersMu.Unlock()

	if !ok {
		panic("Logger " + logger + " unknown")
	}

	return l
}

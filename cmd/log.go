package cmd

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// cliFormatter renders entries as single "prefix: message key=value" lines,
// the way a command line tool reports to a terminal.
type cliFormatter struct{}

func (f *cliFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	b.WriteString(levelPrefix(entry.Level))
	b.WriteString(": ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelPrefix(level logrus.Level) string {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "error"
	case logrus.WarnLevel:
		return "note"
	case logrus.InfoLevel:
		return "info"
	default:
		return "debug"
	}
}

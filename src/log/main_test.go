package log

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/op/go-logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, LogrusLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, LogrusLevel("warning"))
	assert.Equal(t, logrus.WarnLevel, LogrusLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, LogrusLevel("error"))
	assert.Equal(t, logrus.FatalLevel, LogrusLevel("fatal"))
	assert.Equal(t, logrus.InfoLevel, LogrusLevel(""))
	assert.Equal(t, logrus.InfoLevel, LogrusLevel("verbose"))
}

func TestGoLoggingLevel(t *testing.T) {
	assert.Equal(t, logging.DEBUG, goLoggingLevel("debug"))
	assert.Equal(t, logging.CRITICAL, goLoggingLevel("fatal"))
	assert.Equal(t, logging.INFO, goLoggingLevel("info"))
}

func TestLocalTimeZoneFormatter(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	formatter := LocalTimeZoneFormatter{
		Timezone:  loc,
		Formatter: &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
	}

	entry := logrus.NewEntry(logrus.New())
	entry.Time = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry.Message = "relay started"

	out, err := formatter.Format(entry)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &fields))
	assert.Equal(t, "2024-03-01T12:00:00+02:00", fields["time"])
	assert.Equal(t, "relay started", fields["msg"])
}

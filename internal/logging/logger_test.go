package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fivetwenty-io/aap-client/internal/logging"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "info")
	logger.Info("HTTP Request", map[string]interface{}{"plugin": "backstage-rhaap", "method": "GET"})

	var line map[string]interface{}

	err := json.Unmarshal(buf.Bytes(), &line)
	require.NoError(t, err)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "HTTP Request", line["message"])
	assert.Equal(t, "backstage-rhaap", line["plugin"])
	assert.Equal(t, "GET", line["method"])
	assert.Contains(t, line, "time")
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "warn")
	logger.Debug("debug", nil)
	logger.Info("info", nil)
	assert.Empty(t, buf.String())

	logger.Warn("warn", nil)
	logger.Error("error", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestLogger_Legacy(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewLegacy(&buf, "debug")
	logger.Error("HTTP Request Failed", map[string]interface{}{"plugin": "backstage-rhaap"})

	output := buf.String()
	assert.Contains(t, output, "ERR")
	assert.Contains(t, output, "HTTP Request Failed")
	assert.Contains(t, output, "plugin=backstage-rhaap")
}

func TestLogger_MultiLogger(t *testing.T) {
	t.Parallel()

	var structured, legacy bytes.Buffer

	logger := aap.NewMultiLogger(logging.New(&structured, "info"), nil, logging.NewLegacy(&legacy, "info"))
	logger.Info("Project created", map[string]interface{}{"id": 7})

	assert.Len(t, logger, 2)
	assert.Contains(t, structured.String(), `"id":7`)
	assert.Contains(t, legacy.String(), "id=7")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, logging.ParseLevel(testCase.input))
		})
	}
}

package app

import (
	"bytes"
	"testing"

	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	buf.Reset()
	logger = NewLogger("loud", &buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

func TestNew_MemoryStore(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		Tracker: config.TrackerConfig{
			WeeklyTarget:      6,
			FollowUpAfterDays: 3,
			RecentWeeks:       12,
			Timezone:          "Africa/Addis_Ababa",
		},
	}
	logger := NewLogger("error", &bytes.Buffer{})

	application, err := New(cfg, logger, nil)
	require.NoError(t, err)
	defer application.Close()

	assert.Nil(t, application.DB)
	assert.NoError(t, application.Ping())
	assert.Len(t, application.Tracker.RecentWeeks(0), 12)
}

func TestNew_BadStore(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverPostgres}}
	_, err := New(cfg, NewLogger("error", &bytes.Buffer{}), nil)
	assert.Error(t, err)
}

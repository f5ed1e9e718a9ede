package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("CORS_ORIGINS", "https://hr.example.com, https://admin.example.com,")
	t.Setenv("SWEEP_INTERVAL_MINUTES", "15")
	t.Setenv("APP_URL", "https://hr.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Sweep.ReminderAfter)
	assert.Equal(t, "https://hr.example.com", cfg.App.URL)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
	assert.False(t, cfg.Email.Enabled())
	assert.False(t, cfg.Push.Enabled())
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "eighty")
	_, err := Load()
	assert.Error(t, err)
}

func TestDefaultPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)

	assert.Equal(t, 570, p.StartMinutes())
	assert.Equal(t, 540, p.ScheduledMinutes())
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, p.WeekendDays())

	casual, ok := p.LeaveType("casual")
	require.True(t, ok)
	assert.Equal(t, 12.0, casual.AnnualQuota)

	_, ok = p.LeaveType("sabbatical")
	assert.False(t, ok)
}

func TestPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workday: {start: "10:00", end: "19:00", late_grace_minutes: 0, half_day_minutes: 200}
weekends: [friday]
leave_types: [{code: annual, name: Annual, annual_quota: 21}]
permission: {max_minutes: 60, max_per_month: 4}
overtime: {max_hours_per_day: 4}
`), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Friday}, p.WeekendDays())
	assert.Equal(t, 4, p.Permission.MaxPerMonth)
}

func TestPolicyValidation(t *testing.T) {
	cases := map[string]string{
		"end before start": `
workday: {start: "18:00", end: "09:00"}
leave_types: [{code: a}]
permission: {max_minutes: 1, max_per_month: 1}
overtime: {max_hours_per_day: 1}`,
		"bad weekday": `
workday: {start: "09:00", end: "18:00"}
weekends: [caturday]
leave_types: [{code: a}]
permission: {max_minutes: 1, max_per_month: 1}
overtime: {max_hours_per_day: 1}`,
		"duplicate leave type": `
workday: {start: "09:00", end: "18:00"}
leave_types: [{code: a}, {code: a}]
permission: {max_minutes: 1, max_per_month: 1}
overtime: {max_hours_per_day: 1}`,
		"no leave types": `
workday: {start: "09:00", end: "18:00"}
permission: {max_minutes: 1, max_per_month: 1}
overtime: {max_hours_per_day: 1}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(doc))
			assert.Error(t, err)
		})
	}
}

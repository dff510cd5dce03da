package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_defaults(t *testing.T) {
	conf := NewConfig()

	assert.Equal(t, "Dnevnik", conf.AppName)
	assert.Equal(t, 24*time.Hour, conf.SessionDuration)
	assert.Equal(t, 4*time.Second, conf.DefaultToastDuration)
	assert.Equal(t, "teacher2026", conf.TeacherPassword)
	assert.Equal(t, "admin2026", conf.AdminPassword)
	assert.Equal(t, "inmem", conf.Remote.Backend)
	assert.Equal(t, "college-diplomas", conf.Remote.BasePath)
	assert.Equal(t, "localhost:5432", conf.Remote.Database.Address())
	assert.NotEmpty(t, conf.LocalStatePath)
}

func TestNewConfig_envOverride(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("TEST_TEACHERPASSWORD", "other-pass")
	t.Setenv("TEST_REMOTEBACKEND", "redis")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.Equal(t, "other-pass", conf.TeacherPassword)
	assert.Equal(t, "redis", conf.Remote.Backend)
	assert.Equal(t, "admin2026", conf.AdminPassword)
}

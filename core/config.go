package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName string
		Debug   bool
		Env     string
		Build   string

		SessionDuration      time.Duration
		DefaultToastDuration time.Duration

		// static credential table for the two privileged roles
		TeacherPassword string
		AdminPassword   string

		// path of the JSON file holding persisted client state
		// (session record, theme, navigation)
		LocalStatePath string

		RollbarToken string

		Remote RemoteConfig
	}

	// RemoteConfig selects and configures the shared remote store backend.
	RemoteConfig struct {
		Backend  string // "inmem" | "redis" | "postgres"
		BasePath string // project prefix within the shared database
		Redis    RedisConfig
		Database DatabaseConfig
	}

	RedisConfig struct {
		Addr string
	}

	DatabaseConfig struct {
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Dnevnik")
	conf.SetDefault("sessionDuration", 24*time.Hour)
	conf.SetDefault("defaultToastDuration", 4*time.Second)
	conf.SetDefault("teacherPassword", "teacher2026")
	conf.SetDefault("adminPassword", "admin2026")
	conf.SetDefault("localStatePath", filepath.Join(".", ".dnevnik", "state.json"))
	conf.SetDefault("remoteBackend", "inmem")
	conf.SetDefault("remoteBasePath", "college-diplomas")
	conf.SetDefault("redisAddr", "localhost:6379")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbName", "dnevnik")
	conf.SetDefault("dbUser", "")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbDisableTLS", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:              conf.GetString("appName"),
		Debug:                conf.GetBool("debug"),
		Env:                  env,
		Build:                conf.GetString("build"),
		SessionDuration:      conf.GetDuration("sessionDuration"),
		DefaultToastDuration: conf.GetDuration("defaultToastDuration"),
		TeacherPassword:      conf.GetString("teacherPassword"),
		AdminPassword:        conf.GetString("adminPassword"),
		LocalStatePath:       conf.GetString("localStatePath"),
		RollbarToken:         conf.GetString("rollbarToken"),
		Remote: RemoteConfig{
			Backend:  conf.GetString("remoteBackend"),
			BasePath: conf.GetString("remoteBasePath"),
			Redis: RedisConfig{
				Addr: conf.GetString("redisAddr"),
			},
			Database: DatabaseConfig{
				Host:       conf.GetString("dbHost"),
				Port:       conf.GetString("dbPort"),
				Name:       conf.GetString("dbName"),
				User:       conf.GetString("dbUser"),
				Password:   conf.GetString("dbPassword"),
				DisableTLS: conf.GetBool("dbDisableTLS"),
			},
		},
	}
}

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name    string
	Version string
	Env     string
	HTTP    HTTP
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret             string
	Issuer             string
	AccessTokenTTLMin  int
	RefreshTokenTTLDay int
}

type TwoFactor struct {
	Issuer string
}

type Cookie struct {
	Domain string
	Secure bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	TwoFactor TwoFactor `mapstructure:"twofactor"`
	Cookie    Cookie
	DB        DB
	Redis     Redis `mapstructure:"redis"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.JWT.AccessTokenTTLMin <= 0 {
		c.JWT.AccessTokenTTLMin = 15
	}
	if c.JWT.RefreshTokenTTLDay <= 0 {
		c.JWT.RefreshTokenTTLDay = 30
	}
	if c.TwoFactor.Issuer == "" {
		c.TwoFactor.Issuer = c.App.Name
	}
	if c.App.Version == "" {
		c.App.Version = "dev"
	}
}

package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = "../../.env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultFreeMaxScripts = 5
)

type Config struct {
	Env    string
	DB     db
	Redis  redis
	Server server
	Logger logger
	Quota  quota
}

type defaultConfig struct {
	RunAddress     string
	DatabaseURI    string
	RedisURL       string
	LogLevel       string
	Env            string
	Migrations     string
	FreeMaxScripts int
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type redis struct {
	URL string `env:"REDIS_URL"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type quota struct {
	FreeMaxScripts int `env:"FREE_MAX_SCRIPTS"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("free_max_scripts", defaultFreeMaxScripts)
	d := defaultConfig{
		RunAddress:     viper.GetString("run_address"),
		DatabaseURI:    viper.GetString("database_uri"),
		RedisURL:       viper.GetString("redis_url"),
		LogLevel:       viper.GetString("log_level"),
		Env:            viper.GetString("app_env"),
		Migrations:     viper.GetString("migrations_path"),
		FreeMaxScripts: viper.GetInt("free_max_scripts"),
	}

	config := Config{
		Env: d.Env,
		DB: db{
			DatabaseURI: d.DatabaseURI,
			Migrations:  d.Migrations,
		},
		Redis:  redis{URL: d.RedisURL},
		Server: server{RunAddress: d.RunAddress},
		Logger: logger{LogLevel: d.LogLevel},
		Quota:  quota{FreeMaxScripts: d.FreeMaxScripts},
	}

	return &config
}

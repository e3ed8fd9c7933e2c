package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

type RedisConfig struct {
	URI       string `yaml:"REDIS_URI"        env:"REDIS_URI"        env-default:"localhost:6379"`
	Password  string `yaml:"REDIS_PASSWORD"   env:"REDIS_PASSWORD"`
	DB        int    `yaml:"REDIS_DB"         env:"REDIS_DB"         env-default:"0"`
	KeyPrefix string `yaml:"REDIS_KEY_PREFIX" env:"REDIS_KEY_PREFIX" env-default:"farewell:"`
}

type Config struct {
	Port           string        `yaml:"PORT"             env:"PORT"             env-default:"8080"`
	LogLevel       string        `yaml:"LOG_LEVEL"        env:"LOG_LEVEL"        env-default:"info"`
	StoreDriver    string        `yaml:"STORE_DRIVER"     env:"STORE_DRIVER"     env-default:"redis"`
	StoreTimeout   time.Duration `yaml:"STORE_TIMEOUT"    env:"STORE_TIMEOUT"    env-default:"5s"`
	LocalDBPath    string        `yaml:"LOCAL_DB_PATH"    env:"LOCAL_DB_PATH"    env-default:"client.db"`
	AggregatePath  string        `yaml:"AGGREGATE_PATH"   env:"AGGREGATE_PATH"   env-default:"votes"`
	CommentsPath   string        `yaml:"COMMENTS_PATH"    env:"COMMENTS_PATH"    env-default:"comments"`
	AvatarMaxBytes int           `yaml:"AVATAR_MAX_BYTES" env:"AVATAR_MAX_BYTES" env-default:"262144"`
	Redis          RedisConfig   `yaml:"REDIS"`
}

// LoadEnv pulls a .env file into the process environment if there is one.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found, using environment variables")
	}
}

func New() (*Config, error) {
	LoadEnv()

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DBUser     string `yaml:"db_user" env:"PRINTSHOP_DB_USER" env-required:"true"`
	DBPassword string `yaml:"db_password" env:"PRINTSHOP_DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"PRINTSHOP_DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"PRINTSHOP_DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"PRINTSHOP_DB_NAME" env-required:"true"`
	ParseTime  bool   `yaml:"parse_time" env-default:"true"`

	AdminLogin string `yaml:"admin_login" env:"PRINTSHOP_ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"PRINTSHOP_ADMIN_PASS"`

	CORS    CORS    `yaml:"cors"`
	Pricing Pricing `yaml:"pricing"`
	Redis   Redis   `yaml:"redis"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"PRINTSHOP_HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"PRINTSHOP_CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
}

type Pricing struct {
	DefaultMarkup float64 `yaml:"default_markup" env-default:"2.2"`
	SheetMargin   float64 `yaml:"sheet_margin" env-default:"5"`
	SheetGap      float64 `yaml:"sheet_gap" env-default:"2"`
}

// Redis: кэш прайсов. Пустой адрес отключает кэш.
type Redis struct {
	Address  string        `yaml:"address" env:"PRINTSHOP_REDIS_ADDRESS"`
	Password string        `yaml:"password" env:"PRINTSHOP_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"5m"`
}

// DSN: строка подключения для go-sql-driver/mysql.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=%v",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.ParseTime,
	)
}

// Path: путь к конфигу из CONFIG_PATH или локальный по умолчанию.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func MustConfig() *Config {
	cfg, err := Load(Path())
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

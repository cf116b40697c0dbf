package config

type HTTP struct {
	Port               uint32   `env:"HTTP_PORT" envDefault:"5000"`
	CorsAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

package service

type Config struct {
	DatabaseUri             string  `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns        int     `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int     `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int     `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	DatabaseTimeout         int     `envconfig:"DATABASE_TIMEOUT" default:"60"`             // 60 seconds
	SentryDSN               string  `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string  `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte  `envconfig:"JWT_SECRET" required:"true"`
	AdminToken              string  `envconfig:"ADMIN_TOKEN"`
	JWTRefreshTokenExpiry   int     `envconfig:"JWT_REFRESH_EXPIRY" default:"604800"` // in seconds, default 7 days
	JWTAccessTokenExpiry    int     `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"`  // in seconds, default 2 days
	Host                    string  `envconfig:"HOST" default:"localhost:3000"`
	Port                    int     `envconfig:"PORT" default:"3000"`

	// Engine configuration. Rates are in basis points and fixed for the
	// lifetime of the deployment; there is no runtime update path.
	FeeRateBps         int64  `envconfig:"FEE_RATE_BPS" default:"100"`          // 1% platform fee
	PenaltyRateBps     int64  `envconfig:"PENALTY_RATE_BPS" default:"500"`      // 5% late penalty
	GracePeriodSeconds int64  `envconfig:"GRACE_PERIOD_SECONDS" default:"1209600"` // 14 days before an unpaid sold invoice may be defaulted
	PlatformLogin      string `envconfig:"PLATFORM_LOGIN" default:"platform"`

	DefaultRateLimit     int    `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit      int    `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit       int    `envconfig:"BURST_RATE_LIMIT" default:"1"`
	EnablePrometheus     bool   `envconfig:"ENABLE_PROMETHEUS" default:"false"`
	PrometheusPort       int    `envconfig:"PROMETHEUS_PORT" default:"9092"`
	WebhookUrl           string `envconfig:"WEBHOOK_URL"`
	AllowAccountCreation bool   `envconfig:"ALLOW_ACCOUNT_CREATION" default:"true"`
	MinPasswordEntropy   int    `envconfig:"MIN_PASSWORD_ENTROPY" default:"0"`

	RabbitMQUri             string `envconfig:"RABBITMQ_URI"`
	RabbitMQInvoiceExchange string `envconfig:"RABBITMQ_INVOICE_EXCHANGE" default:"factorhub_invoice"`

	Branding BrandingConfig
}

type BrandingConfig struct {
	Title string `envconfig:"BRANDING_TITLE" default:"FactorHub - invoice factoring ledger"`
	Desc  string `envconfig:"BRANDING_DESC" default:"Tokenized invoice factoring between SMEs, investors and clients"`
	Url   string `envconfig:"BRANDING_URL" default:"https://factorhub.example.com"`
}

package config

import (
	"context"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Port        string `env:"PORT,default=8080"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	CORSOrigins string `env:"CORS_ORIGINS,default=http://localhost:5173,http://localhost:5174"`
	CatalogPath string `env:"CATALOG_PATH"`

	CycleInterval   time.Duration `env:"CYCLE_INTERVAL,default=5m"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT,default=15s"`
	FanoutLimit     int           `env:"FANOUT_LIMIT,default=6"`
	AlertTimezone   string        `env:"ALERT_TIMEZONE,default=America/Denver"`

	MemberSportsAPIURL string `env:"MEMBERSPORTS_API_URL,default=https://api.membersports.com/api/v1/golfclubs/onlineBookingTeeTimes"`
	MemberSportsAppURL string `env:"MEMBERSPORTS_APP_URL,default=https://app.membersports.com"`
	MemberSportsAPIKey string `env:"MEMBERSPORTS_API_KEY,default=A9814038-9E19-4683-B171-5A06B39147FC"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`

	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME,default=Tee Time Alerts"`
	OpsEmail          string `env:"OPS_EMAIL"`

	JWTSecret         string        `env:"JWT_SECRET"`
	JWTTTL            time.Duration `env:"JWT_TTL,default=1h"`
	AdminEmail        string        `env:"ADMIN_EMAIL"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Location returns the zone used to decide which alert dates are still due.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AlertTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

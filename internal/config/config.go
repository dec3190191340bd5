package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	BookingTZ       *time.Location
	ProcessingDelay time.Duration
	ConfirmDelay    time.Duration
	RequestTimeout  time.Duration

	Email EmailConfig

	FormsRelayURL string

	LiquidEnabled bool
	LiquidFPS     int
}

type EmailConfig struct {
	Provider       string // resend | sendgrid
	ResendAPIKey   string
	ResendBaseURL  string
	SendGridAPIKey string
	From           string
	NotifyTo       string
	FallbackEmail  string
}

func Load() Config {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read %s: %v", envFile, err)
	}

	port := getenv("PORT", "8080")
	dsn := getenv("DB_DSN", "gasper.db") // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")

	tzName := getenv("BOOKING_TZ", "America/New_York")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("[config] unknown BOOKING_TZ %q, using local time: %v", tzName, err)
		tz = time.Local
	}

	cfg := Config{
		Port:            port,
		DBDSN:           dsn,
		LogFile:         logFile,
		BookingTZ:       tz,
		ProcessingDelay: getduration("PROCESSING_DELAY", 1500*time.Millisecond),
		ConfirmDelay:    getduration("CONFIRM_DELAY", 800*time.Millisecond),
		RequestTimeout:  getduration("REQUEST_TIMEOUT", 30*time.Second),
		Email: EmailConfig{
			Provider:       getenv("EMAIL_PROVIDER", "resend"),
			ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
			ResendBaseURL:  getenv("RESEND_BASE_URL", "https://api.resend.com"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			From:           getenv("EMAIL_FROM", "Gasper <noreply@gasper.app>"),
			NotifyTo:       getenv("WAITLIST_NOTIFY_TO", "team@gasper.app"),
			FallbackEmail:  getenv("FALLBACK_CONTACT_EMAIL", "hello@gasper.app"),
		},
		FormsRelayURL: os.Getenv("FORMS_RELAY_URL"),
		LiquidEnabled: getbool("LIQUID_ENABLED", true),
		LiquidFPS:     getint("LIQUID_FPS", 30),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s BOOKING_TZ=%s EMAIL_PROVIDER=%s LIQUID_FPS=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.BookingTZ, cfg.Email.Provider, cfg.LiquidFPS)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getbool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

// getduration accepts Go durations ("1.5s") or bare milliseconds ("1500").
func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

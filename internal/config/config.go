package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	NLP      NLPConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NLPConfig points at the external inference service used for zero-shot
// classification and sentence embeddings. An empty BaseURL means the
// capability is absent and the keyword fallbacks are wired at startup
// instead; the choice is made once, not re-checked per request.
type NLPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig carries the tunable knobs of the complaint pipeline.
// Pattern and keyword lists are configuration, not logic: they must be
// swappable without a code change.
type PipelineConfig struct {
	MinComplaintLength int
	MaxComplaintLength int
	InvalidPatterns    []string

	Categories     []string
	UrgentKeywords []string

	DuplicateThreshold float64
	DuplicateWindow    time.Duration

	CRSDefaultScore     int
	CRSPenaltyInvalid   int
	CRSPenaltyDuplicate int
	CRSRewardValid      int

	// Per-citizen submission counts that trip the frequency signal.
	FraudHourlyThreshold int
	FraudDailyThreshold  int

	// Hard intake throttle, enforced in redis before the pipeline runs.
	ThrottleLimit  int
	ThrottleWindow time.Duration

	DashboardCacheTTL time.Duration
}

// Complaint categories used for zero-shot classification.
// Order is stable; it is part of the classifier contract.
var defaultCategories = []string{
	"Water supply issues",
	"Health and medical services",
	"Electricity and power problems",
	"Road and infrastructure",
	"Other government services",
}

// Out-of-domain phrases that mark a submission as irrelevant to governance.
var defaultInvalidPatterns = []string{
	"rain not coming", "weather", "cricket", "movie", "food delivery",
	"shopping", "entertainment", "personal relationship", "love",
	"sports", "gaming", "social media", "dating",
}

var defaultUrgentKeywords = []string{
	"urgent", "emergency", "critical", "immediate", "asap",
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")

	c.NLP.BaseURL = strings.TrimSpace(os.Getenv("NLP_BASE_URL"))
	c.NLP.Timeout = mustDuration("NLP_TIMEOUT")

	c.Pipeline.MinComplaintLength = optInt("PIPELINE_MIN_LENGTH")
	c.Pipeline.MaxComplaintLength = optInt("PIPELINE_MAX_LENGTH")
	c.Pipeline.InvalidPatterns = optList("PIPELINE_INVALID_PATTERNS")
	c.Pipeline.Categories = optList("PIPELINE_CATEGORIES")
	c.Pipeline.UrgentKeywords = optList("PIPELINE_URGENT_KEYWORDS")
	c.Pipeline.DuplicateThreshold = optFloat("PIPELINE_DUPLICATE_THRESHOLD")
	c.Pipeline.DuplicateWindow = mustDuration("PIPELINE_DUPLICATE_WINDOW")
	c.Pipeline.CRSDefaultScore = optInt("CRS_DEFAULT_SCORE")
	c.Pipeline.CRSPenaltyInvalid = optInt("CRS_PENALTY_INVALID")
	c.Pipeline.CRSPenaltyDuplicate = optInt("CRS_PENALTY_DUPLICATE")
	c.Pipeline.CRSRewardValid = optInt("CRS_REWARD_VALID")
	c.Pipeline.FraudHourlyThreshold = optInt("FRAUD_HOURLY_THRESHOLD")
	c.Pipeline.FraudDailyThreshold = optInt("FRAUD_DAILY_THRESHOLD")
	c.Pipeline.ThrottleLimit = optInt("THROTTLE_LIMIT")
	c.Pipeline.ThrottleWindow = mustDuration("THROTTLE_WINDOW")
	c.Pipeline.DashboardCacheTTL = mustDuration("DASHBOARD_CACHE_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			// Allowed values are enforced below.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		// Default: short-lived access tokens.
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		// Default: longer-lived refresh tokens.
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.NLP.Timeout <= 0 {
		c.NLP.Timeout = 5 * time.Second
	}

	c.Pipeline = c.Pipeline.withDefaults()
	if c.Pipeline.DuplicateThreshold <= 0 || c.Pipeline.DuplicateThreshold > 1 {
		errs = append(errs, fmt.Errorf("PIPELINE_DUPLICATE_THRESHOLD must be in (0, 1], got %v", c.Pipeline.DuplicateThreshold))
	}
	if c.Pipeline.MinComplaintLength >= c.Pipeline.MaxComplaintLength {
		errs = append(errs, errors.New("PIPELINE_MIN_LENGTH must be less than PIPELINE_MAX_LENGTH"))
	}

	return joinErrors(errs)
}

func (p PipelineConfig) withDefaults() PipelineConfig {
	if p.MinComplaintLength <= 0 {
		p.MinComplaintLength = 10
	}
	if p.MaxComplaintLength <= 0 {
		p.MaxComplaintLength = 1000
	}
	if len(p.InvalidPatterns) == 0 {
		p.InvalidPatterns = defaultInvalidPatterns
	}
	if len(p.Categories) == 0 {
		p.Categories = defaultCategories
	}
	if len(p.UrgentKeywords) == 0 {
		p.UrgentKeywords = defaultUrgentKeywords
	}
	if p.DuplicateThreshold == 0 {
		p.DuplicateThreshold = 0.9
	}
	if p.DuplicateWindow <= 0 {
		p.DuplicateWindow = 30 * 24 * time.Hour
	}
	if p.CRSDefaultScore <= 0 {
		p.CRSDefaultScore = 100
	}
	if p.CRSPenaltyInvalid <= 0 {
		p.CRSPenaltyInvalid = 10
	}
	if p.CRSPenaltyDuplicate <= 0 {
		p.CRSPenaltyDuplicate = 5
	}
	if p.CRSRewardValid <= 0 {
		p.CRSRewardValid = 1
	}
	if p.FraudHourlyThreshold <= 0 {
		p.FraudHourlyThreshold = 10
	}
	if p.FraudDailyThreshold <= 0 {
		p.FraudDailyThreshold = 30
	}
	if p.ThrottleLimit <= 0 {
		p.ThrottleLimit = 20
	}
	if p.ThrottleWindow <= 0 {
		p.ThrottleWindow = time.Hour
	}
	if p.DashboardCacheTTL <= 0 {
		p.DashboardCacheTTL = 10 * time.Second
	}
	return p
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optInt returns 0 for unset or malformed values; defaults fill in later.
func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optFloat(key string) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// optList parses a comma-separated env var into a trimmed list.
func optList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}

package types

import "fmt"

type Config struct {
	Environment      string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort       uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	ReadTimeoutSec   uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec  uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`

	// Supabase project used for Storage and Edge Functions
	SupabaseProjectID string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseAPIKey    string `envconfig:"SUPABASE_API_KEY"`

	// Image bucket. Driver is "supabase" or "s3".
	StorageDriver     string `envconfig:"STORAGE_DRIVER" default:"supabase"`
	StorageBucketName string `envconfig:"STORAGE_BUCKET_NAME" default:"pothole-images"`
	S3Endpoint        string `envconfig:"S3_ENDPOINT"`
	S3PublicBaseURL   string `envconfig:"S3_PUBLIC_BASE_URL"`

	// New report notification
	NotifyEnabled      bool   `envconfig:"NOTIFY_ENABLED" default:"true"`
	NotifyFunctionName string `envconfig:"NOTIFY_FUNCTION_NAME" default:"send-report-email"`
	NotifyTimeoutSec   uint   `envconfig:"NOTIFY_TIMEOUT_SEC" default:"10"`

	// Admin gate
	AdminPassword    string `envconfig:"ADMIN_PASSWORD"`
	AdminTokenKey    string `envconfig:"ADMIN_TOKEN_KEY"` // base64, >= 32 bytes
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"28800"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// "any" or "forward"
	StatusPolicy string `envconfig:"STATUS_POLICY" default:"any"`
	MaxImages    int    `envconfig:"MAX_IMAGES" default:"10"`
	MaxImageMB   int64  `envconfig:"MAX_IMAGE_MB" default:"5"`
	MaxUploadMB  int64  `envconfig:"MAX_UPLOAD_MB" default:"25"`
}

func (c *Config) SupabaseURL() string {
	return fmt.Sprintf("https://%s.supabase.co", c.SupabaseProjectID)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

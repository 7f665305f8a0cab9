package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	XClientID        string
	XClientSecret    string
	XRedirectURI     string
	XAPIBaseURL      string
	PostgresURI      string
	RedisURI         string
	FrontendURL      string
	DispatchInterval string
	R2               R2
	SecretKey        string
	CookieName       string
}

func LoadConfig() *Config {
	return &Config{
		XClientID:        getEnv("X_CLIENT_ID", ""),
		XClientSecret:    getEnv("X_CLIENT_SECRET", ""),
		XRedirectURI:     getEnv("X_REDIRECT_URI", "http://localhost:3000/auth/callback"),
		XAPIBaseURL:      getEnv("X_API_BASE_URL", "https://api.twitter.com"),
		PostgresURI:      getEnv("POSTGRES_URI", ""),
		RedisURI:         getEnv("REDIS_URI", ""),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		DispatchInterval: getEnv("DISPATCH_INTERVAL", "@every 0h1m0s"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "postdeck_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

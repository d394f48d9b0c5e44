package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	RedisAddr     string // セッションカート用Redis（localhost:6379）
	RedisPassword string
	AMQPURL       string // メールキュー用RabbitMQ

	JWTSecret string // JWT署名シークレット

	// SMTP（メールワーカーが使う）
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// PayHere決済ゲートウェイ
	PayhereMerchantID string
	PayhereSecret     string
	PayhereNotifyURL  string
	PayhereReturnURL  string
	PayhereCancelURL  string
	PayhereSandbox    bool

	HubCity string // 配送ハブ都市（Colombo）。ここ宛てだけ市内配送料金。

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSなどで使う）
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := mustAtoi("SMTP_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AMQPURL:       os.Getenv("AMQP_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		PayhereMerchantID: os.Getenv("PAYHERE_MERCHANT_ID"),
		PayhereSecret:     os.Getenv("PAYHERE_SECRET"),
		PayhereNotifyURL:  os.Getenv("PAYHERE_NOTIFY_URL"),
		PayhereReturnURL:  os.Getenv("PAYHERE_RETURN_URL"),
		PayhereCancelURL:  os.Getenv("PAYHERE_CANCEL_URL"),
		PayhereSandbox:    os.Getenv("PAYHERE_SANDBOX") == "true",

		HubCity: os.Getenv("HUB_CITY"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//ハブ都市はデフォルトあり
	if cfg.HubCity == "" {
		cfg.HubCity = "Colombo"
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.AMQPURL == "" {
		return Config{}, fmt.Errorf("AMQP_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PayhereMerchantID == "" {
		return Config{}, fmt.Errorf("PAYHERE_MERCHANT_ID is required")
	}
	if cfg.PayhereSecret == "" {
		return Config{}, fmt.Errorf("PAYHERE_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

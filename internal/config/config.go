package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"app/internal/domain/checkout"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	JWTSecret string // JWT署名シークレット

	GoEnv     string // dev/prod
	APIDomain string // APIドメイン（cookieやCORSなどで使う）
	FEURL     string // フロントURL（CORSなどで使う）

	// 送料の基本額。未指定ならデフォルト（70/120/150）。
	ShippingStandardDhaka   *decimal.Decimal
	ShippingStandardOutside *decimal.Decimal
	ShippingExpress         *decimal.Decimal
}

// ShippingTariff は設定値をマージした料金表を返す。
func (c Config) ShippingTariff() checkout.Tariff {
	t := checkout.DefaultTariff()
	if c.ShippingStandardDhaka != nil {
		t.StandardDhaka = *c.ShippingStandardDhaka
	}
	if c.ShippingStandardOutside != nil {
		t.StandardOutside = *c.ShippingStandardOutside
	}
	if c.ShippingExpress != nil {
		t.Express = *c.ShippingExpress
	}
	return t
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
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

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:     os.Getenv("GO_ENV"),
		APIDomain: os.Getenv("API_DOMAIN"),
		FEURL:     os.Getenv("FE_URL"),
	}

	for _, e := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"SHIPPING_STANDARD_DHAKA", &cfg.ShippingStandardDhaka},
		{"SHIPPING_STANDARD_OUTSIDE", &cfg.ShippingStandardOutside},
		{"SHIPPING_EXPRESS", &cfg.ShippingExpress},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return Config{}, fmt.Errorf("%s must be a non-negative number", e.key)
		}
		*e.dst = &d
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
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.APIDomain == "" {
		return Config{}, fmt.Errorf("API_DOMAIN is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
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

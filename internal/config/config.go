package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort       string
	DBDSN         string
	RedisAddr     string
	JWTSecret     string
	JWTExpiresMin int

	// Payment gateway (callback signature pakai KeySecret).
	PaymentKeyID     string
	PaymentKeySecret string

	// Tarif koin per aksi.
	CoinCostApplication int64
	CoinCostJobPost     int64

	// Referral.
	ReferralRewardCoins  int64
	ReferralRefereeCoins int64
	ReferralMaxRewards   int

	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	return Config{
		AppPort:       get("APP_PORT", "8080"),
		DBDSN:         must("DB_DSN"),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		JWTSecret:     must("JWT_SECRET"),
		JWTExpiresMin: expires,

		PaymentKeyID:     get("PAYMENT_KEY_ID", ""),
		PaymentKeySecret: must("PAYMENT_KEY_SECRET"),

		CoinCostApplication: getInt64("COIN_COST_APPLICATION", "5"),
		CoinCostJobPost:     getInt64("COIN_COST_JOB_POST", "10"),

		ReferralRewardCoins:  getInt64("REFERRAL_REWARD_COINS", "10"),
		ReferralRefereeCoins: getInt64("REFERRAL_REFEREE_COINS", "0"),
		ReferralMaxRewards:   int(getInt64("REFERRAL_MAX_REWARDS", "0")),

		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getInt64(k, def string) int64 {
	n, err := strconv.ParseInt(get(k, def), 10, 64)
	if err != nil {
		panic("invalid int env: " + k)
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

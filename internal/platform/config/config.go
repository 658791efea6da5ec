package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	id "tranchor/pkg/domain"
)

// Config captures everything cmd/server needs to wire the engine.
type Config struct {
	Addr string

	// PostgresURL enables the Postgres store variants when set; the memory
	// variants back everything otherwise.
	PostgresURL string

	// RedisURL enables the caching adapter decorator when set.
	RedisURL        string
	AdapterCacheTTL time.Duration

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	// Custodian holds minted certificates and is the source of redemption
	// batches.
	Custodian id.ParticipantID

	// JWTSigningKey protects admin routes.
	JWTSigningKey string
	// AdminKeyHash is the bcrypt hash of the operator bootstrap key. Admin
	// token exchange is disabled when empty.
	AdminKeyHash string

	Entitlement Entitlement
	Registry    Registry
}

// Entitlement tunes the percent-of-percent computation and the guard
// boundary.
type Entitlement struct {
	// SharePrecision is the decimal precision of the pool-share stage.
	SharePrecision uint
	// CapPrecision is the decimal precision of the final percent-of-amount.
	CapPrecision uint
	// InclusiveBoundary flips the guard from the source-preserved strict
	// comparison (amount must be < allowed) to allowing the full allowed
	// amount. Redemption batches always run inclusive.
	InclusiveBoundary bool
}

// Registry tunes tranche-definition policy.
type Registry struct {
	// EnforceIDExclusivity rejects defining an id under two levels. Off by
	// default: the source allowed shared reward ids across levels.
	EnforceIDExclusivity bool
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("TRANCHOR_ADDR", ":8080"),
		PostgresURL:     os.Getenv("TRANCHOR_POSTGRES_URL"),
		RedisURL:        os.Getenv("TRANCHOR_REDIS_URL"),
		AdapterCacheTTL: envDuration("TRANCHOR_ADAPTER_CACHE_TTL", 30*time.Second),
		AuditTopic:      envOr("TRANCHOR_AUDIT_TOPIC", "tranchor.audit"),
		Custodian:       id.ParticipantID(envOr("TRANCHOR_CUSTODIAN", "custodian")),
		JWTSigningKey:   envOr("TRANCHOR_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminKeyHash:    os.Getenv("TRANCHOR_ADMIN_KEY_HASH"),
		Entitlement: Entitlement{
			SharePrecision:    envUint("TRANCHOR_SHARE_PRECISION", 3),
			CapPrecision:      envUint("TRANCHOR_CAP_PRECISION", 2),
			InclusiveBoundary: os.Getenv("TRANCHOR_INCLUSIVE_BOUNDARY") == "true",
		},
		Registry: Registry{
			EnforceIDExclusivity: os.Getenv("TRANCHOR_ID_EXCLUSIVITY") == "true",
		},
	}

	if brokers := os.Getenv("TRANCHOR_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint) uint {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Every backing service is
// optional: with no Postgres DSN the ledger runs on in-memory stores, with no
// Redis URL relay nonces live in memory, and with no Kafka brokers audit
// events stay in the audit store only.
type Server struct {
	Addr string

	PostgresDSN string
	RedisURL    string

	KafkaBrokers    []string
	KafkaAuditTopic string

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// BootstrapAdmin is granted the Administrator role at startup so the
	// ledger is never deployed without a governing identity.
	BootstrapAdmin string

	// Relay signing domain. Signatures bind to all four values, so two
	// deployments never accept each other's signed calls.
	LedgerName    string
	LedgerVersion string
	ChainID       uint64
	LedgerAddress string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("ECERT_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("ECERT_POSTGRES_DSN"),
		RedisURL:        os.Getenv("ECERT_REDIS_URL"),
		KafkaAuditTopic: envOr("ECERT_KAFKA_AUDIT_TOPIC", "ecert.audit.events"),
		JWTSigningKey:   envOr("ECERT_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("ECERT_JWT_ISSUER", "e-certificate"),
		TokenTTL:        time.Hour,
		BootstrapAdmin:  os.Getenv("ECERT_BOOTSTRAP_ADMIN"),
		LedgerName:      envOr("ECERT_LEDGER_NAME", "e-certificate"),
		LedgerVersion:   envOr("ECERT_LEDGER_VERSION", "1"),
		LedgerAddress:   envOr("ECERT_LEDGER_ADDRESS", "0x0000000000000000000000000000000000000000"),
	}

	if brokers := os.Getenv("ECERT_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if chain := os.Getenv("ECERT_CHAIN_ID"); chain != "" {
		if id, err := strconv.ParseUint(chain, 10, 64); err == nil {
			cfg.ChainID = id
		}
	}
	if ttl := os.Getenv("ECERT_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

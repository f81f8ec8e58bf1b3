package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	RedisURL          string
	SupabaseURL       string // hosted identity provider base URL; empty means local provider
	SupabaseSecretKey string // service_role key for admin user lookups
	AvalancheRPCURL   string // public test network JSON-RPC endpoint for the chain notary
	NotaryEnabled     bool
	NCCRDomains       []string // email domains eligible for the nccr_verifier role
}

const defaultAvalancheRPC = "https://api.avax-test.network/ext/bc/C/rpc"

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	rpc := viper.GetString("AVALANCHE_RPC_URL")
	if rpc == "" {
		rpc = defaultAvalancheRPC
	}

	return &Config{
		Env:               env,
		Port:              port,
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		RedisURL:          viper.GetString("REDIS_URL"),
		SupabaseURL:       viper.GetString("SUPABASE_URL"),
		SupabaseSecretKey: viper.GetString("SUPABASE_SECRET_KEY"),
		AvalancheRPCURL:   rpc,
		NotaryEnabled:     !strings.EqualFold(viper.GetString("NOTARY_DISABLED"), "true"),
		NCCRDomains:       nccrDomains(viper.GetString("NCCR_ALLOWED_DOMAINS")),
	}, nil
}

func nccrDomains(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"nccr.gov.in"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

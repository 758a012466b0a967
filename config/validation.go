package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks that the configuration is usable for the selected backends
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.LLMAPIKey == "" {
		errs = append(errs, ValidationError{"LLM_API_KEY", "required (env, OPENAI_API_KEY or llm_api_key secret)"})
	}
	if cfg.LLMAPIURL == "" {
		errs = append(errs, ValidationError{"LLM_API_URL", "must not be empty"})
	}
	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "must not be empty"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_HOUR", "must not be negative"})
	}

	switch cfg.CookbookStore {
	case CookbookRedis:
		if cfg.CookbookKey == "" {
			errs = append(errs, ValidationError{"COOKBOOK_KEY", "must not be empty"})
		}
	case CookbookDatabase:
		errs = append(errs, validateDatabase(cfg)...)
	case CookbookMemory:
		if cfg.Environment.IsProduction() {
			errs = append(errs, ValidationError{"COOKBOOK_STORE", "memory store is not persistent and not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"COOKBOOK_STORE", fmt.Sprintf("unknown store %q", cfg.CookbookStore)})
	}

	if cfg.NeedsRedis() && cfg.RedisURL == "" && cfg.RedisHost == "" {
		errs = append(errs, ValidationError{"REDIS_HOST", "required when redis is used"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDatabase(cfg *Config) []ValidationError {
	var errs []ValidationError
	switch cfg.DBDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "must not be empty"})
		}
	case "postgres":
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "required for postgres"})
			}
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "required for postgres (env or db_password secret)"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}
	return errs
}

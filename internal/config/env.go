package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE files into the process environment. Missing files
// are skipped; variables already set are never overwritten.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides secrets and deployment knobs from the environment.
// lookup is usually os.LookupEnv.
func (c *APIConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	str("EVAMED_JWT_SECRET", &c.Authentication.AccessSecret)
	str("EVAMED_JWT_REFRESH_SECRET", &c.Authentication.RefreshSecret)
	str("ADMIN_USER", &c.Authentication.BootstrapAdmin.Username)
	str("ADMIN_PASS", &c.Authentication.BootstrapAdmin.Password)

	str("DB_DRIVER", &c.DB.Driver)
	str("DB_PATH", &c.DB.Path)
	str("DB_HOST", &c.DB.Host)
	str("DB_USER", &c.DB.Username)
	str("DB_PASSWORD", &c.DB.Password.Value)
	str("DB_NAME", &c.DB.Names.EVAMED)
	if err := num("DB_PORT", &c.DB.Port); err != nil {
		return err
	}

	if err := num("PORT", &c.Context.Port); err != nil {
		return err
	}
	str("EVAMED_PROFILE", &c.Questionnaire.DefaultProfile)
	str("LOG_LEVEL", &c.Logging.Level)
	return nil
}

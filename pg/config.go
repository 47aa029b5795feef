package pg

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Prefix of the environment variables read by `ConfigFromEnv`.
const EnvPrefix = `SQLQ`

// Environment variables read by `ConfigFromEnv`.
const (
	EnvDSN           = EnvPrefix + `_DSN`
	EnvMaxOpenConns  = EnvPrefix + `_MAX_OPEN_CONNS`
	EnvMaxIdleConns  = EnvPrefix + `_MAX_IDLE_CONNS`
	EnvSlowThreshold = EnvPrefix + `_SLOW_THRESHOLD`
	EnvLogArgs       = EnvPrefix + `_LOG_ARGS`
)

// Viper keys. Each maps to `EnvPrefix + "_" + upper(key)`.
const (
	keyDSN           = `dsn`
	keyMaxOpenConns  = `max_open_conns`
	keyMaxIdleConns  = `max_idle_conns`
	keySlowThreshold = `slow_threshold`
	keyLogArgs       = `log_args`
)

/*
Connection and logging settings for `Open`. Zero values mean driver defaults,
except `SlowThreshold`, where zero means the package default of 100ms. Use a
negative threshold to disable slow query warnings.
*/
type Config struct {
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	SlowThreshold time.Duration
	LogArgs       bool
}

func (self Config) options() []Option {
	var out []Option
	if self.SlowThreshold > 0 {
		out = append(out, WithSlowThreshold(self.SlowThreshold))
	} else if self.SlowThreshold < 0 {
		out = append(out, WithSlowThreshold(0))
	}
	if self.LogArgs {
		out = append(out, WithArgLogging(true))
	}
	return out
}

/*
Reads the configuration from "SQLQ_"-prefixed environment variables. The given
dotenv files are loaded first; missing files are ignored, and variables already
present in the environment take priority over the files. The DSN is required.
Malformed numbers, durations and booleans are errors rather than zero values.
*/
func ConfigFromEnv(files ...string) (Config, error) {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf(`[pg] loading %q: %w`, file, err)
		}
	}

	env := viper.New()
	env.SetEnvPrefix(EnvPrefix)
	env.AutomaticEnv()
	env.SetDefault(keySlowThreshold, defaultSlowThreshold)
	env.SetDefault(keyLogArgs, false)

	var out Config

	out.DSN = env.GetString(keyDSN)
	if out.DSN == `` {
		return Config{}, fmt.Errorf(`[pg] missing environment variable %v`, EnvDSN)
	}

	var err error
	if out.MaxOpenConns, err = cast.ToIntE(env.Get(keyMaxOpenConns)); err != nil {
		return Config{}, envErr(EnvMaxOpenConns, err)
	}
	if out.MaxIdleConns, err = cast.ToIntE(env.Get(keyMaxIdleConns)); err != nil {
		return Config{}, envErr(EnvMaxIdleConns, err)
	}
	if out.SlowThreshold, err = cast.ToDurationE(env.Get(keySlowThreshold)); err != nil {
		return Config{}, envErr(EnvSlowThreshold, err)
	}
	if out.LogArgs, err = cast.ToBoolE(env.Get(keyLogArgs)); err != nil {
		return Config{}, envErr(EnvLogArgs, err)
	}

	return out, nil
}

func envErr(key string, err error) error {
	return fmt.Errorf(`[pg] parsing %v: %w`, key, err)
}

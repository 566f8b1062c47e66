package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Host    string        `env:"TEST_HOST" default:"localhost"`
	Port    int           `env:"TEST_PORT" default:"8080"`
	Enabled bool          `env:"TEST_ENABLED" default:"true"`
	Timeout time.Duration `env:"TEST_TIMEOUT" default:"5s"`
	NoDef   string        `env:"TEST_NO_DEF"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_HOST", "example.com")
	t.Setenv("TEST_PORT", "9090")
	t.Setenv("TEST_ENABLED", "false")
	t.Setenv("TEST_TIMEOUT", "1m30s")
	t.Setenv("TEST_NO_DEF", "foo")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "foo", cfg.NoDef)
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.NoDef)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	t.Setenv("TEST_HOST", "")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_EmptyStringIntError(t *testing.T) {
	t.Setenv("TEST_PORT", "")

	var cfg testConfig
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_PORT", invalid.EnvVar)
	assert.Equal(t, "Port", invalid.Field)
}

func TestLoad_InvalidDefault(t *testing.T) {
	type badDefault struct {
		Retries int `env:"TEST_RETRIES" default:"many"`
	}

	var cfg badDefault
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "many", invalid.Value)
}

func TestLoad_EmbeddedStruct(t *testing.T) {
	type baseConfig struct {
		StorageDSN    string `env:"STORAGE_DSN"`
		StorageDriver string `env:"STORAGE_DRIVER" default:"sqlite"`
	}

	type appConfig struct {
		baseConfig
		AppName string `env:"APP_NAME" default:"ledger"`
	}

	type nestedConfig struct {
		Base    baseConfig
		AppName string `env:"APP_NAME" default:"ledger"`
	}

	t.Run("unexported embedded struct is skipped", func(t *testing.T) {
		t.Setenv("STORAGE_DSN", "postgres://localhost/db")

		var cfg appConfig
		require.NoError(t, Load(&cfg))

		assert.Empty(t, cfg.StorageDSN)
		assert.Equal(t, "ledger", cfg.AppName)
	})

	t.Run("named nested struct is loaded", func(t *testing.T) {
		t.Setenv("STORAGE_DSN", "postgres://localhost/db")

		var cfg nestedConfig
		require.NoError(t, Load(&cfg))

		assert.Equal(t, "postgres://localhost/db", cfg.Base.StorageDSN)
		assert.Equal(t, "sqlite", cfg.Base.StorageDriver)
	})

	t.Run("empty string in nested struct is respected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")

		var cfg nestedConfig
		require.NoError(t, Load(&cfg))

		assert.Equal(t, "", cfg.Base.StorageDriver)
	})
}

type validatedSection struct {
	Name string `env:"TEST_SECTION_NAME"`
}

var errNameRequired = errors.New("name required")

func (v *validatedSection) Validate() error {
	if v.Name == "" {
		return errNameRequired
	}
	return nil
}

func TestLoad_NestedValidator(t *testing.T) {
	type root struct {
		Section validatedSection
	}

	var cfg root
	assert.ErrorIs(t, Load(&cfg), errNameRequired)

	t.Setenv("TEST_SECTION_NAME", "ok")
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "ok", cfg.Section.Name)
}

func TestLoad_NotStructPointer(t *testing.T) {
	var cfg testConfig

	var target ErrNotStructPointer
	require.ErrorAs(t, Load(cfg), &target)
	assert.Equal(t, "env.testConfig", target.Type)
}

func TestLoad_UnsupportedType(t *testing.T) {
	type unsupported struct {
		Ratio float64 `env:"TEST_RATIO" default:"0.5"`
	}

	var cfg unsupported
	err := Load(&cfg)

	var target ErrUnsupportedType
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "float64", target.Kind)
}

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

type prefixedConfig struct {
	DSN         string `env:"DB_DSN"`
	ServiceName string `env:"OTEL_SERVICE_NAME,unprefixed" default:"ledger"`
}

func TestLoad_WithPrefix(t *testing.T) {
	vars := map[string]string{
		"LEDGER_DB_DSN":     "postgres://db/ledger",
		"DB_DSN":            "postgres://wrong/db",
		"OTEL_SERVICE_NAME": "ledger-worker",
	}

	var cfg prefixedConfig
	require.NoError(t, Load(&cfg, WithPrefix("LEDGER_"), WithLookup(mapLookup(vars))))

	assert.Equal(t, "postgres://db/ledger", cfg.DSN)
	assert.Equal(t, "ledger-worker", cfg.ServiceName)
}

func TestLoad_UnprefixedIgnoresPrefixedName(t *testing.T) {
	vars := map[string]string{"LEDGER_OTEL_SERVICE_NAME": "ignored"}

	var cfg prefixedConfig
	require.NoError(t, Load(&cfg, WithPrefix("LEDGER_"), WithLookup(mapLookup(vars))))

	assert.Equal(t, "ledger", cfg.ServiceName)
}

func TestLoad_ErrorNamesPrefixedVariableAndFieldPath(t *testing.T) {
	type database struct {
		MaxOpenConns int `env:"DB_MAX_OPEN_CONNS"`
	}
	type root struct {
		Database database
	}

	vars := map[string]string{"LEDGER_DB_MAX_OPEN_CONNS": "lots"}

	var cfg root
	err := Load(&cfg, WithPrefix("LEDGER_"), WithLookup(mapLookup(vars)))

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "LEDGER_DB_MAX_OPEN_CONNS", invalid.EnvVar)
	assert.Equal(t, "Database.MaxOpenConns", invalid.Field)
	assert.Equal(t, "lots", invalid.Value)
}

func TestLoad_ReportsEveryInvalidValue(t *testing.T) {
	type scheduler struct {
		Interval time.Duration `env:"SCHEDULER_INTERVAL"`
	}
	type root struct {
		Port      int `env:"HTTP_PORT"`
		Scheduler scheduler
	}

	vars := map[string]string{
		"HTTP_PORT":          "eighty",
		"SCHEDULER_INTERVAL": "hourly",
	}

	var cfg root
	err := Load(&cfg, WithLookup(mapLookup(vars)))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "SCHEDULER_INTERVAL")
	assert.Contains(t, err.Error(), "Scheduler.Interval")
}

type countingSection struct {
	Retries   int `env:"TEST_RETRIES"`
	validated int
}

func (c *countingSection) Validate() error {
	c.validated++
	return nil
}

func TestLoad_ValidatorSkippedWhenFieldsInvalid(t *testing.T) {
	var cfg countingSection
	err := Load(&cfg, WithLookup(mapLookup(map[string]string{"TEST_RETRIES": "x"})))

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, cfg.validated)

	require.NoError(t, Load(&cfg, WithLookup(mapLookup(map[string]string{"TEST_RETRIES": "3"}))))
	assert.Equal(t, 1, cfg.validated)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoad_NestedValidatorErrorCarriesPath(t *testing.T) {
	type root struct {
		Section validatedSection
	}

	var cfg root
	err := Load(&cfg, WithLookup(mapLookup(nil)))

	require.ErrorIs(t, err, errNameRequired)
	assert.Contains(t, err.Error(), "Section: name required")
}

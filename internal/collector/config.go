package collector

import (
	"eoscollect/internal/components/telemetry"
	"eoscollect/internal/scrapers/eoscalc"
	"eoscollect/pkg/configutil"
	"time"
)

const DefaultBaseURL = "https://neonatalsepsiscalculator.kaiserpermanente.org/InfectionProbabilityCalculator.aspx"

// Config is read from config.json5 (and config.local.json5), every field is
// optional.
type Config struct {
	BaseURL string `json:"base_url"`
	// Delay is the minimum time between two computes.
	Delay       configutil.Duration `json:"delay"`
	SettleDelay configutil.Duration `json:"settle_delay"`
	Timeout     configutil.Duration `json:"timeout"`

	FallbackIncidence  string `json:"fallback_incidence"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify"`
	CloudflareBypass   bool   `json:"cloudflare_bypass"`
	UserAgent          string `json:"user_agent"`

	// DebugDir receives a dump of every http exchange if it is set.
	DebugDir string `json:"debug_dir"`
	// Otlp configures trace export, tracing is off if no endpoint is set.
	Otlp telemetry.OtlpConfig `json:"otlp"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Delay:             configutil.Duration(time.Second * 15),
		SettleDelay:       configutil.Duration(time.Second * 2),
		Timeout:           configutil.Duration(time.Second * 30),
		FallbackIncidence: eoscalc.DefaultFallbackIncidence,
	}
}

// ReadConfig reads `path` over the defaults, a missing file is not an error.
func ReadConfig(path string) (Config, error) {
	return configutil.ReadConfigOr(path, DefaultConfig())
}

// DriverOptions converts the config into the options of a calculator driver.
func (c Config) DriverOptions(output telemetry.InstrumentOutput) eoscalc.DriverOptions {
	return eoscalc.DriverOptions{
		Client: eoscalc.ClientOptions{
			Endpoint:           c.BaseURL,
			Timeout:            c.Timeout.Std(),
			InsecureSkipVerify: c.InsecureSkipVerify,
			CloudflareBypass:   c.CloudflareBypass,
			UserAgent:          c.UserAgent,
			Output:             output,
		},
		Delay:             c.Delay.Std(),
		SettleDelay:       c.SettleDelay.Std(),
		FallbackIncidence: c.FallbackIncidence,
	}
}

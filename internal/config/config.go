package config

import (
	"time"

	"github.com/spf13/viper"

	"countrynet/internal/model"
)

type Config struct {
	OutputDir         string        `mapstructure:"OUTPUT_DIR"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxWorkers        int           `mapstructure:"MAX_WORKERS"`
	RequestsPerSecond float64       `mapstructure:"REQUESTS_PER_SECOND"`
	UserAgent         string        `mapstructure:"USER_AGENT"`

	// Sources maps each resource type to its URL template; {country} is
	// replaced with the lower-cased country code.
	Sources map[model.ResourceType]string

	RequestHeaders map[string]string
}

const baseURL = "https://www-public.imtbs-tsp.eu/~maigron/rir-stats/rir-delegations/delegations"

func Load() (*Config, error) {
	viper.SetDefault("OUTPUT_DIR", "output_data")
	viper.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("REQUESTS_PER_SECOND", 0.0)
	viper.SetDefault("USER_AGENT", "CountryNetworkScraper/1.0")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Sources = map[model.ResourceType]string{
		model.TypeASN:  baseURL + "/asn/{country}-asn-delegations.html",
		model.TypeIPv4: baseURL + "/ipv4/{country}-ipv4-delegations.html",
		model.TypeIPv6: baseURL + "/ipv6/{country}-ipv6-delegations.html",
	}

	config.RequestHeaders = map[string]string{
		"User-Agent":      config.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}

	return &config, nil
}

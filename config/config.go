package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/d-ashe/ndis-pcap/pkg/capture"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. NDISPCAP_LOG_LEVEL.
	EnvPrefix = "NDISPCAP"
	// EnvConfigFile names an explicit config file.
	EnvConfigFile = EnvPrefix + "_CONFIG"

	configName = "ndis_pcap"
	configType = "yml"
)

// Configurations is the full runtime configuration of ndis_pcap.
type Configurations struct {
	Trace     TraceConfigurations     `mapstructure:"trace"`
	Converter ConverterConfigurations `mapstructure:"converter"`
	Log       LogConfigurations       `mapstructure:"log"`
	Report    ReportConfigurations    `mapstructure:"report"`
}

type TraceConfigurations struct {
	Command   string `mapstructure:"command"`
	Session   string `mapstructure:"session"`
	Extension string `mapstructure:"extension"`
}

type ConverterConfigurations struct {
	Name string `mapstructure:"name"`
	Dir  string `mapstructure:"dir"` // replaces the running executable's directory when set
}

type LogConfigurations struct {
	Level string `mapstructure:"level"`
}

type ReportConfigurations struct {
	Timeout       time.Duration               `mapstructure:"timeout"`
	Elasticsearch ElasticsearchConfigurations `mapstructure:"elasticsearch"`
	Kafka         KafkaConfigurations         `mapstructure:"kafka"`
}

type ElasticsearchConfigurations struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

type KafkaConfigurations struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// SetDefaults registers every known key on v. AutomaticEnv only resolves keys
// viper already knows about, so this must run before Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("trace.command", capture.DefaultTraceCommand())
	v.SetDefault("trace.session", capture.DefaultSession)
	v.SetDefault("trace.extension", capture.DefaultExtension)
	v.SetDefault("converter.name", capture.ConverterName)
	v.SetDefault("converter.dir", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("report.timeout", 10*time.Second)
	v.SetDefault("report.elasticsearch.addresses", []string{})
	v.SetDefault("report.elasticsearch.index", "ndis-pcap")
	v.SetDefault("report.kafka.brokers", "")
	v.SetDefault("report.kafka.topic", "ndis-pcap")
}

// Init prepares v to read environment overrides and the config file. cfgFile
// wins over the search path when non-empty.
func Init(v *viper.Viper, cfgFile string) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if exe, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exe))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Read loads the config file, if any. A missing file found through the
// search path is not an error.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// Load decodes v into a Configurations value.
func Load(v *viper.Viper) (Configurations, error) {
	var configuration Configurations
	if err := v.Unmarshal(&configuration); err != nil {
		return Configurations{}, err
	}
	return configuration, nil
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Configurations {
	v := viper.New()
	SetDefaults(v)
	// Every default has the target field's type, so decoding cannot fail.
	configuration, _ := Load(v)
	return configuration
}

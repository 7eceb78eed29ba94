package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ModuleName = "go-safe"
	EnvPrefix  = "SAFE"
)

// Set at build time via -ldflags.
var (
	ModuleVersion = "-"
	Commit        = "-"
	BuildDate     = "-"
)

// Keys shared by viper and the cobra flags bound to them.
const (
	KeyRPCURLs      = "rpc.urls"
	KeyRPCTimeout   = "rpc.timeout"
	KeyLoggerLevel  = "logger.level"
	KeyLoggerPretty = "logger.pretty"
)

const defaultRPCTimeout = 10 * time.Second

type RPC struct {
	URLs    []string      `json:"urls"`
	Timeout time.Duration `json:"timeout"`
}

type Logger struct {
	Level              zerolog.Level `json:"level"`
	PrettyPrintConsole bool          `json:"prettyPrintConsole"`
}

type Config struct {
	RPC    RPC    `json:"rpc"`
	Logger Logger `json:"logger"`
}

func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleVersion, Commit, BuildDate)
}

// SetDefaults registers defaults and SAFE_* environment lookups on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRPCURLs, "")
	v.SetDefault(KeyRPCTimeout, defaultRPCTimeout)
	v.SetDefault(KeyLoggerLevel, zerolog.InfoLevel.String())
	v.SetDefault(KeyLoggerPretty, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) (Config, error) {
	level, err := zerolog.ParseLevel(v.GetString(KeyLoggerLevel))
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid %s", KeyLoggerLevel)
	}

	return Config{
		RPC: RPC{
			URLs:    rpcURLs(v),
			Timeout: v.GetDuration(KeyRPCTimeout),
		},
		Logger: Logger{
			Level:              level,
			PrettyPrintConsole: v.GetBool(KeyLoggerPretty),
		},
	}, nil
}

// DefaultConfigFromEnv reads a Config from defaults and the environment only.
func DefaultConfigFromEnv() Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := FromViper(v)
	if err != nil {
		log.Panic().Err(err).Msg("Invalid environment configuration")
	}
	return cfg
}

// ParseRPCURLs 解析 RPC URL（支持多个，逗号分隔）
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}

func rpcURLs(v *viper.Viper) []string {
	if list, ok := v.Get(KeyRPCURLs).([]interface{}); ok {
		result := make([]string, 0, len(list))
		for _, item := range list {
			result = append(result, ParseRPCURLs(fmt.Sprint(item))...)
		}
		return result
	}

	return ParseRPCURLs(v.GetString(KeyRPCURLs))
}

// Setup configures the global zerolog logger.
func (l Logger) Setup() {
	zerolog.SetGlobalLevel(l.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if l.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

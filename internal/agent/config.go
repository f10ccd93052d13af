// Package agent wires together the agent's lifecycle, configuration,
// logging, metrics, signal handling, and asset watching — spec.md §4.J
// ("Signal & lifecycle") plus the ambient stack this expansion adds.
package agent

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the PROBING_* environment variables listed below plus
// MASTER_ADDR (RANK and LOCAL_RANK are read by the lifecycle code, not
// here), plus install-time defaults optionally read from
// a probing.yaml file, grounded on the teacher's internal/labelmutex
// policy.go viper.New()+SetConfigFile idiom.
type Config struct {
	Port           int
	Log            string
	Args           string
	CtrlRoot       string
	AssetsRoot     string
	CodeRoot       string
	AuthToken      string
	AuthUsername   string
	AuthRealm      string
	MaxRequestSize int64
	MaxFileSize    int64
	MasterAddr     string
	OTLPEndpoint   string
}

const (
	defaultCtrlRoot       = "/tmp/probing/"
	defaultMaxRequestSize = 5 * 1024 * 1024
	defaultMaxFileSize    = 10 * 1024 * 1024
)

// LoadConfig reads configuration from the process environment (the
// PROBING_* keys of Config and MASTER_ADDR) and, if present, a
// probing.yaml file at yamlPath for static install-time defaults that
// env vars override.
func LoadConfig(yamlPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("probing_ctrl_root", defaultCtrlRoot)
	v.SetDefault("probing_max_request_size", defaultMaxRequestSize)
	v.SetDefault("probing_max_file_size", defaultMaxFileSize)
	v.SetDefault("probing_auth_username", "admin")
	v.SetDefault("probing_auth_realm", "Probe Server")

	if yamlPath != "" {
		if _, statErr := os.Stat(yamlPath); statErr == nil {
			v.SetConfigFile(yamlPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, err
				}
			}
		}
	}

	return &Config{
		Port:           v.GetInt("probing_port"),
		Log:            v.GetString("probing_log"),
		Args:           v.GetString("probing_args"),
		CtrlRoot:       v.GetString("probing_ctrl_root"),
		AssetsRoot:     v.GetString("probing_assets_root"),
		CodeRoot:       v.GetString("probing_code_root"),
		AuthToken:      v.GetString("probing_auth_token"),
		AuthUsername:   v.GetString("probing_auth_username"),
		AuthRealm:      v.GetString("probing_auth_realm"),
		MaxRequestSize: v.GetInt64("probing_max_request_size"),
		MaxFileSize:    v.GetInt64("probing_max_file_size"),
		MasterAddr:     v.GetString("master_addr"),
		OTLPEndpoint:   v.GetString("probing_otlp_endpoint"),
	}, nil
}

package client

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vctt94/coinched/pkg/utils"
)

// DefaultServer is used when neither the config file nor a flag names a
// server.
const DefaultServer = "127.0.0.1:3000"

// ConfigOverrides carries optional CLI/runtime overrides for config values.
type ConfigOverrides struct {
	Server     string
	LogFile    string
	DebugLevel string
	MaxHands   int
}

// AppConfig is the configuration shared by the coinche client programs.
type AppConfig struct {
	DataDir    string
	Server     string
	LogFile    string
	DebugLevel string
	MaxHands   int
}

// LoadConfig reads <datadir>/<appName>.conf, if it exists, and applies ov on
// top of it. The file holds key=value lines; '#' starts a comment.
func LoadConfig(appName string, datadir string, ov ConfigOverrides) (*AppConfig, error) {
	if datadir == "" {
		datadir = utils.AppDataDir(appName)
	}
	cfg := &AppConfig{
		DataDir:    datadir,
		Server:     DefaultServer,
		LogFile:    filepath.Join(datadir, "logs", appName+".log"),
		DebugLevel: "info",
	}

	path := filepath.Join(datadir, appName+".conf")
	values, err := readConfigFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.SetConfigValues(values); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if ov.Server != "" {
		cfg.Server = ov.Server
	}
	if ov.LogFile != "" {
		cfg.LogFile = ov.LogFile
	}
	if ov.DebugLevel != "" {
		cfg.DebugLevel = ov.DebugLevel
	}
	if ov.MaxHands != 0 {
		cfg.MaxHands = ov.MaxHands
	}
	return cfg, cfg.ValidateConfig()
}

func readConfigFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", n)
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return values, scanner.Err()
}

// SetConfigValues applies values read from a config file.
func (cfg *AppConfig) SetConfigValues(values map[string]string) error {
	for key, value := range values {
		switch key {
		case "server":
			cfg.Server = value
		case "logfile":
			cfg.LogFile = value
		case "debuglevel", "debug":
			cfg.DebugLevel = value
		case "maxhands":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid maxhands %q: %w", value, err)
			}
			cfg.MaxHands = n
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	return nil
}

// ValidateConfig checks that all required configuration values are present
func (cfg *AppConfig) ValidateConfig() error {
	var missingConfigs []string
	if cfg.Server == "" {
		missingConfigs = append(missingConfigs, "server")
	}
	if cfg.DebugLevel == "" {
		missingConfigs = append(missingConfigs, "debuglevel")
	}
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missingConfigs)
	}
	if cfg.MaxHands < 0 {
		return fmt.Errorf("maxhands must not be negative")
	}
	return nil
}

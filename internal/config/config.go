// Copyright 2025 The Patchy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads process configuration from the environment. All
// values are read once at startup and treated as immutable for the
// process lifetime.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process configuration.
type Config struct {
	DiscordToken        string `mapstructure:"discord_token"`
	DiscordChannelID    string `mapstructure:"discord_channel_id"`
	GitHubWebhookSecret string `mapstructure:"github_webhook_secret"`
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	LogLevel            string `mapstructure:"log_level"`
}

// Load reads configuration from environment variables (DISCORD_TOKEN,
// DISCORD_CHANNEL_ID, GITHUB_WEBHOOK_SECRET, HOST, PORT, LOG_LEVEL).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("discord_token", "")
	v.SetDefault("discord_channel_id", "")
	v.SetDefault("github_webhook_secret", "")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("log_level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required values are present, naming every
// missing variable in one error.
func (c *Config) Validate() error {
	var missing []string
	if c.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.DiscordChannelID == "" {
		missing = append(missing, "DISCORD_CHANNEL_ID")
	}
	if c.GitHubWebhookSecret == "" {
		missing = append(missing, "GITHUB_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

package config

import "time"

type Config struct {
	PollInterval       time.Duration
	MaxPollTime        time.Duration
	SessionRetention   time.Duration
	StatusPushInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		PollInterval:       15 * time.Second,
		MaxPollTime:        5 * time.Minute,
		SessionRetention:   30 * time.Minute,
		StatusPushInterval: 5 * time.Second,
	}
}

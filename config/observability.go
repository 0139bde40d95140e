package config

import "strings"

// MetricsConfig configures the optional StatsD metrics sink.
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Address string `env:"ADDRESS" envDefault:"localhost:8125"`
	Prefix  string `env:"PREFIX"  envDefault:"quill"`
}

// Sanitize applies guardrails to metrics configuration values.
func (m *MetricsConfig) Sanitize() {
	m.Address = strings.TrimSpace(m.Address)
	if m.Address == "" {
		m.Enabled = false
	}
}

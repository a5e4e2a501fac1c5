package config

import (
	"fmt"
	"strings"
	"time"

	"subdesk/internal/models"
	"subdesk/internal/reminders"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings such as "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ReminderConfig represents the reminder policy file
type ReminderConfig struct {
	Policy    PolicyConfig    `toml:"policy"`
	Dispatch  DispatchConfig  `toml:"dispatch"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Templates TemplatesConfig `toml:"templates"`
}

// PolicyConfig is the schedule used for subscriptions without settings
type PolicyConfig struct {
	LeadDays []int    `toml:"lead_days"`
	Types    []string `toml:"types"`
}

// DispatchConfig contains delivery throttling and retry settings
type DispatchConfig struct {
	// Mode is "queue" to deliver through the worker or "inline" to send from
	// the scheduler.
	Mode      string  `toml:"mode"`
	PerSecond float64 `toml:"per_second"`
	Burst     int     `toml:"burst"`
	MaxRetry  int     `toml:"max_retry"`
}

// ScheduleConfig sets job intervals; "0s" disables a job
type ScheduleConfig struct {
	GenerateEvery  Duration `toml:"generate_every"`
	DispatchEvery  Duration `toml:"dispatch_every"`
	LapsedEvery    Duration `toml:"lapsed_every"`
	DashboardEvery Duration `toml:"dashboard_every"`
}

// TemplatesConfig overrides the built-in message templates
type TemplatesConfig struct {
	Subject string `toml:"subject"`
	Body    string `toml:"body"`
}

// DefaultReminderConfig returns the policy used when no file is configured.
func DefaultReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		Policy: PolicyConfig{
			LeadDays: []int{7},
			Types:    []string{string(models.ReminderTypeEmail), string(models.ReminderTypeWhatsApp)},
		},
		Dispatch: DispatchConfig{
			Mode:      "queue",
			PerSecond: 5,
			Burst:     5,
			MaxRetry:  5,
		},
		Schedule: ScheduleConfig{
			GenerateEvery:  Duration{time.Hour},
			DispatchEvery:  Duration{5 * time.Minute},
			LapsedEvery:    Duration{6 * time.Hour},
			DashboardEvery: Duration{time.Minute},
		},
	}
}

// LoadReminderConfig loads the policy from a TOML file layered over the
// defaults. An empty filename returns the defaults.
func LoadReminderConfig(filename string) (*ReminderConfig, error) {
	cfg := DefaultReminderConfig()
	if filename == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(filename, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", filename, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *ReminderConfig) Validate() error {
	if len(c.Policy.LeadDays) == 0 {
		return fmt.Errorf("policy.lead_days must not be empty")
	}
	for _, d := range c.Policy.LeadDays {
		if d < 0 || d > 365 {
			return fmt.Errorf("policy.lead_days: %d is outside 0..365", d)
		}
	}
	for _, t := range c.Policy.Types {
		if !models.ReminderType(strings.ToLower(t)).Valid() {
			return fmt.Errorf("policy.types: unknown reminder type %q", t)
		}
	}
	switch c.Dispatch.Mode {
	case "queue", "inline":
	default:
		return fmt.Errorf("dispatch.mode must be queue or inline, got %q", c.Dispatch.Mode)
	}
	if c.Dispatch.MaxRetry < 0 {
		return fmt.Errorf("dispatch.max_retry must not be negative")
	}
	if c.Dispatch.PerSecond > 0 && c.Dispatch.Burst < 1 {
		return fmt.Errorf("dispatch.burst must be at least 1 when per_second is set")
	}
	return nil
}

// ReminderPolicy converts the policy section for the generator.
func (c *ReminderConfig) ReminderPolicy() reminders.Policy {
	types := make([]models.ReminderType, 0, len(c.Policy.Types))
	for _, t := range c.Policy.Types {
		types = append(types, models.ReminderType(strings.ToLower(t)))
	}
	return reminders.Policy{LeadDays: c.Policy.LeadDays, Types: types}
}

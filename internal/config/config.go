package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "PROPOSAL_SCANNER_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Mail      MailConfig      `yaml:"mail"`
	Wiki      WikiConfig      `yaml:"wiki"`
	Report    ReportConfig    `yaml:"report"`
	Taxonomy  TaxonomyConfig  `yaml:"taxonomy"`
	Projects  []ProjectConfig `yaml:"projects"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes optional Postgres mirroring.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when the update pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MailConfig controls mailing-list archive retrieval.
type MailConfig struct {
	DaysBack  int  `yaml:"daysBack"`
	Overwrite bool `yaml:"overwrite"`
}

// WikiConfig controls the wiki page-tree walk.
type WikiConfig struct {
	Chunk int `yaml:"chunk"`
}

// ReportConfig describes the rendered status page.
type ReportConfig struct {
	OutputFile string `yaml:"outputFile"`
}

// TaxonomyConfig optionally overrides the classification keyword lists so
// the taxonomy can be extended without touching control flow.
type TaxonomyConfig struct {
	AcceptedTerms        []string `yaml:"acceptedTerms"`
	UnderDiscussionTerms []string `yaml:"underDiscussionTerms"`
	NotAcceptedTerms     []string `yaml:"notAcceptedTerms"`
	PlaceholderMarkers   []string `yaml:"placeholderMarkers"`
}

// ProjectConfig describes a single tracked project and its numbering scheme.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Scheme      string `yaml:"scheme"`
	MailingList string `yaml:"mailingList"`
	ArchiveDir  string `yaml:"archiveDir"`
	CacheDir    string `yaml:"cacheDir"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Projects) == 0 {
		cfg.Projects = defaultConfig().Projects
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Mail.DaysBack != 0 {
		base.Mail.DaysBack = override.Mail.DaysBack
	}
	if override.Mail.Overwrite {
		base.Mail.Overwrite = true
	}

	if override.Wiki.Chunk != 0 {
		base.Wiki.Chunk = override.Wiki.Chunk
	}

	if override.Report.OutputFile != "" {
		base.Report = override.Report
	}

	if len(override.Taxonomy.AcceptedTerms) > 0 {
		base.Taxonomy.AcceptedTerms = override.Taxonomy.AcceptedTerms
	}
	if len(override.Taxonomy.UnderDiscussionTerms) > 0 {
		base.Taxonomy.UnderDiscussionTerms = override.Taxonomy.UnderDiscussionTerms
	}
	if len(override.Taxonomy.NotAcceptedTerms) > 0 {
		base.Taxonomy.NotAcceptedTerms = override.Taxonomy.NotAcceptedTerms
	}
	if len(override.Taxonomy.PlaceholderMarkers) > 0 {
		base.Taxonomy.PlaceholderMarkers = override.Taxonomy.PlaceholderMarkers
	}

	if len(override.Projects) > 0 {
		base.Projects = override.Projects
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Mail:      MailConfig{DaysBack: 365},
		Wiki:      WikiConfig{Chunk: 100},
		Report:    ReportConfig{OutputFile: "proposal_status.html"},
		Projects: []ProjectConfig{
			{
				Name:        "kafka",
				Scheme:      "kafka",
				MailingList: "dev",
				ArchiveDir:  "dev",
				CacheDir:    "cache",
			},
		},
	}
}

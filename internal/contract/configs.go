package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultSource      = "."
)

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Source      string
	Author      string
	Branch      string
	StartDate   *time.Time
	EndDate     *time.Time
	Files       []string
	Credentials schema.Credentials
	TokenSecret string // AWS Secrets Manager secret holding the clone token

	Engine      schema.Engine
	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Progress    bool
	Verbose     bool
	Interactive bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MetricsFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Analysis request ---
	Repo        string `mapstructure:"repo"`
	Author      string `mapstructure:"author"`
	Branch      string `mapstructure:"branch"`
	StartDate   string `mapstructure:"start-date"`
	EndDate     string `mapstructure:"end-date"`
	Files       string `mapstructure:"files"`
	Token       string `mapstructure:"token"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TokenSecret string `mapstructure:"token-secret"`

	// --- Presentation and engine ---
	Engine      string `mapstructure:"engine"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Limit       int    `mapstructure:"limit"`
	Width       int    `mapstructure:"width"`
	Color       string `mapstructure:"color"`
	Progress    bool   `mapstructure:"progress"`
	Verbose     bool   `mapstructure:"verbose"`
	Interactive bool   `mapstructure:"interactive"`

	// --- Persistence and metrics ---
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	MetricsFile      string `mapstructure:"metrics-file"`
}

// Request builds the analysis request described by the config.
func (c *Config) Request() schema.AnalysisRequest {
	return schema.AnalysisRequest{
		Source:        c.Source,
		AuthorPattern: c.Author,
		Branch:        c.Branch,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		Files:         append([]string(nil), c.Files...),
		Credentials:   c.Credentials,
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Files != nil {
		clone.Files = make([]string, len(c.Files))
		copy(clone.Files, c.Files)
	}
	if c.StartDate != nil {
		t := *c.StartDate
		clone.StartDate = &t
	}
	if c.EndDate != nil {
		t := *c.EndDate
		clone.EndDate = &t
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ProcessBase(cfg, input); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Author) == "" && !cfg.Interactive {
		return errors.New("an author pattern is required (use --author)")
	}
	return nil
}

// ProcessBase is ProcessAndValidate without the author requirement. Front ends
// that take the author per request, such as the MCP server, start from it.
func ProcessBase(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRequest(cfg, input); err != nil {
		return err
	}
	if err := processDateRange(cfg, input); err != nil {
		return err
	}
	return processCredentials(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseHistoryBackend normalizes a backend name. An empty name disables history.
func ParseHistoryBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateSimpleInputs processes and validates all presentation and persistence fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Progress = input.Progress
	cfg.Verbose = input.Verbose
	cfg.Interactive = input.Interactive
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, yaml, csv, parquet, html", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}

	cfg.Engine = schema.Engine(strings.ToLower(input.Engine))
	if cfg.Engine == "" {
		cfg.Engine = schema.GoGitEngine
	}
	if _, ok := schema.ValidEngines[cfg.Engine]; !ok {
		return fmt.Errorf("invalid engine '%s'. must be gogit or git", input.Engine)
	}

	backend, err := ParseHistoryBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// processRequest handles the source, author, branch and file filters.
func processRequest(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = strings.TrimSpace(input.Repo)
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}

	cfg.Author = input.Author

	cfg.Branch = strings.TrimSpace(input.Branch)
	if cfg.Branch == "" {
		cfg.Branch = schema.DefaultBranch
	}

	cfg.Files = SplitList(input.Files)
	return nil
}

// processDateRange parses the optional date window. Malformed dates are reported
// and treated as unbounded rather than aborting the run.
func processDateRange(cfg *Config, input *ConfigRawInput) error {
	cfg.StartDate = ParseDateOrWarn("start", input.StartDate)
	cfg.EndDate = ParseDateOrWarn("end", input.EndDate)

	if cfg.StartDate != nil && cfg.EndDate != nil && cfg.StartDate.After(*cfg.EndDate) {
		LogWarn("Start date is after end date, no commits will match",
			fmt.Errorf("%s > %s", cfg.StartDate.Format(schema.DateLayout), cfg.EndDate.Format(schema.DateLayout)))
	}
	return nil
}

// ParseDateOrWarn parses s with ParseDate. A malformed date is reported on stderr
// and yields nil, meaning unbounded.
func ParseDateOrWarn(which, s string) *time.Time {
	t, err := ParseDate(s)
	if err != nil {
		LogWarn(fmt.Sprintf("Ignoring %s date, treating it as unbounded", which), err)
		return nil
	}
	return t
}

// processCredentials validates the credential combination.
func processCredentials(cfg *Config, input *ConfigRawInput) error {
	creds := schema.Credentials{Token: input.Token, Username: input.Username, Password: input.Password}
	cfg.TokenSecret = strings.TrimSpace(input.TokenSecret)

	if creds.Token != "" && (creds.Username != "" || creds.Password != "") {
		LogWarn("Both a token and a username/password were given", errors.New("using the token"))
		creds.Username, creds.Password = "", ""
	}
	if creds.Token == "" && (creds.Username == "") != (creds.Password == "") {
		return errors.New("--username and --password must be given together")
	}
	if cfg.TokenSecret != "" && !creds.Empty() {
		LogWarn("Both explicit credentials and --token-secret were given", errors.New("ignoring --token-secret"))
		cfg.TokenSecret = ""
	}
	cfg.Credentials = creds
	return nil
}

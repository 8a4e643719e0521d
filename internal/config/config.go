package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/dedent"
	"gopkg.in/yaml.v3"
)

const (
	ModeLot   = "lot"
	ModeImage = "image"

	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

var providerDefaultModels = map[string]struct {
	env   string
	model string
}{
	"openai": {env: "OPENAI_MODEL", model: "gpt-4o-mini"},
	"ollama": {env: "OLLAMA_MODEL", model: "mistral-small3.2:24b"},
	"gemini": {env: "GEMINI_MODEL", model: "gemini-1.5-flash"},
	"vertex": {env: "VERTEX_MODEL", model: "gemini-2.5-flash"},
}

// DefaultSystemPrompt is sent as the system message on providers that support one
const DefaultSystemPrompt = "You are an expert auction catalog writer."

// DefaultPromptTemplate is rendered with the lot's public image URLs
var DefaultPromptTemplate = strings.TrimSpace(dedent.Dedent(`
	Describe this auction item using the following image URLs: {{ .URLs }}
	Provide three levels of text:
	1. Base Caption (short, simple)
	2. Refined Catalog Text (professional auction style)
	3. Enhanced Marketing Description (engaging, detailed)
`))

// Placeholders are the fixed texts used when a tier could not be generated
type Placeholders struct {
	Failure  string `yaml:"failure"`
	Caption  string `yaml:"caption"`
	Refined  string `yaml:"refined"`
	Enhanced string `yaml:"enhanced"`
}

// Generation configures the calls made to the LLM provider
type Generation struct {
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	Temperature    float64       `yaml:"temperature"`
	SystemPrompt   string        `yaml:"system_prompt"`
	PromptTemplate string        `yaml:"prompt_template"`
	Mode           string        `yaml:"mode"`
	Timeout        time.Duration `yaml:"timeout"`
	MinInterval    time.Duration `yaml:"min_interval"`
	Placeholders   Placeholders  `yaml:"placeholders"`
}

// Publish configures the optional S3-compatible bucket that uploads are mirrored to
type Publish struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether uploads should be mirrored
func (p Publish) Enabled() bool {
	return p.Endpoint != "" && p.Bucket != ""
}

// Config is the full application configuration
type Config struct {
	UploadDir      string     `yaml:"upload_dir"`
	StaticDir      string     `yaml:"static_dir"`
	CatalogPath    string     `yaml:"catalog_path"`
	CatalogBackend string     `yaml:"catalog_backend"`
	PublicBaseURL  string     `yaml:"public_base_url"`
	Separator      string     `yaml:"separator"`
	MaxUploadBytes int64      `yaml:"max_upload_bytes"`
	Generation     Generation `yaml:"generation"`
	Publish        Publish    `yaml:"publish"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		UploadDir:      "uploads",
		StaticDir:      "static",
		CatalogPath:    "catalog_output.csv",
		CatalogBackend: BackendCSV,
		PublicBaseURL:  "https://yourwebsite.com/uploads",
		Separator:      "-",
		MaxUploadBytes: 10 * 1024 * 1024,
		Generation: Generation{
			Provider:       "openai",
			Temperature:    0.2,
			SystemPrompt:   DefaultSystemPrompt,
			PromptTemplate: DefaultPromptTemplate,
			Mode:           ModeLot,
			Timeout:        2 * time.Minute,
			Placeholders: Placeholders{
				Failure:  "AI failed to generate description.",
				Caption:  "No base caption generated.",
				Refined:  "No refined text generated.",
				Enhanced: "No enhanced description generated.",
			},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.UploadDir, "UPLOADS_FOLDER")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.CatalogPath, "CSV_FILE")
	setString(&c.CatalogBackend, "CATALOG_BACKEND")
	setString(&c.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&c.Separator, "LOT_SEPARATOR")
	setString(&c.Generation.Provider, "CATALOGING_PROVIDER")
	setString(&c.Generation.Model, "CATALOGING_MODEL")
	setString(&c.Generation.Mode, "GENERATION_MODE")
	setString(&c.Publish.Endpoint, "PUBLISH_ENDPOINT")
	setString(&c.Publish.Bucket, "PUBLISH_BUCKET")
	setString(&c.Publish.AccessKey, "PUBLISH_ACCESS_KEY")
	setString(&c.Publish.SecretKey, "PUBLISH_SECRET_KEY")
	setString(&c.Publish.Prefix, "PUBLISH_PREFIX")
	setString(&c.Publish.Region, "PUBLISH_REGION")

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("PUBLISH_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PUBLISH_USE_SSL %q: %w", v, err)
		}
		c.Publish.UseSSL = b
	}
	for env, dst := range map[string]*time.Duration{
		"GENERATION_TIMEOUT":  &c.Generation.Timeout,
		"GENERATION_INTERVAL": &c.Generation.MinInterval,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", env, v, err)
		}
		*dst = d
	}

	return nil
}

// ResolveModel returns the configured model, falling back to the provider's default
func (c *Config) ResolveModel() string {
	if c.Generation.Model != "" {
		return c.Generation.Model
	}
	def, ok := providerDefaultModels[c.Generation.Provider]
	if !ok {
		return ""
	}
	if model := os.Getenv(def.env); model != "" {
		return model
	}
	return def.model
}

// Validate checks the values that would otherwise fail deep inside a request
func (c *Config) Validate() error {
	if _, ok := providerDefaultModels[c.Generation.Provider]; !ok {
		return fmt.Errorf("unsupported provider: %s", c.Generation.Provider)
	}
	switch c.CatalogBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unsupported catalog backend: %s", c.CatalogBackend)
	}
	switch c.Generation.Mode {
	case ModeLot, ModeImage:
	default:
		return fmt.Errorf("unsupported generation mode: %s", c.Generation.Mode)
	}
	if c.Separator == "" {
		return fmt.Errorf("lot separator must not be empty")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("upload directory must not be empty")
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog path must not be empty")
	}
	p := c.Generation.Placeholders
	for key, v := range map[string]string{"failure": p.Failure, "caption": p.Caption, "refined": p.Refined, "enhanced": p.Enhanced} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("placeholder %s must not be empty", key)
		}
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/dgallion1/markchap/internal/label"
)

// DefaultPath is the config file read when none is given on the command line.
const DefaultPath = "config.json"

// ErrConfig marks every configuration failure: unreadable or malformed files,
// schema violations and invalid values.
var ErrConfig = errors.New("configuration error")

// NumberFormats holds the label templates. Each must contain at least one {}
// placeholder.
type NumberFormats struct {
	Chapter string `json:"chapter"`
	Figure  string `json:"figure"`
	Table   string `json:"table"`
}

type Config struct {
	ExcludedHeadings        []string      `json:"excluded_headings"`
	NumberFormats           NumberFormats `json:"number_formats"`
	OutputDirectory         string        `json:"output_directory"`
	PreserveExistingNumbers bool          `json:"preserve_existing_numbers"`
	TableKeyword            string        `json:"table_keyword"`
	HeadingSeparator        string        `json:"heading_separator"`
	CaptionSeparator        string        `json:"caption_separator"`
	Recursive               bool          `json:"recursive"`

	// Worker pool
	Workers int `json:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ExcludedHeadings: []string{"はじめに", "参考文献", "謝辞", "付録", "索引", "目次", "あとがき", "概要", "まとめ"},
		NumberFormats: NumberFormats{
			Chapter: "{}",
			Figure:  "図{}",
			Table:   "表{}",
		},
		OutputDirectory:         "mdbuild",
		PreserveExistingNumbers: true,
		TableKeyword:            "表",
		HeadingSeparator:        " ",
		CaptionSeparator:        ": ",
		Recursive:               true,
		Workers:                 4,
	}
}

// Load reads the JSON config at path over the defaults, then applies
// environment overrides. A missing file is only an error when explicit is
// set; otherwise the defaults are used.
func Load(path string, explicit bool) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	cfg.OutputDirectory = envOr("MARKCHAP_OUTPUT_DIR", cfg.OutputDirectory)
	cfg.Workers = envInt("MARKCHAP_WORKERS", cfg.Workers)
	cfg.PreserveExistingNumbers = envBool("MARKCHAP_PRESERVE_EXISTING_NUMBERS", cfg.PreserveExistingNumbers)

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.NumberFormats),
		validation.Field(&c.ExcludedHeadings, validation.Each(validation.By(notBlank))),
		validation.Field(&c.OutputDirectory, validation.Required, validation.By(notBlank)),
		validation.Field(&c.HeadingSeparator, validation.Required),
		validation.Field(&c.CaptionSeparator, validation.Required),
		validation.Field(&c.Workers, validation.Min(1)),
	)
}

func (f NumberFormats) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Chapter, validation.Required, validation.By(template)),
		validation.Field(&f.Figure, validation.Required, validation.By(template)),
		validation.Field(&f.Table, validation.Required, validation.By(template)),
	)
}

// Templates parses the three number formats.
func (f NumberFormats) Templates() (chapter, figure, table *label.Template, err error) {
	if chapter, err = label.Parse(f.Chapter); err != nil {
		return nil, nil, nil, fmt.Errorf("chapter format: %w", err)
	}
	if figure, err = label.Parse(f.Figure); err != nil {
		return nil, nil, nil, fmt.Errorf("figure format: %w", err)
	}
	if table, err = label.Parse(f.Table); err != nil {
		return nil, nil, nil, fmt.Errorf("table format: %w", err)
	}
	return chapter, figure, table, nil
}

func template(value any) error {
	s, _ := value.(string)
	if _, err := label.Parse(s); err != nil {
		return validation.NewError("validation_template_placeholder", "must contain a {} placeholder")
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "must not be blank")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

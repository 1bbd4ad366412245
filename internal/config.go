package internal

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuannm99/novaload/internal/composite"
	"github.com/tuannm99/novaload/internal/fieldcodec"
	"github.com/tuannm99/novaload/internal/record"
)

var ErrNoTypes = errors.New("novaload: config declares no types")

type FieldConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

type TypeConfig struct {
	Name   string        `mapstructure:"name"`
	Fields []FieldConfig `mapstructure:"fields"`
}

type NovaLoadConfig struct {
	AppName string `mapstructure:"app_name"`

	Delimiters struct {
		Collection string `mapstructure:"collection"`
		Begin      string `mapstructure:"begin"`
		End        string `mapstructure:"end"`
		Map        string `mapstructure:"map"`
		Quote      string `mapstructure:"quote"`
		Escape     string `mapstructure:"escape"`
	} `mapstructure:"delimiters"`

	Dispatch         string       `mapstructure:"dispatch"`
	Policy           string       `mapstructure:"policy"`
	NullMarker       string       `mapstructure:"null_marker"`
	TimestampLayouts []string     `mapstructure:"timestamp_layouts"`
	Types            []TypeConfig `mapstructure:"types"`
}

func setDefaults(v *viper.Viper) {
	d := composite.DefaultDelimiters()
	v.SetDefault("app_name", "novaload")
	v.SetDefault("delimiters.collection", string(d.Collection))
	v.SetDefault("delimiters.begin", string(d.Open))
	v.SetDefault("delimiters.end", string(d.Close))
	v.SetDefault("delimiters.map", string(d.Map))
	v.SetDefault("delimiters.quote", string(d.Quote))
	v.SetDefault("delimiters.escape", string(d.Escape))
	v.SetDefault("dispatch", "position")
	v.SetDefault("policy", "skip")
	v.SetDefault("null_marker", `\N`)
}

// LoadConfig reads the YAML file at path. NOVALOAD_* environment
// variables override it, and flags, when given, override both.
func LoadConfig(path string, flags *pflag.FlagSet) (*NovaLoadConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NOVALOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if flags != nil {
		for _, key := range []string{"dispatch", "policy", "null_marker"} {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg NovaLoadConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Types) == 0 {
		return nil, ErrNoTypes
	}

	return &cfg, nil
}

// DelimiterConfig converts the configured strings; each must be a
// single character.
func (cfg *NovaLoadConfig) DelimiterConfig() (composite.DelimiterConfig, error) {
	d := cfg.Delimiters
	var out composite.DelimiterConfig
	for _, p := range []struct {
		name string
		s    string
		dst  *rune
	}{
		{"collection", d.Collection, &out.Collection},
		{"begin", d.Begin, &out.Open},
		{"end", d.End, &out.Close},
		{"map", d.Map, &out.Map},
		{"quote", d.Quote, &out.Quote},
		{"escape", d.Escape, &out.Escape},
	} {
		if utf8.RuneCountInString(p.s) != 1 {
			return out, fmt.Errorf("delimiters.%s: want one character, got %q", p.name, p.s)
		}
		*p.dst, _ = utf8.DecodeRuneInString(p.s)
	}
	return out, nil
}

func (cfg *NovaLoadConfig) CodecOptions() ([]composite.Option, error) {
	var opts []composite.Option
	switch strings.ToLower(cfg.Dispatch) {
	case "", "position":
		opts = append(opts, composite.WithDispatch(composite.DispatchByPosition))
	case "name":
		opts = append(opts, composite.WithDispatch(composite.DispatchByName))
	default:
		return nil, fmt.Errorf("dispatch: unknown mode %q", cfg.Dispatch)
	}
	switch strings.ToLower(cfg.Policy) {
	case "", "skip":
		opts = append(opts, composite.WithPolicy(composite.PolicySkip))
	case "abort":
		opts = append(opts, composite.WithPolicy(composite.PolicyAbort))
	default:
		return nil, fmt.Errorf("policy: unknown policy %q", cfg.Policy)
	}
	return opts, nil
}

// Registry defines every configured type in a composite.Registry.
// Extra options are applied after the configured ones.
func (cfg *NovaLoadConfig) Registry(extra ...composite.Option) (*composite.Registry, error) {
	delims, err := cfg.DelimiterConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.CodecOptions()
	if err != nil {
		return nil, err
	}
	var fieldOpts []fieldcodec.Option
	if len(cfg.TimestampLayouts) > 0 {
		fieldOpts = append(fieldOpts, fieldcodec.WithTimestampLayouts(cfg.TimestampLayouts...))
	}

	reg := composite.NewRegistry(delims, fieldOpts, append(opts, extra...)...)
	for _, t := range cfg.Types {
		cols := make([]record.Column, 0, len(t.Fields))
		for _, f := range t.Fields {
			cols = append(cols, record.Column{
				Name:     f.Name,
				Type:     record.ParseTypeTag(f.Type),
				Declared: f.Type,
			})
		}
		s, err := record.NewSchema(t.Name, cols...)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", t.Name, err)
		}
		if err := reg.Define(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

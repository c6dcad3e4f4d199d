package chatfilter

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode determines how the filter handles violations.
type Mode string

const (
	ModeReplace Mode = "REPLACE" // Replace banned words with grawlix
	ModeBlock   Mode = "BLOCK"   // Reject the whole message
)

const grawlix = "!$%&"

// Config holds the chat filter configuration.
type Config struct {
	Enabled     bool     `yaml:"enabled"`
	Mode        Mode     `yaml:"mode"`
	BannedWords []string `yaml:"banned_words"`
	BannedNames []string `yaml:"banned_names"`
}

// Result is the outcome of checking a message.
type Result struct {
	Filtered     string
	Violated     bool
	Blocked      bool
	MatchedWords []string
}

// ChatFilter censors player speech and vets usernames. A nil *ChatFilter
// lets everything through.
type ChatFilter struct {
	enabled     bool
	mode        Mode
	patterns    []*wordPattern
	bannedNames map[string]bool
}

type wordPattern struct {
	word    string
	pattern *regexp.Regexp
}

// New builds a ChatFilter from cfg. A nil config disables filtering.
func New(cfg *Config) *ChatFilter {
	if cfg == nil {
		return &ChatFilter{}
	}

	cf := &ChatFilter{
		enabled:     cfg.Enabled,
		mode:        cfg.Mode,
		patterns:    make([]*wordPattern, 0, len(cfg.BannedWords)),
		bannedNames: make(map[string]bool, len(cfg.BannedNames)),
	}
	if cf.mode == "" {
		cf.mode = ModeReplace
	}

	for _, word := range cfg.BannedWords {
		if word == "" {
			continue
		}
		cf.patterns = append(cf.patterns, &wordPattern{
			word:    strings.ToLower(word),
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`),
		})
	}
	for _, name := range cfg.BannedNames {
		if name != "" {
			cf.bannedNames[strings.ToLower(name)] = true
		}
	}

	return cf
}

// LoadConfig reads a chat filter configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chat filter config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing chat filter config %s: %w", path, err)
	}

	switch cfg.Mode {
	case "":
		cfg.Mode = ModeReplace
	case ModeReplace, ModeBlock:
	default:
		return nil, fmt.Errorf("unknown chat filter mode %q", cfg.Mode)
	}

	return &cfg, nil
}

// Check filters message. In REPLACE mode each banned word is overwritten
// with grawlix characters; in BLOCK mode the result is marked blocked.
func (cf *ChatFilter) Check(message string) Result {
	result := Result{Filtered: message}
	if !cf.Enabled() {
		return result
	}

	for _, wp := range cf.patterns {
		if !wp.pattern.MatchString(message) {
			continue
		}
		result.Violated = true
		result.MatchedWords = append(result.MatchedWords, wp.word)

		if cf.mode == ModeReplace {
			result.Filtered = wp.pattern.ReplaceAllStringFunc(result.Filtered, censor)
		}
	}
	result.Blocked = result.Violated && cf.mode == ModeBlock

	return result
}

// AllowName reports whether a username is acceptable, with a reason when not.
func (cf *ChatFilter) AllowName(name string) (bool, string) {
	if !cf.Enabled() {
		return true, ""
	}

	lower := strings.ToLower(name)
	if cf.bannedNames[lower] {
		return false, "That name is reserved."
	}
	for _, wp := range cf.patterns {
		if strings.Contains(lower, wp.word) {
			return false, "That name contains inappropriate language."
		}
	}
	return true, ""
}

func (cf *ChatFilter) Enabled() bool {
	return cf != nil && cf.enabled && (len(cf.patterns) > 0 || len(cf.bannedNames) > 0)
}

func (cf *ChatFilter) Mode() Mode {
	if cf == nil {
		return ModeReplace
	}
	return cf.mode
}

func censor(match string) string {
	var b strings.Builder
	for i := range []rune(match) {
		b.WriteByte(grawlix[i%len(grawlix)])
	}
	return b.String()
}

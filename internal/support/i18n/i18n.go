// 文件路径: internal/support/i18n/i18n.go
// 模块说明: 页面文案翻译，语言包内嵌在 locales/*.json。
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager 管理翻译内容。加载完成后只读，可并发使用。
type Manager struct {
	defaultLang  string
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []language.Tag
	logger       *slog.Logger
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置 Manager 使用的日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) {
		if strings.TrimSpace(lang) != "" {
			m.defaultLang = lang
		}
	}
}

// NewManager 创建 i18n Manager。
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  "zh-CN",
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadEmbeddedTranslations(); err != nil {
		return nil, err
	}
	if _, ok := m.translations[m.defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no locale file", m.defaultLang)
	}

	// 默认语言放在首位，matcher 无法匹配时回落到它。
	langs := m.Languages()
	m.tags = append(m.tags, language.Make(m.defaultLang))
	for _, lang := range langs {
		if lang != m.defaultLang {
			m.tags = append(m.tags, language.Make(lang))
		}
	}
	m.matcher = language.NewMatcher(m.tags)
	return m, nil
}

func (m *Manager) loadEmbeddedTranslations() error {
	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		data, err := embeddedLocales.ReadFile("locales/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}
		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}
		m.translations[lang] = content
	}
	return nil
}

// Match 返回与候选语言最接近的已支持语言，候选依次为 query、cookie、Accept-Language。
func (m *Manager) Match(candidates ...string) string {
	for _, raw := range candidates {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(raw)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, index, confidence := m.matcher.Match(tags...)
		if confidence == language.No {
			continue
		}
		return m.tags[index].String()
	}
	return m.defaultLang
}

// Translate 按语言与键名返回翻译内容，缺失时回退到默认语言，再回退为 key 本身。
func (m *Manager) Translate(lang, key string, args ...any) string {
	if tag, err := language.Parse(lang); err == nil {
		lang = tag.String()
	}
	value, ok := m.translations[lang][key]
	if !ok {
		value, ok = m.translations[m.defaultLang][key]
	}
	if !ok {
		m.logger.Debug("missing translation", "lang", lang, "key", key)
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(value, args...)
	}
	return value
}

// DefaultLanguage 返回默认语言。
func (m *Manager) DefaultLanguage() string {
	return m.defaultLang
}

// Languages 返回支持的语言列表（已排序）。
func (m *Manager) Languages() []string {
	langs := make([]string, 0, len(m.translations))
	for k := range m.translations {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

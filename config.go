package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"goc-doc-qa/llm"
	"goc-doc-qa/logger"
	"goc-doc-qa/models"

	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "config.json"
	defaultEnvPath    = ".env"

	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Config 애플리케이션 설정 구조체
type Config struct {
	APIKey       string `json:"api_key"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	BaseURL      string `json:"base_url"`
	NotionAPIKey string `json:"notion_api_key"`
	LogPath      string `json:"log_path"`
}

// envOverrides 환경 변수 이름과 덮어쓸 필드
var envOverrides = []struct {
	name  string
	field func(*Config) *string
}{
	{"API_KEY", func(c *Config) *string { return &c.APIKey }},
	{"DOCQA_PROVIDER", func(c *Config) *string { return &c.Provider }},
	{"DOCQA_MODEL", func(c *Config) *string { return &c.Model }},
	{"DOCQA_BASE_URL", func(c *Config) *string { return &c.BaseURL }},
	{"NOTION_API_KEY", func(c *Config) *string { return &c.NotionAPIKey }},
	{"DOCQA_LOG_PATH", func(c *Config) *string { return &c.LogPath }},
}

// LoadConfig .env 와 설정 파일에서 설정을 로드합니다
// 환경 변수가 파일 값보다 우선합니다. API 키가 없으면 오류를 반환합니다
func LoadConfig(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, models.E(models.KindConfig, ".env 파일 읽기 실패", err)
		}
	}

	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, models.E(models.KindConfig, "설정 파일 파싱 실패", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 파일이 없으면 환경 변수만 사용
	default:
		return nil, models.E(models.KindConfig, "설정 파일 읽기 실패", err)
	}

	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(v) != "" {
			*o.field(&config) = strings.TrimSpace(v)
		}
	}

	// 필수 값 검증
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, models.E(models.KindConfig, "api_key", models.ErrMissingCredential)
	}

	config.Provider = strings.ToLower(config.Provider)
	switch config.Provider {
	case "", llm.ProviderOpenAI:
		config.Provider = llm.ProviderOpenAI
		if config.Model == "" {
			config.Model = defaultOpenAIModel
		}
	case llm.ProviderGemini:
		if config.Model == "" {
			config.Model = defaultGeminiModel
		}
	default:
		return nil, models.E(models.KindConfig, "provider", fmt.Errorf("지원하지 않는 provider: %q", config.Provider))
	}

	if config.LogPath == "" {
		config.LogPath = logger.DefaultPath
	}

	return &config, nil
}

// ConfigErrorBanner 설정 오류 시 표시하는 고정 문구
func ConfigErrorBanner(err error) string {
	if errors.Is(err, models.ErrMissingCredential) {
		return fmt.Sprintf("🚨 ERROR: API key not found. Please add it to your secrets file. (%v)", err)
	}
	return fmt.Sprintf("🚨 ERROR: 설정 로드 실패: %v", err)
}

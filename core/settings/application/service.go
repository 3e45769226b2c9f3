package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brokerdesk/bd-wap/core/settings/domain"
	"github.com/brokerdesk/bd-wap/core/settings/infrastructure"
)

// SettingsService exposes the operator-tunable values stored in the
// database. It doubles as the assistant's SettingsSource.
type SettingsService struct {
	repo domain.ISettingsRepository
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		repo: infrastructure.NewSettingsGormRepository(db),
	}
}

func NewSettingsServiceWithRepo(repo domain.ISettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) InitSchema(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

type DynamicSettings struct {
	AssistantSystemPrompt string
	AssistantModel        string
	DashboardTitle        string
}

func (s *SettingsService) GetDynamicSettings(ctx context.Context) (*DynamicSettings, error) {
	ds := &DynamicSettings{}

	if val, err := s.repo.Get(ctx, domain.KeyAssistantSystemPrompt); err != nil {
		return nil, err
	} else {
		ds.AssistantSystemPrompt = val
	}
	if val, _ := s.repo.Get(ctx, domain.KeyAssistantModel); val != "" {
		ds.AssistantModel = val
	}
	if val, _ := s.repo.Get(ctx, domain.KeyDashboardTitle); val != "" {
		ds.DashboardTitle = val
	}
	return ds, nil
}

func (s *SettingsService) SetSystemPrompt(ctx context.Context, v string) error {
	return s.repo.Set(ctx, domain.KeyAssistantSystemPrompt, strings.TrimSpace(v))
}

func (s *SettingsService) SetAssistantModel(ctx context.Context, v string) error {
	return s.repo.Set(ctx, domain.KeyAssistantModel, strings.TrimSpace(v))
}

func (s *SettingsService) SetDashboardTitle(ctx context.Context, v string) error {
	return s.repo.Set(ctx, domain.KeyDashboardTitle, strings.TrimSpace(v))
}

// AssistantPrompt implements assistant/application.SettingsSource. Lookup
// failures fall back to the built-in default prompt.
func (s *SettingsService) AssistantPrompt() string {
	val, err := s.repo.Get(context.Background(), domain.KeyAssistantSystemPrompt)
	if err != nil {
		logrus.Warnf("[SETTINGS] failed to read system prompt override: %v", err)
		return ""
	}
	return val
}

// AssistantModel implements assistant/application.SettingsSource. An empty
// value leaves model choice to the configured or provider default.
func (s *SettingsService) AssistantModel() string {
	val, err := s.repo.Get(context.Background(), domain.KeyAssistantModel)
	if err != nil {
		logrus.Warnf("[SETTINGS] failed to read model override: %v", err)
		return ""
	}
	return val
}

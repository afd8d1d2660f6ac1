package settingsstore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/givin-app/givin/internal/database/settings"
	"github.com/givin-app/givin/internal/entities"
)

var (
	ErrOrganizationNameRequired = errors.New("organization name is required")
	ErrInvalidEIN               = errors.New("EIN must look like 12-3456789")
)

var einPattern = regexp.MustCompile(`^\d{2}-?\d{7}$`)

// Priority: database > environment > default
type SettingsStore struct {
	repo *settings.Repository
}

func New(repo *settings.Repository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

// OrganizationProfile describes the nonprofit using the installation.
type OrganizationProfile struct {
	Name                string `json:"name"`
	EIN                 string `json:"ein"`
	Mission             string `json:"mission"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

// OrganizationUpdate holds a partial profile change; nil fields are kept.
type OrganizationUpdate struct {
	Name                *string `json:"name"`
	EIN                 *string `json:"ein"`
	Mission             *string `json:"mission"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

// GetOrganization returns the stored profile, or an empty one.
func (s *SettingsStore) GetOrganization() (OrganizationProfile, error) {
	var profile OrganizationProfile
	if _, err := s.repo.GetJSON(entities.SettingKeyOrganizationProfile, &profile); err != nil {
		return OrganizationProfile{}, err
	}
	return profile, nil
}

// UpdateOrganization merges the update into the stored profile. Completing
// onboarding requires a name.
func (s *SettingsStore) UpdateOrganization(update OrganizationUpdate) (OrganizationProfile, error) {
	profile, err := s.GetOrganization()
	if err != nil {
		return profile, err
	}

	if update.Name != nil {
		profile.Name = strings.TrimSpace(*update.Name)
	}
	if update.EIN != nil {
		ein := strings.TrimSpace(*update.EIN)
		if ein != "" && !einPattern.MatchString(ein) {
			return profile, ErrInvalidEIN
		}
		profile.EIN = ein
	}
	if update.Mission != nil {
		profile.Mission = strings.TrimSpace(*update.Mission)
	}
	if update.OnboardingCompleted != nil {
		profile.OnboardingCompleted = *update.OnboardingCompleted
	}

	if profile.OnboardingCompleted && profile.Name == "" {
		return profile, ErrOrganizationNameRequired
	}

	if err := s.repo.SetJSON(entities.SettingKeyOrganizationProfile, profile); err != nil {
		return profile, fmt.Errorf("failed to save organization profile: %w", err)
	}
	return profile, nil
}

// GetInsightsReport returns the last generated insight report, if any.
func (s *SettingsStore) GetInsightsReport() (*entities.DonationMetrics, error) {
	var report entities.DonationMetrics
	found, err := s.repo.GetJSON(entities.SettingKeyInsightsLastReport, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

// SetInsightsReport stores the latest insight report.
func (s *SettingsStore) SetInsightsReport(report *entities.DonationMetrics) error {
	return s.repo.SetJSON(entities.SettingKeyInsightsLastReport, report)
}

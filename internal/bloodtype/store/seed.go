package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"bloodlink/internal/bloodtype/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	BloodTypes []struct {
		Group       string   `yaml:"group"`
		Description string   `yaml:"description"`
		CanGiveTo   []string `yaml:"can_give_to"`
	} `yaml:"blood_types"`
}

// Seeder is the subset of store operations seeding needs.
type Seeder interface {
	Create(ctx context.Context, bt *models.BloodType) error
	FindByGroup(ctx context.Context, group string) (*models.BloodType, error)
	UpsertRule(ctx context.Context, rule *models.CompatibilityRule) error
}

// Seed loads the embedded groups and matrix. Running it again leaves existing
// types alone and rewrites every rule to the seeded value.
func Seed(ctx context.Context, s Seeder, now time.Time) (int, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedYAML, &file); err != nil {
		return 0, fmt.Errorf("parse blood type seed: %w", err)
	}

	ids := make(map[string]domain.BloodTypeID, len(file.BloodTypes))
	created := 0
	for _, entry := range file.BloodTypes {
		existing, err := s.FindByGroup(ctx, entry.Group)
		if err == nil {
			ids[existing.Group] = existing.ID
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return created, fmt.Errorf("find blood type %s: %w", entry.Group, err)
		}
		bt, err := models.NewBloodType(domain.BloodTypeID(uuid.New()), entry.Group, entry.Description, now)
		if err != nil {
			return created, fmt.Errorf("seed blood type %s: %w", entry.Group, err)
		}
		if err := s.Create(ctx, bt); err != nil {
			return created, fmt.Errorf("create blood type %s: %w", entry.Group, err)
		}
		ids[bt.Group] = bt.ID
		created++
	}

	for _, donor := range file.BloodTypes {
		for _, recipient := range file.BloodTypes {
			rule := &models.CompatibilityRule{
				ID:              uuid.New(),
				DonorTypeID:     ids[donor.Group],
				RecipientTypeID: ids[recipient.Group],
				Compatible:      slices.Contains(donor.CanGiveTo, recipient.Group),
			}
			if err := s.UpsertRule(ctx, rule); err != nil {
				return created, fmt.Errorf("seed rule %s->%s: %w", donor.Group, recipient.Group, err)
			}
		}
	}
	return created, nil
}

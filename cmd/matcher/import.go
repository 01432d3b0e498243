package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"recruit-matcher/internal/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// recordImporter is implemented by the SQL stores.
type recordImporter interface {
	ImportRecords(ctx context.Context, candidates []models.Candidate, opportunities []models.Opportunity) error
}

type importFile struct {
	Candidates    []importCandidate   `yaml:"candidates"`
	Opportunities []importOpportunity `yaml:"opportunities"`
}

type importCandidate struct {
	ID                 string   `yaml:"id"`
	FullName           string   `yaml:"full_name"`
	PreferredLocations []string `yaml:"preferred_locations"`
	PreferredLevel     string   `yaml:"preferred_level"`
	SubjectSpecialty   string   `yaml:"subject_specialty"`
	YearsExperience    string   `yaml:"years_experience"`
	Status             string   `yaml:"status"`
}

type importOpportunity struct {
	ID                 string   `yaml:"id"`
	Kind               string   `yaml:"kind"`
	Title              string   `yaml:"title"`
	Location           string   `yaml:"location"`
	City               string   `yaml:"city"`
	LevelsOffered      []string `yaml:"levels_offered"`
	SubjectsNeeded     []string `yaml:"subjects_needed"`
	Functions          []string `yaml:"functions"`
	ExperienceRequired string   `yaml:"experience_required"`
	Active             *bool    `yaml:"active"`
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load candidates and opportunities from a YAML file into the SQL store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, opportunities, err := loadImportFile(args[0])
		if err != nil {
			return err
		}

		svc, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		importer, ok := svc.store.(recordImporter)
		if !ok {
			return fmt.Errorf("storage driver %q does not support imports", svc.cfg.StorageDriver)
		}

		if err := importer.ImportRecords(cmd.Context(), candidates, opportunities); err != nil {
			return err
		}

		fmt.Printf("imported %d candidates and %d opportunities\n", len(candidates), len(opportunities))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func loadImportFile(path string) ([]models.Candidate, []models.Opportunity, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read import file: %w", err)
	}

	var f importFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, nil, fmt.Errorf("parse import file: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(f.Candidates))
	for i, c := range f.Candidates {
		if strings.TrimSpace(c.ID) == "" {
			return nil, nil, fmt.Errorf("candidate #%d has no id", i+1)
		}
		candidates = append(candidates, models.Candidate{
			ID:                 strings.TrimSpace(c.ID),
			FullName:           c.FullName,
			PreferredLocations: models.NewStringSet(c.PreferredLocations...),
			PreferredLevel:     c.PreferredLevel,
			SubjectSpecialty:   c.SubjectSpecialty,
			YearsExperience:    c.YearsExperience,
			Status:             models.CandidateStatus(strings.ToLower(strings.TrimSpace(c.Status))),
		})
	}

	opportunities := make([]models.Opportunity, 0, len(f.Opportunities))
	for i, o := range f.Opportunities {
		if strings.TrimSpace(o.ID) == "" {
			return nil, nil, fmt.Errorf("opportunity #%d has no id", i+1)
		}

		kind := models.OpportunityKind(strings.ToLower(strings.TrimSpace(o.Kind)))
		switch kind {
		case "", models.OpportunityKindSchool, models.OpportunityKindJob:
		default:
			return nil, nil, fmt.Errorf("opportunity %s: unknown kind %q", o.ID, o.Kind)
		}

		active := true
		if o.Active != nil {
			active = *o.Active
		}

		opportunities = append(opportunities, models.Opportunity{
			ID:                 strings.TrimSpace(o.ID),
			Kind:               kind,
			Title:              o.Title,
			Location:           o.Location,
			City:               o.City,
			LevelsOffered:      models.NewStringSet(o.LevelsOffered...),
			SubjectsNeeded:     models.NewStringSet(o.SubjectsNeeded...),
			Functions:          models.NewStringSet(o.Functions...),
			ExperienceRequired: o.ExperienceRequired,
			IsActive:           active,
		})
	}

	return candidates, opportunities, nil
}

// Package seed fills a development database with sample forms, views and
// folders. Folders are created through the gateway so seeding exercises the
// same code paths as the API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/service/folders"
)

// Caller is the identity seeding runs as
var Caller = &models.Caller{
	UserID:       "seed",
	Capabilities: []string{"gform_full_access", "edit_gravityviews"},
}

type sampleFolder struct {
	kind    models.Kind
	name    string
	records []models.Record
}

// samples lists the folders to create with the records filed in each.
// Records in a folder named "" stay unassigned.
var samples = []sampleFolder{
	{models.KindForm, "Marketing", []models.Record{
		{ID: 1, Title: "Newsletter signup"},
		{ID: 2, Title: "Webinar registration"},
	}},
	{models.KindForm, "HR", []models.Record{
		{ID: 3, Title: "Job application"},
		{ID: 4, Title: "Leave request"},
	}},
	{models.KindForm, "", []models.Record{
		{ID: 5, Title: "Contact us"},
	}},
	{models.KindView, "Public", []models.Record{
		{ID: 101, Title: "Staff directory"},
		{ID: 102, Title: "Event calendar"},
		{ID: 103, Title: "Job board"},
	}},
	{models.KindView, "", []models.Record{
		{ID: 104, Title: "Submissions table"},
	}},
}

// Seeder writes the sample data
type Seeder struct {
	gateway *folders.Gateway
	records repositories.RecordStore
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(gateway *folders.Gateway, records repositories.RecordStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		gateway: gateway,
		records: records,
		logger:  logger,
	}
}

// Seed creates the sample records and folders. Records that already exist
// are kept; folders are always created anew.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, sample := range samples {
		ids := make([]models.RecordID, 0, len(sample.records))
		for _, r := range sample.records {
			record := r
			record.Kind = sample.kind
			record.Status = models.RecordStatusActive
			if err := s.records.Create(ctx, &record); err != nil && !errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("create %s %d: %w", sample.kind, r.ID, err)
			}
			ids = append(ids, record.ID)
		}

		if sample.name == "" {
			continue
		}

		res, err := s.run(ctx, folders.CreateFolder{Envelope: s.envelope(sample.kind), Name: sample.name})
		if err != nil {
			return err
		}
		folder := res.Data.(*models.Folder)

		if _, err := s.run(ctx, folders.AssignToFolder{Envelope: s.envelope(sample.kind), FolderID: folder.ID, RecordIDs: ids}); err != nil {
			return err
		}

		if sample.kind.Ordered() {
			reversed := make([]models.RecordID, len(ids))
			for i, id := range ids {
				reversed[len(ids)-1-i] = id
			}
			if _, err := s.run(ctx, folders.SaveOrder{Envelope: s.envelope(sample.kind), FolderID: folder.ID, RecordIDs: reversed}); err != nil {
				return err
			}
		}

		s.logger.Info("seeded folder",
			"kind", sample.kind,
			"name", sample.name,
			"records", len(ids),
		)
	}
	return nil
}

// Clear purges every folder and assignment of both kinds. Records stay.
func (s *Seeder) Clear(ctx context.Context) error {
	for _, kind := range models.Kinds {
		if _, err := s.run(ctx, folders.PurgeKind{Envelope: s.envelope(kind)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) envelope(kind models.Kind) folders.Envelope {
	return folders.Envelope{Kind: kind}
}

func (s *Seeder) run(ctx context.Context, cmd folders.Command) (*folders.Result, error) {
	res := s.gateway.ExecuteTrusted(ctx, Caller, cmd)
	if !res.Success {
		return nil, fmt.Errorf("%s: %s", cmd.Action(), res.Error.Message)
	}
	return res, nil
}

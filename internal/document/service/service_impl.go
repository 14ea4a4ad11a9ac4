package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	documentdomain "github.com/dirtfreecarpet/portal/internal/document/domain"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo documentdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo documentdomain.Repository
}

func New(p Params) documentdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("document.service"),
		repo: p.Repo,
	}
}

func (s *Service) History(ctx context.Context, req documentdomain.HistoryRequest) (documentdomain.History, error) {
	if req.CustomerID == 0 {
		return documentdomain.History{}, documentdomain.ErrInvalidCustomer
	}

	jobs, err := s.repo.ListCompletedJobs(ctx, s.db, req.CustomerID)
	if err != nil {
		return documentdomain.History{}, err
	}

	jobIDs := make([]snowflake.ID, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}

	photos, err := s.repo.ListPhotosByJobs(ctx, s.db, jobIDs)
	if err != nil {
		return documentdomain.History{}, err
	}
	photosByJob := make(map[snowflake.ID][]documentdomain.JobPhoto, len(jobs))
	for _, photo := range photos {
		photosByJob[photo.JobID] = append(photosByJob[photo.JobID], photo)
	}

	records := make([]documentdomain.ServiceRecord, 0, len(jobs))
	stats := documentdomain.HistoryStats{
		TotalServices: len(jobs),
		TotalPhotos:   len(photos),
	}
	for _, job := range jobs {
		records = append(records, documentdomain.ServiceRecord{
			JobID:          job.ID,
			ScheduledDate:  job.ScheduledDate,
			TechnicianName: job.TechnicianName,
			TotalAmount:    job.TotalAmount,
			Notes:          job.Notes,
			Services:       job.Services,
			Photos:         photosByJob[job.ID],
		})
	}

	// Jobs arrive newest first.
	if len(jobs) > 0 {
		last := jobs[0].ScheduledDate
		first := jobs[len(jobs)-1].ScheduledDate
		stats.LastServiceDate = &last
		stats.FirstServiceDate = &first
	}

	return documentdomain.History{Records: records, Stats: stats}, nil
}

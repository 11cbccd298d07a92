package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/alumni_connect/internal/model"
)

const (
	defaultDirectoryLimit = 20
	maxDirectoryLimit     = 100
)

// DirectoryService только читает: поиск выпускников и счётчики для дашборда
type DirectoryService struct {
	directory DirectoryStore
	approval  *ApprovalService
}

func NewDirectoryService(directory DirectoryStore, approval *ApprovalService) *DirectoryService {
	return &DirectoryService{
		directory: directory,
		approval:  approval,
	}
}

// SearchAlumni ищет среди одобренных и активных выпускников
func (s *DirectoryService) SearchAlumni(ctx context.Context, actorID int64, filter model.DirectoryFilter) ([]*model.AlumniEntry, error) {
	if _, err := s.approval.Actor(ctx, actorID); err != nil {
		return nil, err
	}

	filter = normalizeFilter(filter)

	entries, err := s.directory.SearchAlumni(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search alumni: %w", err)
	}

	if entries == nil {
		entries = []*model.AlumniEntry{}
	}
	return entries, nil
}

// Dashboard счётчики связей и заявок пользователя
func (s *DirectoryService) Dashboard(ctx context.Context, actorID int64) (*model.Dashboard, error) {
	if _, err := s.approval.Actor(ctx, actorID); err != nil {
		return nil, err
	}

	dashboard, err := s.directory.Dashboard(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("get dashboard: %w", err)
	}

	return dashboard, nil
}

func normalizeFilter(f model.DirectoryFilter) model.DirectoryFilter {
	f.Query = strings.TrimSpace(f.Query)
	f.Company = strings.TrimSpace(f.Company)
	f.Department = strings.TrimSpace(f.Department)
	f.Batch = strings.TrimSpace(f.Batch)

	if f.Limit <= 0 {
		f.Limit = defaultDirectoryLimit
	}
	if f.Limit > maxDirectoryLimit {
		f.Limit = maxDirectoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

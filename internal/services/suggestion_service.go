package services

import (
	"context"
	"fmt"
	"sort"

	"teamnet-go/internal/models"
	"teamnet-go/internal/storage"

	"go.uber.org/zap"
)

// maxSuggestions bounds how many candidates a single suggest call returns.
const maxSuggestions = 5

// SuggestionService ranks candidate members a viewer might want to connect
// with, based on graduation-year proximity and role complementarity.
type SuggestionService interface {
	// Suggest returns up to five candidates for the viewer, excluding the
	// viewer themselves, anyone in dismissed, and anyone already linked to
	// the viewer by a connection record in any status.
	Suggest(ctx context.Context, viewerID uint, dismissed []uint) (*models.SuggestionListView, error)
}

type suggestionService struct {
	userRepo       storage.UserRepository
	connectionRepo storage.ConnectionRepository
	logger         *zap.Logger
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(userRepo storage.UserRepository, connectionRepo storage.ConnectionRepository, logger *zap.Logger) SuggestionService {
	return &suggestionService{userRepo: userRepo, connectionRepo: connectionRepo, logger: logger}
}

func (s *suggestionService) Suggest(ctx context.Context, viewerID uint, dismissed []uint) (*models.SuggestionListView, error) {
	viewer, err := s.userRepo.GetByIDWithRoles(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer %d: %w", viewerID, err)
	}

	excluded := make(map[uint]bool, len(dismissed))
	for _, id := range dismissed {
		excluded[id] = true
	}
	// Any connection record counts for exclusion, rejected ones included, so
	// a declined request never resurfaces as a suggestion.
	connectedIDs, err := s.connectionRepo.ConnectedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connected user ids for %d: %w", viewerID, err)
	}
	for _, id := range connectedIDs {
		excluded[id] = true
	}

	candidates, err := s.userRepo.ListAllWithRoles(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate users: %w", err)
	}

	viewerIsAlumni := viewer.HasApprovedRole(models.RoleAlumni)

	scored := make([]models.SuggestedUser, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if excluded[candidate.ID] {
			continue
		}
		scored = append(scored, models.SuggestedUser{
			User: &models.UserBasicInfo{
				ID:             candidate.ID,
				Username:       candidate.Username,
				FullName:       candidate.FullName,
				AvatarURL:      candidate.AvatarURL,
				GraduationYear: candidate.GraduationYear,
				Online:         candidate.Online,
			},
			Score: affinityScore(viewer, candidate, viewerIsAlumni),
		})
	}

	// Stable sort keeps the repository's order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxSuggestions {
		scored = scored[:maxSuggestions]
	}
	return &models.SuggestionListView{Candidates: scored}, nil
}

// affinityScore computes the heuristic ranking score for one candidate.
func affinityScore(viewer, candidate *models.User, viewerIsAlumni bool) int {
	score := 0
	if viewer.GraduationYear != nil && candidate.GraduationYear != nil {
		diff := *viewer.GraduationYear - *candidate.GraduationYear
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			score += 10
		}
		// Additive with the equal-year bonus, so classmates score 15.
		if diff <= 2 {
			score += 5
		}
	}
	if viewerIsAlumni && candidate.HasApprovedRole(models.RoleStudent) {
		score += 8
	}
	return score
}

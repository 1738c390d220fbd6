package services_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"teamnet-go/internal/models"
	"teamnet-go/internal/services"
)

func intPtr(v int) *int { return &v }

func addUser(t *testing.T, repo *fakeUserRepo, id uint, username string, gradYear *int, roles ...models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:       username,
		GraduationYear: gradYear,
		Roles:          roles,
	}
	user.ID = id
	return repo.add(user)
}

func approvedRole(name models.RoleName) models.Role {
	return models.Role{Name: name, Status: models.RoleStatusApproved}
}

func TestSuggestExcludesSelfConnectedAndDismissed(t *testing.T) {
	userRepo := newFakeUserRepo()
	connRepo := newFakeConnectionRepo()
	svc := services.NewSuggestionService(userRepo, connRepo, zap.NewNop())

	viewer := addUser(t, userRepo, 1, "viewer", intPtr(2026))
	addUser(t, userRepo, 2, "connected", intPtr(2026))
	addUser(t, userRepo, 3, "dismissed", intPtr(2026))
	addUser(t, userRepo, 4, "fresh", intPtr(2026))
	addUser(t, userRepo, 5, "rejected-before", intPtr(2026))

	if err := connRepo.Create(context.Background(), &models.Connection{
		RequesterID: viewer.ID, ReceiverID: 2, Status: models.ConnectionStatusAccepted,
	}); err != nil {
		t.Fatal(err)
	}
	// A rejected record still excludes the pair from suggestions.
	if err := connRepo.Create(context.Background(), &models.Connection{
		RequesterID: 5, ReceiverID: viewer.ID, Status: models.ConnectionStatusRejected,
	}); err != nil {
		t.Fatal(err)
	}

	view, err := svc.Suggest(context.Background(), viewer.ID, []uint{3})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if len(view.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(view.Candidates))
	}
	if view.Candidates[0].User.ID != 4 {
		t.Errorf("expected candidate 4, got %d", view.Candidates[0].User.ID)
	}
}

func TestSuggestScoring(t *testing.T) {
	userRepo := newFakeUserRepo()
	connRepo := newFakeConnectionRepo()
	svc := services.NewSuggestionService(userRepo, connRepo, zap.NewNop())

	addUser(t, userRepo, 1, "viewer", intPtr(2026))
	addUser(t, userRepo, 2, "classmate", intPtr(2026))   // 10 + 5
	addUser(t, userRepo, 3, "near", intPtr(2028))        // 5
	addUser(t, userRepo, 4, "far", intPtr(2031))         // 0
	addUser(t, userRepo, 5, "no-year", nil)              // 0

	view, err := svc.Suggest(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	scores := make(map[uint]int)
	for _, c := range view.Candidates {
		scores[c.User.ID] = c.Score
	}
	if scores[2] != 15 {
		t.Errorf("classmate score = %d, want 15", scores[2])
	}
	if scores[3] != 5 {
		t.Errorf("near-year score = %d, want 5", scores[3])
	}
	if scores[4] != 0 {
		t.Errorf("far-year score = %d, want 0", scores[4])
	}
	if scores[5] != 0 {
		t.Errorf("missing-year score = %d, want 0", scores[5])
	}
	if view.Candidates[0].User.ID != 2 {
		t.Errorf("expected classmate ranked first, got user %d", view.Candidates[0].User.ID)
	}
}

func TestSuggestAlumniStudentBonus(t *testing.T) {
	userRepo := newFakeUserRepo()
	connRepo := newFakeConnectionRepo()
	svc := services.NewSuggestionService(userRepo, connRepo, zap.NewNop())

	addUser(t, userRepo, 1, "alumni-viewer", nil, approvedRole(models.RoleAlumni))
	addUser(t, userRepo, 2, "student", nil, approvedRole(models.RoleStudent))
	addUser(t, userRepo, 3, "pending-student", nil,
		models.Role{Name: models.RoleStudent, Status: models.RoleStatusPending})
	addUser(t, userRepo, 4, "mentor", nil, approvedRole(models.RoleMentor))

	view, err := svc.Suggest(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	scores := make(map[uint]int)
	for _, c := range view.Candidates {
		scores[c.User.ID] = c.Score
	}
	if scores[2] != 8 {
		t.Errorf("approved student score = %d, want 8", scores[2])
	}
	// Pending role requests do not count as held roles.
	if scores[3] != 0 {
		t.Errorf("pending student score = %d, want 0", scores[3])
	}
	if scores[4] != 0 {
		t.Errorf("mentor score = %d, want 0", scores[4])
	}
}

func TestSuggestScoreMonotonicityInYearDistance(t *testing.T) {
	userRepo := newFakeUserRepo()
	connRepo := newFakeConnectionRepo()
	svc := services.NewSuggestionService(userRepo, connRepo, zap.NewNop())

	addUser(t, userRepo, 1, "viewer", intPtr(2026))
	addUser(t, userRepo, 2, "same-year", intPtr(2026))
	addUser(t, userRepo, 3, "five-off", intPtr(2031))

	view, err := svc.Suggest(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	scores := make(map[uint]int)
	for _, c := range view.Candidates {
		scores[c.User.ID] = c.Score
	}
	if scores[2] < scores[3] {
		t.Errorf("same-year score %d should be >= distant-year score %d", scores[2], scores[3])
	}
}

func TestSuggestReturnsAtMostFive(t *testing.T) {
	userRepo := newFakeUserRepo()
	connRepo := newFakeConnectionRepo()
	svc := services.NewSuggestionService(userRepo, connRepo, zap.NewNop())

	addUser(t, userRepo, 1, "viewer", intPtr(2026))
	for id := uint(2); id <= 10; id++ {
		addUser(t, userRepo, id, "candidate", intPtr(2026))
	}

	view, err := svc.Suggest(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(view.Candidates) != 5 {
		t.Errorf("expected 5 candidates, got %d", len(view.Candidates))
	}
}

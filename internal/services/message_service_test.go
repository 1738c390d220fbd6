package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"teamnet-go/internal/config"
	"teamnet-go/internal/models"
	"teamnet-go/internal/services"
)

func newMessageService(userRepo *fakeUserRepo, messageRepo *fakeMessageRepo, blockRepo *fakeBlockRepo) services.MessageService {
	return services.NewMessageService(messageRepo, userRepo, blockRepo, nil, config.KafkaConfig{}, zap.NewNop())
}

func twoUsers(t *testing.T, userRepo *fakeUserRepo) (uint, uint) {
	t.Helper()
	alice := addUser(t, userRepo, 1, "alice", nil)
	bob := addUser(t, userRepo, 2, "bob", nil)
	return alice.ID, bob.ID
}

func TestSendValidationBoundary(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newMessageService(userRepo, newFakeMessageRepo(), &fakeBlockRepo{})
	alice, bob := twoUsers(t, userRepo)

	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", services.ErrEmptyMessage},
		{"whitespace only", "   \t\n", services.ErrEmptyMessage},
		{"at the bound", strings.Repeat("x", models.MaxMessageLength), nil},
		{"over the bound", strings.Repeat("x", models.MaxMessageLength+1), services.ErrMessageTooLong},
		{"multibyte at the bound", strings.Repeat("é", models.MaxMessageLength), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), alice, bob, tc.content)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Send() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSendToUnknownReceiver(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newMessageService(userRepo, newFakeMessageRepo(), &fakeBlockRepo{})
	alice := addUser(t, userRepo, 1, "alice", nil)

	_, err := svc.Send(context.Background(), alice.ID, 99, "hello")
	if !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("Send() error = %v, want ErrUserNotFound", err)
	}
}

func TestSendBlockedEitherDirection(t *testing.T) {
	userRepo := newFakeUserRepo()
	blockRepo := &fakeBlockRepo{}
	svc := newMessageService(userRepo, newFakeMessageRepo(), blockRepo)
	alice, bob := twoUsers(t, userRepo)

	// Bob blocked Alice; the guard must stop Alice's sends too.
	if err := blockRepo.Create(context.Background(), &models.BlockRecord{BlockerID: bob, BlockedID: alice}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Send(context.Background(), alice, bob, "hello"); !errors.Is(err, services.ErrBlocked) {
		t.Errorf("Send() alice->bob error = %v, want ErrBlocked", err)
	}
	if _, err := svc.Send(context.Background(), bob, alice, "hello"); !errors.Is(err, services.ErrBlocked) {
		t.Errorf("Send() bob->alice error = %v, want ErrBlocked", err)
	}
}

func TestListConversationsGrouping(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newMessageService(userRepo, newFakeMessageRepo(), &fakeBlockRepo{})
	alice, bob := twoUsers(t, userRepo)
	carol := addUser(t, userRepo, 3, "carol", nil).ID

	ctx := context.Background()
	if _, err := svc.Send(ctx, alice, bob, "first to bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, bob, alice, "reply from bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, alice, carol, "hello carol"); err != nil {
		t.Fatal(err)
	}

	summaries, err := svc.ListConversations(ctx, alice)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(summaries))
	}

	// Carol's conversation is the most recently active.
	if summaries[0].PartnerID != carol {
		t.Errorf("first summary partner = %d, want %d", summaries[0].PartnerID, carol)
	}
	if summaries[0].LastMessage != "hello carol" {
		t.Errorf("carol last message = %q", summaries[0].LastMessage)
	}
	if summaries[1].PartnerID != bob {
		t.Errorf("second summary partner = %d, want %d", summaries[1].PartnerID, bob)
	}
	if summaries[1].LastMessage != "reply from bob" {
		t.Errorf("bob last message = %q", summaries[1].LastMessage)
	}
	// Bob's reply is unread for Alice; her own messages never count.
	if summaries[1].UnreadCount != 1 {
		t.Errorf("bob conversation unread = %d, want 1", summaries[1].UnreadCount)
	}
	if summaries[0].UnreadCount != 0 {
		t.Errorf("carol conversation unread = %d, want 0", summaries[0].UnreadCount)
	}
}

func TestOpenConversationMarksReadIdempotently(t *testing.T) {
	userRepo := newFakeUserRepo()
	messageRepo := newFakeMessageRepo()
	svc := newMessageService(userRepo, messageRepo, &fakeBlockRepo{})
	alice, bob := twoUsers(t, userRepo)

	ctx := context.Background()
	if _, err := svc.Send(ctx, bob, alice, "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, bob, alice, "two"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, alice, bob, "from alice"); err != nil {
		t.Fatal(err)
	}

	messages, err := svc.OpenConversation(ctx, alice, bob)
	if err != nil {
		t.Fatalf("OpenConversation failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	// Ascending by creation time.
	if messages[0].Content != "one" || messages[2].Content != "from alice" {
		t.Errorf("unexpected message order: %q .. %q", messages[0].Content, messages[2].Content)
	}

	unread, err := svc.CountUnread(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if unread != 0 {
		t.Errorf("unread after open = %d, want 0", unread)
	}

	// A second open changes nothing.
	if _, err := svc.OpenConversation(ctx, alice, bob); err != nil {
		t.Fatalf("second OpenConversation failed: %v", err)
	}
	unread, _ = svc.CountUnread(ctx, alice)
	if unread != 0 {
		t.Errorf("unread after second open = %d, want 0", unread)
	}

	// Opening never touches the opposite direction: Alice's message to Bob
	// stays unread for Bob.
	bobUnread, _ := svc.CountUnread(ctx, bob)
	if bobUnread != 1 {
		t.Errorf("bob unread = %d, want 1", bobUnread)
	}
}

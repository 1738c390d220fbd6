package services_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"teamnet-go/internal/models"
)

// In-memory repository fakes backing the service tests. They mirror the
// query semantics of the GORM implementations closely enough for the
// behavior under test: ordering, both-direction pair matching and
// gorm.ErrRecordNotFound on missing rows.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByIDWithRoles(ctx context.Context, id uint) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePresence(ctx context.Context, userID uint, online bool, lastSeen time.Time) error {
	if user, ok := r.users[userID]; ok {
		user.Online = online
		user.LastSeenAt = &lastSeen
	}
	return nil
}

func (r *fakeUserRepo) SearchUsers(ctx context.Context, query string, currentUserID uint) ([]models.User, error) {
	var result []models.User
	needle := strings.ToLower(query)
	for _, id := range r.sortedIDs() {
		u := r.users[id]
		if u.ID == currentUserID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), needle) ||
			strings.Contains(strings.ToLower(u.FullName), needle) {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListAllWithRoles(ctx context.Context, excludeUserID uint) ([]models.User, error) {
	var result []models.User
	for _, id := range r.sortedIDs() {
		if id == excludeUserID {
			continue
		}
		result = append(result, *r.users[id])
	}
	return result, nil
}

func (r *fakeUserRepo) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return basicInfo(user), nil
}

func (r *fakeUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	var result []*models.UserBasicInfo
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok {
			result = append(result, basicInfo(user))
		}
	}
	return result, nil
}

func (r *fakeUserRepo) sortedIDs() []uint {
	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func basicInfo(u *models.User) *models.UserBasicInfo {
	return &models.UserBasicInfo{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		AvatarURL:      u.AvatarURL,
		GraduationYear: u.GraduationYear,
		Online:         u.Online,
	}
}

type fakeConnectionRepo struct {
	connections []*models.Connection
	nextID      uint
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{nextID: 1}
}

func (r *fakeConnectionRepo) Create(ctx context.Context, connection *models.Connection) error {
	connection.ID = r.nextID
	r.nextID++
	connection.CreatedAt = time.Now().Add(time.Duration(connection.ID) * time.Millisecond)
	r.connections = append(r.connections, connection)
	return nil
}

func (r *fakeConnectionRepo) GetByID(ctx context.Context, id uint) (*models.Connection, error) {
	for _, c := range r.connections {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConnectionRepo) UpdateStatus(ctx context.Context, id uint, status models.ConnectionStatus) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

func (r *fakeConnectionRepo) Delete(ctx context.Context, id uint) error {
	for i, c := range r.connections {
		if c.ID == id {
			r.connections = append(r.connections[:i], r.connections[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeConnectionRepo) ListForUser(ctx context.Context, userID uint) ([]models.Connection, error) {
	var result []models.Connection
	// Newest first, matching the repository's created_at DESC ordering.
	for i := len(r.connections) - 1; i >= 0; i-- {
		c := r.connections[i]
		if c.Involves(userID) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeConnectionRepo) FindActiveBetween(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	for _, c := range r.connections {
		if c.Status == models.ConnectionStatusRejected {
			continue
		}
		if (c.RequesterID == userID1 && c.ReceiverID == userID2) ||
			(c.RequesterID == userID2 && c.ReceiverID == userID1) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for _, c := range r.connections {
		if c.RequesterID == userID {
			ids = append(ids, c.ReceiverID)
		} else if c.ReceiverID == userID {
			ids = append(ids, c.RequesterID)
		}
	}
	return ids, nil
}

type fakeMessageRepo struct {
	messages []*models.Message
	nextID   uint
	clock    time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1, clock: time.Now()}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Millisecond)
	message.CreatedAt = r.clock
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) ListBetweenUsers(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	var result []*models.Message
	for _, m := range r.messages {
		if (m.SenderID == userID && m.ReceiverID == partnerID) ||
			(m.SenderID == partnerID && m.ReceiverID == userID) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) ListForUser(ctx context.Context, userID uint) ([]*models.Message, error) {
	var result []*models.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, userID, partnerID uint) (int64, error) {
	var affected int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && m.SenderID == partnerID && !m.Read {
			m.Read = true
			affected++
		}
	}
	return affected, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
	nextID        uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = r.nextID
	r.nextID++
	notification.CreatedAt = time.Now().Add(time.Duration(notification.ID) * time.Millisecond)
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) ListForRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var result []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.RecipientID != recipientID {
			continue
		}
		result = append(result, *n)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uint) error {
	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uint) error {
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type fakeBlockRepo struct {
	blocks []*models.BlockRecord
}

func (r *fakeBlockRepo) Create(ctx context.Context, block *models.BlockRecord) error {
	block.ID = uint(len(r.blocks) + 1)
	r.blocks = append(r.blocks, block)
	return nil
}

func (r *fakeBlockRepo) ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	for _, b := range r.blocks {
		if (b.BlockerID == userID1 && b.BlockedID == userID2) ||
			(b.BlockerID == userID2 && b.BlockedID == userID1) {
			return true, nil
		}
	}
	return false, nil
}

type fakeReportRepo struct {
	reports []*models.Report
}

func (r *fakeReportRepo) Create(ctx context.Context, report *models.Report) error {
	report.ID = uint(len(r.reports) + 1)
	r.reports = append(r.reports, report)
	return nil
}

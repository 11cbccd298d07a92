// Package memstore is an in-memory implementation of the service storage
// interfaces. It reproduces the guarantees of the PostgreSQL schema: one
// connection per unordered pair, conditional status updates, foreign keys and
// most-recent-first ordering.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/alumni_connect/internal/model"
)

// Store holds all tables behind one mutex
type Store struct {
	mu          sync.Mutex
	seq         int64
	clock       time.Time
	users       map[int64]*model.User
	connections map[int64]*model.Connection
	mentorships map[int64]*model.MentorshipRequest
}

func New() *Store {
	return &Store{
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:       make(map[int64]*model.User),
		connections: make(map[int64]*model.Connection),
		mentorships: make(map[int64]*model.MentorshipRequest),
	}
}

// Users returns the service.UserStore view
func (s *Store) Users() *Users { return &Users{s: s} }

// Connections returns the service.ConnectionStore view
func (s *Store) Connections() *Connections { return &Connections{s: s} }

// Mentorships returns the service.MentorshipStore view
func (s *Store) Mentorships() *Mentorships { return &Mentorships{s: s} }

// Directory returns the service.DirectoryStore view
func (s *Store) Directory() *Directory { return &Directory{s: s} }

// next returns a new id and a strictly increasing timestamp; caller holds mu
func (s *Store) next() (int64, time.Time) {
	s.seq++
	return s.seq, s.clock.Add(time.Duration(s.seq) * time.Second)
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

// ============ Users ============

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *model.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.PhoneNumber == user.PhoneNumber {
			return model.ErrUserExists
		}
	}

	user.ID, user.CreatedAt = s.next()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (u *Users) GetByID(_ context.Context, id int64) (*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		return copyUser(user), nil
	}
	return nil, nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (u *Users) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email || user.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (u *Users) VerifyOTP(_ context.Context, phone, code string, now time.Time) (*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.PhoneNumber != phone || user.OTPCode == nil || *user.OTPCode != code {
			continue
		}
		if user.OTPExpiry == nil || !user.OTPExpiry.After(now) {
			continue
		}
		user.IsVerified = true
		user.OTPCode = nil
		user.OTPExpiry = nil
		return copyUser(user), nil
	}
	return nil, nil
}

func (u *Users) SetApproval(_ context.Context, id int64, approved, active bool) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.ErrNotFoundOrUnauthorized
	}
	user.IsApproved = approved
	user.IsActive = active
	return nil
}

func (u *Users) ToggleActive(_ context.Context, id int64) (bool, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return false, model.ErrNotFoundOrUnauthorized
	}
	user.IsActive = !user.IsActive
	return user.IsActive, nil
}

func (u *Users) SetMentorshipAvailability(_ context.Context, alumniID int64, available bool) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[alumniID]
	if !ok {
		return model.ErrNotFoundOrUnauthorized
	}
	profile, ok := user.Profile.(model.AlumniProfile)
	if !ok {
		return model.ErrNotFoundOrUnauthorized
	}
	profile.MentorshipAvailable = available
	user.Profile = profile
	return nil
}

func (u *Users) ToggleMentorshipAvailability(_ context.Context, alumniID int64) (bool, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[alumniID]
	if !ok {
		return false, model.ErrNotFoundOrUnauthorized
	}
	profile, ok := user.Profile.(model.AlumniProfile)
	if !ok {
		return false, model.ErrNotFoundOrUnauthorized
	}
	profile.MentorshipAvailable = !profile.MentorshipAvailable
	user.Profile = profile
	return profile.MentorshipAvailable, nil
}

// UpdateProfile keeps moderation flags and mentorship availability as stored
func (u *Users) UpdateProfile(_ context.Context, user *model.User) (*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	switch p := user.Profile.(type) {
	case model.StudentProfile:
		if _, ok := stored.Profile.(model.StudentProfile); !ok {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		stored.Profile = p
	case model.AlumniProfile:
		current, ok := stored.Profile.(model.AlumniProfile)
		if !ok {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		p.MentorshipAvailable = current.MentorshipAvailable
		stored.Profile = p
	default:
		return nil, model.ErrForbidden
	}

	stored.Name = user.Name
	stored.College = user.College
	return copyUser(stored), nil
}

func (u *Users) ListAll(_ context.Context) ([]*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (u *Users) ListPendingAlumni(_ context.Context) ([]*model.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*model.User
	for _, user := range s.users {
		if user.Role() == model.RoleAlumni && user.IsVerified && !user.IsApproved && user.IsActive {
			pending = append(pending, copyUser(user))
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	return pending, nil
}

// ============ Connections ============

type Connections struct{ s *Store }

func (c *Connections) Create(_ context.Context, conn *model.Connection) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[conn.RequesterID]; !ok {
		return model.ErrNotFoundOrUnauthorized
	}
	if _, ok := s.users[conn.ReceiverID]; !ok {
		return model.ErrNotFoundOrUnauthorized
	}

	for _, existing := range s.connections {
		samePair := (existing.RequesterID == conn.RequesterID && existing.ReceiverID == conn.ReceiverID) ||
			(existing.RequesterID == conn.ReceiverID && existing.ReceiverID == conn.RequesterID)
		if samePair {
			return model.ErrDuplicateRelationship
		}
	}

	conn.ID, conn.CreatedAt = s.next()
	stored := *conn
	s.connections[conn.ID] = &stored
	return nil
}

func (c *Connections) GetByID(_ context.Context, id int64) (*model.Connection, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if conn, ok := s.connections[id]; ok {
		cp := *conn
		return &cp, nil
	}
	return nil, nil
}

func (c *Connections) ResolveIfPending(_ context.Context, id, receiverID int64, status model.RelationshipStatus) (*model.Connection, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok || conn.ReceiverID != receiverID || conn.Status != model.StatusPending {
		return nil, nil
	}

	_, now := s.next()
	conn.Status = status
	conn.UpdatedAt = &now

	cp := *conn
	return &cp, nil
}

func (c *Connections) ListPendingForReceiver(_ context.Context, receiverID int64) ([]*model.PendingConnection, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*model.PendingConnection
	for _, conn := range sortedConnections(s.connections) {
		if conn.ReceiverID != receiverID || conn.Status != model.StatusPending {
			continue
		}
		requester := s.users[conn.RequesterID]
		p := &model.PendingConnection{
			ConnectionID: conn.ID,
			RequesterID:  requester.ID,
			Name:         requester.Name,
			Email:        requester.Email,
			Role:         requester.Role(),
			CreatedAt:    conn.CreatedAt,
		}
		switch profile := requester.Profile.(type) {
		case model.StudentProfile:
			p.Department, p.Batch, p.ResumeURL = profile.Department, profile.Batch, profile.ResumeURL
		case model.AlumniProfile:
			p.Department, p.Batch = profile.Department, profile.Batch
		}
		pending = append(pending, p)
	}
	return pending, nil
}

func (c *Connections) ListAccepted(_ context.Context, userID int64) ([]*model.ConnectedPeer, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var peers []*model.ConnectedPeer
	for _, conn := range sortedConnections(s.connections) {
		if conn.Status != model.StatusAccepted || !model.HasParty(conn, userID) {
			continue
		}
		otherID := conn.RequesterID
		if otherID == userID {
			otherID = conn.ReceiverID
		}
		other := s.users[otherID]
		peers = append(peers, &model.ConnectedPeer{
			ConnectionID: conn.ID,
			ID:           other.ID,
			Name:         other.Name,
			Role:         other.Role(),
			College:      other.College,
			Email:        other.Email,
			Status:       conn.Status,
			CreatedAt:    conn.CreatedAt,
		})
	}
	return peers, nil
}

// sortedConnections orders by created_at desc, id desc
func sortedConnections(m map[int64]*model.Connection) []*model.Connection {
	list := make([]*model.Connection, 0, len(m))
	for _, c := range m {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list
}

// ============ Mentorship requests ============

type Mentorships struct{ s *Store }

func (m *Mentorships) Create(_ context.Context, req *model.MentorshipRequest) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.StudentID]; !ok {
		return model.ErrNotFoundOrUnauthorized
	}
	if _, ok := s.users[req.AlumniID]; !ok {
		return model.ErrNotFoundOrUnauthorized
	}

	req.ID, req.CreatedAt = s.next()
	stored := *req
	s.mentorships[req.ID] = &stored
	return nil
}

func (m *Mentorships) GetByID(_ context.Context, id int64) (*model.MentorshipRequest, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if req, ok := s.mentorships[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (m *Mentorships) GetView(_ context.Context, id int64) (*model.MentorshipView, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.mentorships[id]
	if !ok {
		return nil, nil
	}
	return s.view(req), nil
}

func (m *Mentorships) ResolveIfPending(_ context.Context, id, alumniID int64, status model.RelationshipStatus) (*model.MentorshipRequest, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.mentorships[id]
	if !ok || req.AlumniID != alumniID || req.Status != model.StatusPending {
		return nil, nil
	}

	_, now := s.next()
	req.Status = status
	req.UpdatedAt = &now

	cp := *req
	return &cp, nil
}

func (m *Mentorships) ListByParty(_ context.Context, userID int64, role model.Role) ([]*model.MentorshipView, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listViews(func(r *model.MentorshipRequest) bool {
		switch role {
		case model.RoleStudent:
			return r.StudentID == userID
		case model.RoleAlumni:
			return r.AlumniID == userID
		default:
			return model.HasParty(r, userID)
		}
	}), nil
}

func (m *Mentorships) ListPendingForAlumni(_ context.Context, alumniID int64) ([]*model.MentorshipView, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listViews(func(r *model.MentorshipRequest) bool {
		return r.AlumniID == alumniID && r.Status == model.StatusPending
	}), nil
}

// listViews filters and orders most recent first; caller holds mu
func (s *Store) listViews(keep func(*model.MentorshipRequest) bool) []*model.MentorshipView {
	var views []*model.MentorshipView
	for _, req := range s.mentorships {
		if keep(req) {
			views = append(views, s.view(req))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views
}

// view joins a request with its parties; caller holds mu
func (s *Store) view(req *model.MentorshipRequest) *model.MentorshipView {
	v := &model.MentorshipView{MentorshipRequest: *req}
	if student, ok := s.users[req.StudentID]; ok {
		v.StudentName = student.Name
		v.StudentEmail = student.Email
	}
	if alumni, ok := s.users[req.AlumniID]; ok {
		v.AlumniName = alumni.Name
		if p, ok := alumni.Profile.(model.AlumniProfile); ok {
			v.AlumniCompany = p.Company
			v.AlumniJobRole = p.JobRole
		}
	}
	return v
}

// ============ Directory ============

type Directory struct{ s *Store }

func (d *Directory) SearchAlumni(_ context.Context, f model.DirectoryFilter) ([]*model.AlumniEntry, error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*model.AlumniEntry
	for _, user := range s.users {
		p, ok := user.Profile.(model.AlumniProfile)
		if !ok || !user.IsVerified || !user.IsApproved || !user.IsActive {
			continue
		}
		if f.Query != "" && !containsFold(&user.Name, f.Query) && !containsFold(p.Company, f.Query) &&
			!containsFold(p.JobRole, f.Query) && !containsFold(p.Skills, f.Query) {
			continue
		}
		if f.Company != "" && !containsFold(p.Company, f.Company) {
			continue
		}
		if f.Department != "" && (p.Department == nil || !strings.EqualFold(*p.Department, f.Department)) {
			continue
		}
		if f.Batch != "" && (p.Batch == nil || *p.Batch != f.Batch) {
			continue
		}
		if f.AvailableOnly && !p.MentorshipAvailable {
			continue
		}
		entries = append(entries, &model.AlumniEntry{
			ID:                  user.ID,
			Name:                user.Name,
			Email:               user.Email,
			College:             user.College,
			Company:             p.Company,
			JobRole:             p.JobRole,
			Batch:               p.Batch,
			Department:          p.Department,
			Skills:              p.Skills,
			MentorshipAvailable: p.MentorshipAvailable,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})

	if f.Offset >= len(entries) {
		return nil, nil
	}
	entries = entries[f.Offset:]
	if f.Limit > 0 && len(entries) > f.Limit {
		entries = entries[:f.Limit]
	}
	return entries, nil
}

func (d *Directory) Dashboard(_ context.Context, userID int64) (*model.Dashboard, error) {
	s := d.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var dash model.Dashboard
	for _, c := range s.connections {
		switch {
		case c.Status == model.StatusPending && c.ReceiverID == userID:
			dash.PendingConnections++
		case c.Status == model.StatusAccepted && model.HasParty(c, userID):
			dash.AcceptedConnections++
		}
	}
	for _, r := range s.mentorships {
		if !model.HasParty(r, userID) {
			continue
		}
		switch r.Status {
		case model.StatusPending:
			dash.PendingMentorships++
		case model.StatusAccepted:
			dash.AcceptedMentorships++
		case model.StatusRejected:
			dash.RejectedMentorships++
		}
	}
	return &dash, nil
}

func containsFold(s *string, sub string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}

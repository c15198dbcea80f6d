package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/donatrack/donatrack/internal/cache"
	"github.com/donatrack/donatrack/internal/model"
	"github.com/donatrack/donatrack/internal/repository"
)

type fakeUserStore struct {
	users   map[string]*model.User
	updated map[int64]string
	err     error
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*model.User), updated: make(map[int64]string)}
	for _, u := range users {
		s.users[u.Username] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	s.updated[id] = hash
	return nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (r *fakeRevoker) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *fakeRevoker) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// fakeDonationStore keeps donations in memory and aggregates them like the SQL queries do.
type fakeDonationStore struct {
	projects  []*model.Project
	donations []*model.Donation
	nextID    int64
	now       func() time.Time
	err       error
}

func newFakeDonationStore(now func() time.Time, projects ...*model.Project) *fakeDonationStore {
	return &fakeDonationStore{projects: projects, nextID: 1, now: now}
}

func (s *fakeDonationStore) project(id int64) *model.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *fakeDonationStore) add(donor string, projectID int64, amount float64, at time.Time) *model.Donation {
	p := s.project(projectID)
	d := &model.Donation{
		ID:           s.nextID,
		DonorName:    donor,
		ProjectID:    &p.ID,
		ProjectName:  &p.Name,
		Amount:       amount,
		DonationDate: at,
		CreatedAt:    at,
	}
	s.nextID++
	s.donations = append(s.donations, d)
	return d
}

func (s *fakeDonationStore) CreateDonation(ctx context.Context, donorName string, projectID int64, amount float64) (*model.Donation, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.project(projectID) == nil {
		return nil, repository.ErrProjectNotFound
	}
	return s.add(donorName, projectID, amount, s.now()), nil
}

func (s *fakeDonationStore) ListDonationsBetween(ctx context.Context, start, end time.Time) ([]*model.Donation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*model.Donation
	for _, d := range s.donations {
		if !d.DonationDate.Before(start) && d.DonationDate.Before(end) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DonationDate.After(out[j].DonationDate)
	})
	return out, nil
}

func (s *fakeDonationStore) DailySummary(ctx context.Context, start, end time.Time) (float64, []model.ProjectTotal, []*model.Donation, error) {
	donations, err := s.ListDonationsBetween(ctx, start, end)
	if err != nil {
		return 0, nil, nil, err
	}
	totals := make(map[int64]float64)
	for _, d := range donations {
		totals[*d.ProjectID] += d.Amount
	}
	var byProject []model.ProjectTotal
	for _, p := range s.projects {
		byProject = append(byProject, model.ProjectTotal{ProjectID: p.ID, ProjectName: p.Name, Total: totals[p.ID]})
	}
	return model.SumAmounts(donations), byProject, donations, nil
}

func (s *fakeDonationStore) DailyTotals(ctx context.Context, timezone string) ([]model.DailyTotal, error) {
	if s.err != nil {
		return nil, s.err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]*model.DailyTotal)
	var days []string
	for _, d := range s.donations {
		day := d.DonationDate.In(loc).Format(model.DateLayout)
		if _, ok := byDay[day]; !ok {
			byDay[day] = &model.DailyTotal{Date: day}
			days = append(days, day)
		}
		byDay[day].TotalAmount += d.Amount
		byDay[day].DonationCount++
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	var out []model.DailyTotal
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out, nil
}

type fakeProjectStore struct {
	projects []*model.Project
	calls    int
	err      error
}

func (s *fakeProjectStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	s.calls++
	return s.projects, s.err
}

type fakeProjectCache struct {
	projects []*model.Project
	getErr   error
	setErr   error
	sets     int
}

func (c *fakeProjectCache) GetProjects(ctx context.Context) ([]*model.Project, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.projects == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.projects, nil
}

func (c *fakeProjectCache) SetProjects(ctx context.Context, projects []*model.Project) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.projects = projects
	return nil
}

var errBoom = errors.New("boom")

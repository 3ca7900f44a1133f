package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

// Memory holds in-memory implementations of every repository interface.
// Used by service tests and by local runs without a database; no
// pagination-perfect fidelity, just the same observable contracts.
type Memory struct {
	mu            sync.Mutex
	companies     map[int64]domain.Company
	penalties     map[int64]domain.Penalty
	numbers       map[string]int64
	sensorData    []domain.SensorData
	notifications []domain.Notification
	responses     []domain.PenaltyResponse
	regions       []domain.Region
	industries    []domain.IndustryType
	nextID        int64
}

func NewMemory() *Memory {
	return &Memory{
		companies: map[int64]domain.Company{},
		penalties: map[int64]domain.Penalty{},
		numbers:   map[string]int64{},
	}
}

func (m *Memory) next() int64 {
	m.nextID++
	return m.nextID
}

// ---- CompanyRepository ----

type MemoryCompanies struct{ m *Memory }

func (m *Memory) Companies() *MemoryCompanies { return &MemoryCompanies{m} }

var _ CompanyRepository = (*MemoryCompanies)(nil)

func (r *MemoryCompanies) Create(_ context.Context, c *domain.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = r.m.next()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.m.companies[c.ID] = *c
	return nil
}

func (r *MemoryCompanies) Update(_ context.Context, c *domain.Company) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.companies[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now()
	r.m.companies[c.ID] = *c
	return nil
}

func (r *MemoryCompanies) Get(_ context.Context, id int64) (*domain.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCompanies) GetByRegistration(_ context.Context, registration string) (*domain.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.companies {
		if c.Registration == registration {
			c := c
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCompanies) List(_ context.Context, f CompanyFilters, page, size int) ([]domain.Company, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Company
	for _, c := range r.m.companies {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.Name), s) &&
				!strings.Contains(strings.ToLower(c.Registration), s) {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	lo := (page - 1) * size
	if lo > total {
		lo = total
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	return out[lo:hi], total, nil
}

func (r *MemoryCompanies) TopByReading(_ context.Context, limit int) ([]domain.Company, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.Company, 0, len(r.m.companies))
	for _, c := range r.m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrentAmount > out[j].CurrentAmount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryCompanies) Count(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.companies), nil
}

func (r *MemoryCompanies) CountDangerous(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, c := range r.m.companies {
		if c.CurrentAmount > c.MaxAllowed {
			n++
		}
	}
	return n, nil
}

func (r *MemoryCompanies) StatusCounts(_ context.Context) (map[domain.Status]int, error) {
	return r.statusCounts(time.Time{})
}

func (r *MemoryCompanies) StatusCountsAsOf(_ context.Context, asOf time.Time) (map[domain.Status]int, error) {
	return r.statusCounts(asOf)
}

func (r *MemoryCompanies) statusCounts(asOf time.Time) (map[domain.Status]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := map[domain.Status]int{
		domain.StatusGood:     0,
		domain.StatusModerate: 0,
		domain.StatusBad:      0,
	}
	for _, c := range r.m.companies {
		if !asOf.IsZero() && c.CreatedAt.After(asOf) {
			continue
		}
		out[c.Status]++
	}
	return out, nil
}

// ---- PenaltyRepository ----

type MemoryPenalties struct{ m *Memory }

func (m *Memory) Penalties() *MemoryPenalties { return &MemoryPenalties{m} }

var _ PenaltyRepository = (*MemoryPenalties)(nil)

func (r *MemoryPenalties) Create(_ context.Context, p *domain.Penalty) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, dup := r.m.numbers[p.Number]; dup {
		return ErrDuplicateNumber
	}
	p.ID = r.m.next()
	p.CreatedAt = time.Now()
	r.m.penalties[p.ID] = *p
	r.m.numbers[p.Number] = p.ID
	return nil
}

func (r *MemoryPenalties) Get(_ context.Context, id int64) (*domain.Penalty, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.penalties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryPenalties) List(_ context.Context, f PenaltyFilters, limit int) ([]domain.Penalty, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Penalty
	for _, p := range r.m.penalties {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CompanyID != 0 && p.CompanyID != f.CompanyID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryPenalties) ListCreatedBetween(_ context.Context, from, to time.Time) ([]domain.Penalty, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Penalty
	for _, p := range r.m.penalties {
		if p.CreatedAt.Before(from) || p.CreatedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryPenalties) UpdateStatus(_ context.Context, id int64, status domain.PenaltyStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.penalties[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.m.penalties[id] = p
	return nil
}

func (r *MemoryPenalties) CountActive(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, p := range r.m.penalties {
		if p.Status == domain.PenaltyActive {
			n++
		}
	}
	return n, nil
}

// ---- SensorDataRepository ----

type MemorySensorData struct{ m *Memory }

func (m *Memory) SensorData() *MemorySensorData { return &MemorySensorData{m} }

var _ SensorDataRepository = (*MemorySensorData)(nil)

func (r *MemorySensorData) Append(_ context.Context, sd *domain.SensorData) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sd.ID = r.m.next()
	if sd.RecordedAt.IsZero() {
		sd.RecordedAt = time.Now()
	}
	r.m.sensorData = append(r.m.sensorData, *sd)
	return nil
}

func (r *MemorySensorData) ListByCompany(_ context.Context, companyID int64, limit int) ([]domain.SensorData, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.SensorData
	for i := len(r.m.sensorData) - 1; i >= 0; i-- {
		if r.m.sensorData[i].CompanyID == companyID {
			out = append(out, r.m.sensorData[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemorySensorData) Latest(ctx context.Context, companyID int64) (*domain.SensorData, error) {
	rows, err := r.ListByCompany(ctx, companyID, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// ---- NotificationRepository ----

type MemoryNotifications struct{ m *Memory }

func (m *Memory) Notifications() *MemoryNotifications { return &MemoryNotifications{m} }

var _ NotificationRepository = (*MemoryNotifications)(nil)

func (r *MemoryNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n.ID = r.m.next()
	n.CreatedAt = time.Now()
	r.m.notifications = append(r.m.notifications, *n)
	return nil
}

func (r *MemoryNotifications) ListByCompany(_ context.Context, companyID int64, limit int) ([]domain.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Notification
	for i := len(r.m.notifications) - 1; i >= 0; i-- {
		if r.m.notifications[i].CompanyID == companyID {
			out = append(out, r.m.notifications[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryNotifications) MarkRead(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.notifications {
		if r.m.notifications[i].ID == id {
			r.m.notifications[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

// ---- ResponseRepository ----

type MemoryResponses struct{ m *Memory }

func (m *Memory) Responses() *MemoryResponses { return &MemoryResponses{m} }

var _ ResponseRepository = (*MemoryResponses)(nil)

func (r *MemoryResponses) Create(_ context.Context, pr *domain.PenaltyResponse) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	pr.ID = r.m.next()
	pr.CreatedAt = time.Now()
	r.m.responses = append(r.m.responses, *pr)
	return nil
}

func (r *MemoryResponses) ListByPenalty(_ context.Context, penaltyID int64) ([]domain.PenaltyResponse, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.PenaltyResponse
	for _, pr := range r.m.responses {
		if pr.PenaltyID == penaltyID {
			out = append(out, pr)
		}
	}
	return out, nil
}

// ---- RegionRepository ----

type MemoryRegions struct{ m *Memory }

func (m *Memory) Regions() *MemoryRegions { return &MemoryRegions{m} }

var _ RegionRepository = (*MemoryRegions)(nil)

func (m *Memory) SeedRegion(region domain.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = append(m.regions, region)
}

func (m *Memory) SeedIndustryType(it domain.IndustryType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.industries = append(m.industries, it)
}

func (r *MemoryRegions) ListRegions(_ context.Context) ([]domain.Region, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]domain.Region(nil), r.m.regions...), nil
}

func (r *MemoryRegions) ListIndustryTypes(_ context.Context) ([]domain.IndustryType, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]domain.IndustryType(nil), r.m.industries...), nil
}

func (r *MemoryRegions) CompanyCountsByRegion(_ context.Context) ([]RegionCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int{}
	for _, c := range r.m.companies {
		counts[c.RegionID]++
	}
	var out []RegionCount
	for _, reg := range r.m.regions {
		out = append(out, RegionCount{Name: reg.Name, Count: counts[reg.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (r *MemoryRegions) CompanyCountsByIndustry(_ context.Context) ([]IndustryCount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int{}
	for _, c := range r.m.companies {
		counts[c.IndustryTypeID]++
	}
	var out []IndustryCount
	for _, it := range r.m.industries {
		out = append(out, IndustryCount{Name: it.Name, Count: counts[it.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

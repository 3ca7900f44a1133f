package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/store"
)

func newTestServices() (*Services, *repository.Memory) {
	mem := repository.NewMemory()
	repos := Repos{
		Companies:     mem.Companies(),
		Penalties:     mem.Penalties(),
		SensorData:    mem.SensorData(),
		Notifications: mem.Notifications(),
		Responses:     mem.Responses(),
		Regions:       mem.Regions(),
	}
	return NewWithRepos(repos, store.NewMemoryKV(), nil, nil), mem
}

// memoryUploader is a map-backed report archive for tests.
type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (u *memoryUploader) UploadReport(key string, data []byte, _ string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[key] = data
	return "https://reports.local/" + key, nil
}

func (u *memoryUploader) ListReports(prefix string) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var keys []string
	for k := range u.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (u *memoryUploader) DownloadReport(key string) ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return data, nil
}

// recordingNotifier captures deliveries for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	responses []string
	exceeded  []string
}

func (n *recordingNotifier) PublishPenaltyResponse(number, company, comment string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.responses = append(n.responses, number)
	return nil
}

func (n *recordingNotifier) PublishThresholdExceeded(company string, current, allowed float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exceeded = append(n.exceeded, company)
	return nil
}

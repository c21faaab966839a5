package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type SimConfig struct {
	NumUsers       int
	PostsPerUser   int
	LikeRounds     int     // how many times each user picks a post to toggle
	CommentRate    float64 // chance per like round that the user also comments
	ZipfS          float64
	NumWorkers     int
	RequestTimeout time.Duration
	EngineURL      string
}

// DefaultSimConfig is a small run suitable for a local server.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		NumUsers:       20,
		PostsPerUser:   2,
		LikeRounds:     25,
		CommentRate:    0.2,
		ZipfS:          1.07,
		NumWorkers:     8,
		RequestTimeout: 10 * time.Second,
		EngineURL:      "http://localhost:5000",
	}
}

type SimulationStats struct {
	mu              sync.RWMutex
	StartTime       time.Time
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	AverageLatency  time.Duration
	TotalPosts      int
	TotalComments   int
	TotalToggles    int
}

// SimulatedUser is a registered account and the likes it should hold once
// every toggle has been applied.
type SimulatedUser struct {
	ID       string
	Name     string
	Email    string
	Token    string
	Posts    []string
	LikedSet map[string]bool
}

type Simulator struct {
	config SimConfig
	stats  *SimulationStats
	users  []*SimulatedUser
	posts  []string
	client *http.Client
	mu     sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	if config.ZipfS <= 1 {
		config.ZipfS = 1.07
	}
	return &Simulator{
		config: config,
		stats:  &SimulationStats{StartTime: time.Now()},
		client: &http.Client{Timeout: config.RequestTimeout},
	}
}

// Run drives the whole scenario and returns the consistency report.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	log.Printf("Starting simulation against %s", s.config.EngineURL)

	log.Printf("Phase 1: Registering %d users...", s.config.NumUsers)
	if err := s.createUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}

	log.Printf("Phase 2: Creating %d posts per user...", s.config.PostsPerUser)
	if err := s.createPosts(ctx); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}

	log.Printf("Phase 3: Toggling likes concurrently...")
	s.simulateActivity(ctx)

	log.Printf("Phase 4: Verifying like consistency...")
	report, err := s.verify(ctx)
	if err != nil {
		return nil, err
	}

	log.Printf("Simulation completed: %d posts checked, %d inconsistent", report.PostsChecked, len(report.Mismatches))
	return report, nil
}

func (s *Simulator) createUsers(ctx context.Context) error {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < s.config.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				user, err := s.register(ctx, n)
				if err != nil {
					log.Printf("Failed to register user %d: %v", n, err)
					continue
				}
				s.mu.Lock()
				s.users = append(s.users, user)
				s.mu.Unlock()
			}
		}()
	}

	for i := 0; i < s.config.NumUsers; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if len(s.users) == 0 {
		return fmt.Errorf("no users could be registered")
	}
	log.Printf("Successfully created %d users", len(s.users))
	return nil
}

func (s *Simulator) register(ctx context.Context, n int) (*SimulatedUser, error) {
	user := &SimulatedUser{
		Name:     fmt.Sprintf("user_%d", n),
		Email:    fmt.Sprintf("sim-%s@memories.test", uuid.NewString()),
		LikedSet: make(map[string]bool),
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	err := s.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     user.Name,
		"email":    user.Email,
		"password": "testpass123",
	}, &result)
	if err != nil {
		return nil, err
	}

	user.ID = result.User.ID
	user.Token = result.Token
	return user, nil
}

// do sends one JSON request and decodes a 2xx response into out.
func (s *Simulator) do(ctx context.Context, method, endpoint, token string, data, out interface{}) error {
	var body []byte
	if data != nil {
		var err error
		if body, err = json.Marshal(data); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.EngineURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.recordRequestMetrics(start, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err = fmt.Errorf("%s %s failed with status: %d", method, endpoint, resp.StatusCode)
		s.recordRequestMetrics(start, err)
		return err
	}
	s.recordRequestMetrics(start, nil)

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Simulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++
	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

// zipfIndex picks an index in [0, n) skewed towards the front so a few posts
// draw most of the traffic.
func (s *Simulator) zipfIndex(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	zipf := rand.NewZipf(rng, s.config.ZipfS, 1, uint64(n-1))
	return int(zipf.Uint64())
}

// SimulationMetrics holds the metrics of the simulation
type SimulationMetrics struct {
	TotalUsers        int
	TotalPosts        int
	TotalComments     int
	TotalToggles      int
	AverageLatency    time.Duration
	ErrorCount        int
	SuccessCount      int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	return SimulationMetrics{
		TotalUsers:        len(s.users),
		TotalPosts:        s.stats.TotalPosts,
		TotalComments:     s.stats.TotalComments,
		TotalToggles:      s.stats.TotalToggles,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		SuccessCount:      int(s.stats.SuccessRequests),
		RequestsPerSecond: float64(s.stats.TotalRequests) / elapsed.Seconds(),
	}
}

package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rateTTL is how long a cached pair is trusted before the next convert
// refreshes it from the upstream API.
const rateTTL = 24 * time.Hour

// Service converts single amounts on demand, refreshing stale pairs from
// the external FX API. Lookup failures degrade to the unconverted amount.
type Service struct {
	DB      *gorm.DB
	BaseURL string
	Client  *http.Client
}

// NewService wires the FX service against the given API base URL,
// e.g. "https://api.frankfurter.app".
func NewService(db *gorm.DB, baseURL string) *Service {
	return &Service{
		DB:      db,
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Convert converts amount from one currency to another, fetching or
// refreshing the rate when the cached row is missing or older than the TTL.
// Any fetch error falls back silently to the original amount.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if from == to || from == "" || to == "" {
		return amount
	}

	var row models.ExchangeRate
	err := s.DB.WithContext(ctx).
		Where("base = ? AND target = ?", from, to).
		First(&row).Error
	if err == nil && time.Since(row.FetchedAt) < rateTTL {
		return amount * row.Rate
	}

	rate, ferr := s.fetchRate(ctx, from, to)
	if ferr != nil {
		// degraded mode: stale cached rate beats no conversion at all
		if err == nil {
			return amount * row.Rate
		}
		return amount
	}

	s.upsertRate(ctx, from, to, rate)
	return amount * rate
}

// RefreshPairs fetches and caches every given pair that is missing or
// stale; errors on individual pairs are skipped so one bad pair does not
// block the rest.
func (s *Service) RefreshPairs(ctx context.Context, pairs [][2]string) {
	for _, p := range pairs {
		if p[0] == p[1] || p[0] == "" || p[1] == "" {
			continue
		}
		var row models.ExchangeRate
		err := s.DB.WithContext(ctx).
			Where("base = ? AND target = ?", p[0], p[1]).
			First(&row).Error
		if err == nil && time.Since(row.FetchedAt) < rateTTL {
			continue
		}
		rate, ferr := s.fetchRate(ctx, p[0], p[1])
		if ferr != nil {
			continue
		}
		s.upsertRate(ctx, p[0], p[1], rate)
	}
}

func (s *Service) upsertRate(ctx context.Context, from, to string, rate float64) {
	row := models.ExchangeRate{
		Base:      from,
		Target:    to,
		Rate:      rate,
		FetchedAt: time.Now().UTC(),
	}
	_ = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "base"}, {Name: "target"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "fetched_at"}),
	}).Create(&row).Error
}

// fetchRate queries the upstream API for a single pair.
//
//	GET {base}/latest?from=USD&to=EUR
//	{"amount":1.0,"base":"USD","rates":{"EUR":0.92}}
func (s *Service) fetchRate(ctx context.Context, from, to string) (float64, error) {
	addr := fmt.Sprintf("%s/latest?from=%s&to=%s", s.BaseURL, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fx request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx api status %d", resp.StatusCode)
	}

	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("fx decode: %w", err)
	}

	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx api returned no rate for %s->%s", from, to)
	}
	return rate, nil
}

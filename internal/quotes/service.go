package quotes

import (
	"context"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priceTTL is how long a cached price is served without refetching.
const priceTTL = 15 * time.Minute

// Service batch-loads prices for distinct symbols, backed by the
// stock_prices cache table. One query for the whole batch avoids the
// price-per-holding N+1 pattern.
type Service struct {
	DB     *gorm.DB
	Client *Client
}

// NewService wires the quote service.
func NewService(db *gorm.DB, client *Client) *Service {
	return &Service{DB: db, Client: client}
}

// BatchLoad returns a quote per symbol. Fresh cache rows are served as-is;
// missing or stale symbols are fetched and re-cached. When a fetch fails
// the last cached price is returned with IsStale set; symbols with no
// price at all are absent from the result.
func (s *Service) BatchLoad(ctx context.Context, symbols []string) map[string]Quote {
	result := make(map[string]Quote, len(symbols))
	if len(symbols) == 0 {
		return result
	}

	distinct := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		distinct = append(distinct, sym)
	}

	var cached []models.StockPrice
	_ = s.DB.WithContext(ctx).Where("symbol IN ?", distinct).Find(&cached).Error
	cachedBySymbol := make(map[string]models.StockPrice, len(cached))
	for _, row := range cached {
		cachedBySymbol[row.Symbol] = row
	}

	now := time.Now().UTC()
	for _, sym := range distinct {
		row, ok := cachedBySymbol[sym]
		if ok && now.Sub(row.FetchedAt) < priceTTL {
			result[sym] = Quote{
				Symbol:        sym,
				Price:         row.Price,
				ChangePercent: row.ChangePercent,
				Currency:      row.Currency,
				FetchedAt:     row.FetchedAt,
			}
			continue
		}

		q, err := s.Client.FetchQuote(ctx, sym)
		if err != nil {
			if ok {
				result[sym] = Quote{
					Symbol:        sym,
					Price:         row.Price,
					ChangePercent: row.ChangePercent,
					Currency:      row.Currency,
					IsStale:       true,
					FetchedAt:     row.FetchedAt,
				}
			}
			continue
		}

		s.upsert(ctx, q)
		result[sym] = *q
	}
	return result
}

func (s *Service) upsert(ctx context.Context, q *Quote) {
	row := models.StockPrice{
		Symbol:        q.Symbol,
		Price:         q.Price,
		ChangePercent: q.ChangePercent,
		Currency:      q.Currency,
		FetchedAt:     q.FetchedAt,
	}
	_ = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "change_percent", "currency", "fetched_at"}),
	}).Create(&row).Error
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"stock_pipeline/internal/feature/bars/domain/entity"
)

func TestBarsUsecase_GetBars(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name          string
		inputLimit    int
		expectedLimit int
	}{
		{name: "positive limit passed through", inputLimit: 50, expectedLimit: 50},
		{name: "zero limit uses default", inputLimit: 0, expectedLimit: DefaultLimit},
		{name: "negative limit uses default", inputLimit: -5, expectedLimit: DefaultLimit},
		{name: "limit above max uses default", inputLimit: MaxLimit + 1, expectedLimit: DefaultLimit},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockBarRepository{
				FindFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
					if symbol != "IBM" {
						t.Errorf("Find called with unexpected symbol: %s", symbol)
					}
					if limit != tc.expectedLimit {
						t.Errorf("Find called with limit %d, want %d", limit, tc.expectedLimit)
					}
					return []entity.Bar{{Symbol: "IBM"}}, nil
				},
			}
			uc := NewBarsUsecase(repo)

			bars, err := uc.GetBars(ctx, "IBM", tc.inputLimit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(bars) != 1 {
				t.Errorf("expected 1 bar, got %d", len(bars))
			}
		})
	}
}

func TestBarsUsecase_GetBars_RepositoryError(t *testing.T) {
	repoErr := errors.New("find failed")
	repo := &mockBarRepository{
		FindFunc: func(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
			return nil, repoErr
		},
	}
	uc := NewBarsUsecase(repo)

	bars, err := uc.GetBars(context.Background(), "IBM", 10)
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if bars != nil {
		t.Errorf("expected nil bars on error, got %v", bars)
	}
}

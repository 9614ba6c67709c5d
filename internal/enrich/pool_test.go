package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func poolItems(n int) []model.Business {
	items := make([]model.Business, n)
	for i := range items {
		items[i] = model.Business{PlaceID: fmt.Sprintf("place-%d", i), Name: fmt.Sprintf("Biz %d", i)}
	}
	return items
}

func TestProcessPositionalAlignment(t *testing.T) {
	items := poolItems(20)

	out := Process(context.Background(), items, 7, 0, func(_ context.Context, b model.Business) (model.Enrichment, error) {
		return model.Enrichment{WebsiteStatus: model.WebsiteStatusOnline, LinkedIn: b.PlaceID}, nil
	})

	require.Len(t, out, len(items))
	for i, oc := range out {
		assert.Equal(t, items[i].PlaceID, oc.Business.PlaceID)
		assert.Equal(t, items[i].PlaceID, oc.Enrichment.LinkedIn)
		assert.False(t, oc.Failed())
	}
}

func TestProcessRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int64

	out := Process(context.Background(), poolItems(1), 1, 2, func(_ context.Context, _ model.Business) (model.Enrichment, error) {
		if attempts.Add(1) < 3 {
			return model.Enrichment{}, errors.New("flaky")
		}
		return model.Enrichment{WebsiteStatus: model.WebsiteStatusOnline}, nil
	})

	assert.Equal(t, int64(3), attempts.Load())
	assert.False(t, out[0].Failed())
	assert.Equal(t, model.WebsiteStatusOnline, out[0].Enrichment.WebsiteStatus)
}

func TestProcessFailureRecordedInPlace(t *testing.T) {
	items := poolItems(5)
	var attempts atomic.Int64

	out := Process(context.Background(), items, 3, 2, func(_ context.Context, b model.Business) (model.Enrichment, error) {
		if b.PlaceID == "place-2" {
			attempts.Add(1)
			return model.Enrichment{}, errors.New("boom")
		}
		return model.Enrichment{WebsiteStatus: model.WebsiteStatusOnline}, nil
	})

	// One initial attempt plus two retries, all immediate.
	assert.Equal(t, int64(3), attempts.Load())

	require.Len(t, out, 5)
	for i, oc := range out {
		if i == 2 {
			assert.True(t, oc.Failed())
			assert.Equal(t, "boom", oc.Err)
			assert.Equal(t, "place-2", oc.Business.PlaceID)
			assert.Equal(t, model.WebsiteStatusUnknown, oc.Enrichment.WebsiteStatus)
			continue
		}
		assert.False(t, oc.Failed())
	}
}

func TestProcessWorkerCountCappedByItems(t *testing.T) {
	var mu sync.Mutex
	running, peak := 0, 0

	Process(context.Background(), poolItems(3), 50, 0, func(_ context.Context, _ model.Business) (model.Enrichment, error) {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
		return model.Enrichment{}, nil
	})

	assert.LessOrEqual(t, peak, 3)
}

func TestProcessSequentialOrder(t *testing.T) {
	var order []string

	Process(context.Background(), poolItems(6), 1, 0, func(_ context.Context, b model.Business) (model.Enrichment, error) {
		order = append(order, b.PlaceID)
		return model.Enrichment{}, nil
	})

	assert.Equal(t, []string{"place-0", "place-1", "place-2", "place-3", "place-4", "place-5"}, order)
}

func TestProcessEmptyInput(t *testing.T) {
	out := Process(context.Background(), nil, 5, 2, func(_ context.Context, _ model.Business) (model.Enrichment, error) {
		t.Fatal("handler should not run")
		return model.Enrichment{}, nil
	})
	assert.Empty(t, out)
}

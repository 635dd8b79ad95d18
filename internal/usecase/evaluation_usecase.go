package usecase

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"time"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/pkg/cache"
)

// Classifier is the product classification the evaluator depends on.
type Classifier interface {
	IsDangerousGood(ctx context.Context, productID string) bool
}

// Evaluation is the dangerous-goods status of a set of line items.
type Evaluation struct {
	HasDangerousGoods bool     `json:"hasDangerousGoods"`
	MatchedItemIDs    []string `json:"matchedItemIds"`
}

// Contains reports whether productID was matched as dangerous.
func (e Evaluation) Contains(productID string) bool {
	for _, id := range e.MatchedItemIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type cachedEvaluation struct {
	snapshot uint64
	result   Evaluation
}

// EvaluationUsecase aggregates classification over cart and order line items.
// Per-cart results are memoized; the memo is an optimization only and is
// dropped on every cart mutation and every product flag change.
type EvaluationUsecase struct {
	classifier Classifier
	cache      cache.CacheService
	ttl        time.Duration
}

var _ CartEvaluator = (*EvaluationUsecase)(nil)

func NewEvaluationUsecase(classifier Classifier, cache cache.CacheService, ttl time.Duration) *EvaluationUsecase {
	return &EvaluationUsecase{
		classifier: classifier,
		cache:      cache,
		ttl:        ttl,
	}
}

// Evaluate always recomputes.
func (u *EvaluationUsecase) Evaluate(ctx context.Context, items []domain.LineItem) Evaluation {
	result := Evaluation{MatchedItemIDs: []string{}}
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		id := item.EffectiveProductID()
		if _, done := seen[id]; done {
			continue
		}
		seen[id] = struct{}{}

		if u.classifier.IsDangerousGood(ctx, id) {
			result.HasDangerousGoods = true
			result.MatchedItemIDs = append(result.MatchedItemIDs, id)
		}
	}
	return result
}

// EvaluateCart evaluates the cart, reusing the memoized result when the cart
// contents match the snapshot it was computed from.
func (u *EvaluationUsecase) EvaluateCart(ctx context.Context, cart *domain.Cart) Evaluation {
	if cart == nil || cart.IsEmpty() {
		return Evaluation{MatchedItemIDs: []string{}}
	}
	if u.cache == nil || cart.ID == "" {
		return u.Evaluate(ctx, cart.Items)
	}

	key := cache.EvaluationKey(cart.ID)
	snapshot := snapshotItems(cart.Items)
	if val, found := u.cache.Get(key); found {
		if cached, ok := val.(cachedEvaluation); ok && cached.snapshot == snapshot {
			return cached.result
		}
	}

	result := u.Evaluate(ctx, cart.Items)
	u.cache.Set(key, cachedEvaluation{snapshot: snapshot, result: result}, u.ttl)
	return result
}

// Invalidate clears the memoized result of one cart.
func (u *EvaluationUsecase) Invalidate(cartID string) {
	if u.cache != nil {
		u.cache.Delete(cache.EvaluationKey(cartID))
	}
}

// InvalidateAll clears every memoized result.
func (u *EvaluationUsecase) InvalidateAll() {
	if u.cache != nil {
		u.cache.DeletePrefix(cache.EvaluationKeyPrefix)
	}
}

// snapshotItems fingerprints the item collection in order.
func snapshotItems(items []domain.LineItem) uint64 {
	h := fnv.New64a()
	var qty [8]byte
	for _, item := range items {
		h.Write([]byte(item.ProductID))
		h.Write([]byte{0})
		h.Write([]byte(item.EffectiveProductID()))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(qty[:], uint64(item.Quantity))
		h.Write(qty[:])
	}
	return h.Sum64()
}

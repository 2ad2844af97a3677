// Package shared holds helpers used across every domain service.
package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"

	"crm/shared/cache"
	"crm/shared/constant"
	"crm/shared/dto"
	"crm/shared/timezone"
)

const cacheKeySeparator = ":"

// CalculateTotalPage never reports fewer than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return int(math.Ceil(float64(total) / float64(limit)))
}

// TransformFields turns a partial update request into a column map. Zero
// fields are left out, so optional values that may legitimately be zero must
// be pointers. The modification metadata is always stamped with actor.
func TransformFields(data any, actor string) map[string]any {
	val := reflect.ValueOf(data)
	typ := val.Type()

	fields := make(map[string]any, typ.NumField()+2)

	for i := range typ.NumField() {
		column := typ.Field(i).Tag.Get("db")
		if column == "" || column == "-" || val.Field(i).IsZero() {
			continue
		}

		fields[column] = val.Field(i).Interface()
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = actor

	return fields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	filter := dto.NewFilterGroup()
	filter.Add(dto.Filter{
		Field:    fieldID,
		Value:    id,
		Operator: dto.FilterOperatorEq,
		Table:    table,
	})

	return filter
}

// BuildCacheKey joins the prefix and the parts with ":".
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key from the pagination and the filter,
// so identical list requests share a cache entry.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	raw := fmt.Sprintf("%d|%d|%s|%s|%s|%v", params.Page, params.Limit, params.SortBy, params.SortDir, where, args)
	sum := sha256.Sum256([]byte(raw))

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key under the prefix. Failures are only logged.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// Actor returns the authenticated user id stored in ctx, or the guest marker.
func Actor(ctx context.Context) string {
	if userID, ok := ctx.Value(constant.ContextKeyUserID).(string); ok && userID != "" {
		return userID
	}

	return constant.ContextGuest
}

// RoundMoney rounds an amount to cents, half away from zero.
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

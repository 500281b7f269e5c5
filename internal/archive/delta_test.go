package archive

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/XavierBriggs/Iris/pkg/testutil"
)

func cacheValue(t *testing.T, price float64, point *float64) string {
	t.Helper()
	data, err := json.Marshal(cachedRow{
		Price:            price,
		Point:            point,
		VendorLastUpdate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal cache value: %v", err)
	}
	return string(data)
}

func TestCompareRow(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		point     *float64
		cached    interface{}
		want      ChangeType
		wantPrice *float64
		wantPoint *float64
	}{
		{
			name:   "missing cache entry is new",
			price:  -110,
			cached: nil,
			want:   ChangeTypeNew,
		},
		{
			name:   "corrupt cache entry is new",
			price:  -110,
			cached: "{not json",
			want:   ChangeTypeNew,
		},
		{
			name:      "price moved",
			price:     -115,
			cached:    "price=-110",
			want:      ChangeTypePriceOnly,
			wantPrice: testutil.Float64(-110),
		},
		{
			name:      "point moved",
			price:     -110,
			point:     testutil.Float64(4.0),
			cached:    "point=3.5",
			want:      ChangeTypePointOnly,
			wantPrice: testutil.Float64(-110),
			wantPoint: testutil.Float64(3.5),
		},
		{
			name:      "both moved",
			price:     -120,
			point:     testutil.Float64(4.0),
			cached:    "point=3.5",
			want:      ChangeTypeBoth,
			wantPrice: testutil.Float64(-110),
			wantPoint: testutil.Float64(3.5),
		},
		{
			name:   "unchanged",
			price:  -110,
			cached: "price=-110",
			want:   ChangeTypeNone,
		},
		{
			name:      "point appeared",
			price:     -110,
			point:     testutil.Float64(3.5),
			cached:    "price=-110",
			want:      ChangeTypePointOnly,
			wantPrice: testutil.Float64(-110),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cached := tt.cached
			switch cached {
			case "price=-110":
				cached = cacheValue(t, -110, nil)
			case "point=3.5":
				cached = cacheValue(t, -110, testutil.Float64(3.5))
			}

			row := testutil.NewTestRow("evt1", "spreads", "fanduel", "Celtics", tt.price, tt.point)
			changeType, oldPrice, oldPoint := compareRow(row, cached)

			if changeType != tt.want {
				t.Fatalf("changeType = %s, want %s", changeType, tt.want)
			}
			if !floatPtrEqual(oldPrice, tt.wantPrice) {
				t.Errorf("oldPrice = %v, want %v", deref(oldPrice), deref(tt.wantPrice))
			}
			if !floatPtrEqual(oldPoint, tt.wantPoint) {
				t.Errorf("oldPoint = %v, want %v", deref(oldPoint), deref(tt.wantPoint))
			}
		})
	}
}

func TestPointsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *float64
		want bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", testutil.Float64(3.5), nil, false},
		{"equal", testutil.Float64(3.5), testutil.Float64(3.5), true},
		{"different", testutil.Float64(3.5), testutil.Float64(4.0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointsEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("pointsEqual = %v, want %v", got, tt.want)
			}
		})
	}
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

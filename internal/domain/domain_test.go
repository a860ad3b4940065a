package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePhotoURIs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"legacy scalar", "/data/photos/a.jpg", []string{"/data/photos/a.jpg"}},
		{"list", `["/a.jpg","/b.jpg"]`, []string{"/a.jpg", "/b.jpg"}},
		{"empty list", `[]`, []string{}},
		{"null", `null`, []string{}},
		{"padded null", ` null `, []string{}},
		{"broken list", `[not json`, []string{"[not json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodePhotoURIs(tt.raw))
		})
	}
}

func TestEncodePhotoURIsDropsEmpty(t *testing.T) {
	assert.Equal(t, `["/a.jpg","/c.jpg"]`, EncodePhotoURIs([]string{"/a.jpg", "", "/c.jpg"}))
	assert.Equal(t, `[]`, EncodePhotoURIs(nil))
}

func TestIsPhotoList(t *testing.T) {
	assert.True(t, IsPhotoList(`[]`))
	assert.True(t, IsPhotoList(`["x"]`))
	assert.False(t, IsPhotoList(`x.jpg`))
	assert.False(t, IsPhotoList(``))
}

func TestApplyCategoryChange(t *testing.T) {
	exp := int64(1700000000000)
	prod := int64(1600000000000)
	qty := 4
	days := 3
	item := Item{
		Name:           "Milk",
		Category:       "Food",
		ExpirationDate: &exp,
		ProductionDate: &prod,
		Quantity:       &qty,
		ReminderDays:   &days,
	}
	all := Category{Name: "Food", NeedExpirationDate: true, NeedProductionDate: true, NeedQuantity: true, NeedReminder: true, ReminderPeriodDays: 3}

	t.Run("clears flipped capabilities", func(t *testing.T) {
		got := ApplyCategoryChange(item, all, Category{Name: "Pantry"})
		assert.Equal(t, "Pantry", got.Category)
		assert.Nil(t, got.ExpirationDate)
		assert.Nil(t, got.ProductionDate)
		assert.Nil(t, got.Quantity)
		assert.Nil(t, got.ReminderDays)
	})

	t.Run("keeps unchanged capabilities", func(t *testing.T) {
		got := ApplyCategoryChange(item, all, all)
		assert.Equal(t, &exp, got.ExpirationDate)
		assert.Equal(t, &qty, got.Quantity)
		assert.Equal(t, &days, got.ReminderDays)
	})

	t.Run("reminder turned on uses category period", func(t *testing.T) {
		bare := Item{Name: "Rice", Category: "Dry"}
		got := ApplyCategoryChange(bare, Category{Name: "Dry"}, Category{Name: "Dry", NeedReminder: true, ReminderPeriodDays: 14})
		if assert.NotNil(t, got.ReminderDays) {
			assert.Equal(t, 14, *got.ReminderDays)
		}
	})
}

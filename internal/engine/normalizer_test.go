package engine

import (
	"testing"

	"StockSage/internal/domain/models"
)

func TestNormalizeClampsBipolar(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{1.7, 1},
		{-3, -1},
		{0.25, 0.25},
	}
	for _, tc := range cases {
		s := Normalize(models.CategoryTechnical, tc.raw, 1, models.ScaleBipolar)
		if s.NormalizedValue != tc.want {
			t.Fatalf("raw %v: normalized = %v, want %v", tc.raw, s.NormalizedValue, tc.want)
		}
	}
}

func TestNormalizeClampsUnit(t *testing.T) {
	s := Normalize(models.CategoryFundamental, -0.2, 0.8, models.ScaleUnit)
	if s.NormalizedValue != 0 {
		t.Fatalf("normalized = %v, want 0", s.NormalizedValue)
	}
	s = Normalize(models.CategoryFundamental, 1.3, 0.8, models.ScaleUnit)
	if s.NormalizedValue != 1 {
		t.Fatalf("normalized = %v, want 1", s.NormalizedValue)
	}
}

func TestNormalizeSentimentPassthrough(t *testing.T) {
	s := Normalize(models.CategorySentiment, -0.45, 0.6, models.ScaleBipolar)
	if s.NormalizedValue != -0.45 {
		t.Fatalf("normalized = %v, want -0.45", s.NormalizedValue)
	}
	if s.SourceConfidence != 0.6 {
		t.Fatalf("confidence = %v, want 0.6", s.SourceConfidence)
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	s := Normalize(models.CategoryTechnical, 0.5, 1.4, models.ScaleBipolar)
	if s.SourceConfidence != 1 {
		t.Fatalf("confidence = %v, want 1", s.SourceConfidence)
	}
}

func TestNeutralSignal(t *testing.T) {
	s := NeutralSignal(models.CategorySentiment)
	if s.NormalizedValue != 0 || s.SourceConfidence != 0 {
		t.Fatalf("neutral signal = %+v", s)
	}
	if s.Category != models.CategorySentiment {
		t.Fatalf("category = %s", s.Category)
	}
}

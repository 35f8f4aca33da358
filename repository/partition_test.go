package repository

import (
	"testing"

	"civictrack/models"

	"github.com/stretchr/testify/assert"
)

func TestCollectionNameFor(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"Garbage Collection", "complaints_garbage_collection"},
		{"Road Damage", "complaints_road_damage"},
		{"Water Leakage", "complaints_water_leakage"},
		{"Drainage Problems", "complaints_drainage_problems"},
		{"Streetlight Malfunction", "complaints_streetlight_malfunction"},
		{"Potholes", "complaints_potholes"},
		{"Tree Maintenance", "complaints_tree_maintenance"},
		{"Public Toilets", "complaints_public_toilets"},
		{"Parks & Recreation", "complaints_parks_and_recreation"},
		{"Noise Complaints", "complaints_noise_complaints"},
		{"Parking Issues", "complaints_parking_issues"},
		{"Other", "complaints_other"},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			assert.Equal(t, tc.want, CollectionNameFor(tc.category))
		})
	}
}

func TestCollectionNameForStripsPunctuation(t *testing.T) {
	assert.Equal(t, "complaints_roads_bridges", CollectionNameFor("Roads, Bridges!"))
}

func TestCategoryOrderIsStable(t *testing.T) {
	// The lookup resolver scans partitions in category order; the order must
	// stay fixed or references could resolve differently between releases.
	want := []string{
		"Garbage Collection",
		"Road Damage",
		"Water Leakage",
		"Drainage Problems",
		"Streetlight Malfunction",
		"Potholes",
		"Tree Maintenance",
		"Public Toilets",
		"Parks & Recreation",
		"Noise Complaints",
		"Parking Issues",
		"Other",
	}
	assert.Equal(t, want, models.Categories)
}

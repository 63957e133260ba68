package dedup

import (
	"reflect"
	"testing"
)

func TestBatchDetectorURLDuplicates(t *testing.T) {
	detector := NewBatchDetector(0, testLogger())

	got := detector.DetectIndexes([]BatchItem{
		{URL: "https://example.com/a", Title: "completely first article"},
		{URL: "http://www.example.com/a/", Title: "an unrelated second headline"},
		{URL: "https://example.com/b?utm_source=x", Title: "something else entirely third"},
		{URL: "https://example.com/b", Title: "yet another distinct headline"},
	})

	want := []int{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectIndexes() = %v, want %v", got, want)
	}
}

func TestBatchDetectorTitleDuplicates(t *testing.T) {
	detector := NewBatchDetector(0.75, testLogger())

	got := detector.DetectIndexes([]BatchItem{
		{URL: "https://siteone.com/1", Title: "Breaking: Major Outage Hits Cloud Provider"},
		{URL: "https://sitetwo.com/2", Title: "Breaking: Major Outage Hits Cloud Providers"},
		{URL: "https://sitethree.com/3", Title: "Gardening Tips for Late Summer"},
	})

	want := []int{1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectIndexes() = %v, want %v", got, want)
	}
}

func TestBatchDetectorEarlierItemSurvives(t *testing.T) {
	detector := NewBatchDetector(0, testLogger())

	items := []BatchItem{
		{URL: "https://a.com/x", Title: "The Original Headline Goes Here"},
		{URL: "https://b.com/y", Title: "The Original Headline Goes Here!"},
		{URL: "https://c.com/z", Title: "The Original Headline Goes Here?"},
	}

	got := detector.DetectIndexes(items)
	want := []int{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectIndexes() = %v, want %v", got, want)
	}
}

func TestBatchDetectorCollapsesTitleWhitespace(t *testing.T) {
	detector := NewBatchDetector(0, testLogger())

	got := detector.DetectIndexes([]BatchItem{
		{URL: "https://a.com/x", Title: "Breaking: Major Outage Hits Cloud Provider"},
		{URL: "https://b.com/y", Title: "Breaking:   Major Outage\nHits Cloud Provider"},
	})

	want := []int{1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectIndexes() = %v, want %v", got, want)
	}
}

func TestBatchDetectorEmptyBatch(t *testing.T) {
	detector := NewBatchDetector(0, testLogger())

	got := detector.DetectIndexes(nil)
	if len(got) != 0 {
		t.Errorf("DetectIndexes(nil) = %v, want empty", got)
	}
}

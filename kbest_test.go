package attnmt

import (
	"math/rand"
	"testing"
)

func TestKBestListAdd(t *testing.T) {
	list := NewKBestList[string](3)
	list.Add(0.5, "a")
	list.Add(0.9, "b")
	if !list.Add(0.1, "c") {
		t.Error("item should be kept while the list has room")
	}
	list.Add(0.7, "d")

	expected := []Scored[string]{{0.9, "b"}, {0.7, "d"}, {0.5, "a"}}
	actual := list.Items()
	if len(actual) != len(expected) {
		t.Fatalf("expected %d items but got %d", len(expected), len(actual))
	}
	for i, x := range expected {
		if actual[i] != x {
			t.Errorf("item %d should be %v but got %v", i, x, actual[i])
		}
	}

	if list.Add(0.2, "e") {
		t.Error("item below the minimum of a full list should be rejected")
	}
	if best, ok := list.Best(); !ok || best.Item != "b" {
		t.Errorf("unexpected best item: %v", best)
	}
}

func TestKBestListTies(t *testing.T) {
	list := NewKBestList[string](3)
	list.Add(1, "first")
	list.Add(1, "second")
	list.Add(2, "top")
	list.Add(1, "third")

	expected := []string{"top", "third", "second"}
	for i, item := range list.Items() {
		if item.Item != expected[i] {
			t.Errorf("item %d should be %s but got %s", i, expected[i], item.Item)
		}
	}

	// Equal to the minimum of a full list is still inserted.
	if !list.Add(1, "fourth") {
		t.Error("tie with the minimum should be kept")
	}
	if items := list.Items(); items[1].Item != "fourth" || items[2].Item != "third" {
		t.Errorf("unexpected order: %v", items)
	}
}

func TestKBestListInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	for trial := 0; trial < 100; trial++ {
		capacity := rng.Intn(5) + 1
		list := NewKBestList[int](capacity)
		var all []float64
		for i := 0; i < 30; i++ {
			score := float64(rng.Intn(10))
			list.Add(score, i)
			all = append(all, score)
			items := list.Items()
			if len(items) > capacity {
				t.Fatalf("trial %d: %d items exceed capacity %d", trial, len(items), capacity)
			}
			for j := 1; j < len(items); j++ {
				if items[j].Score > items[j-1].Score {
					t.Fatalf("trial %d: items not sorted: %v", trial, items)
				}
			}
		}
		var max float64
		for _, x := range all {
			if x > max {
				max = x
			}
		}
		if best, _ := list.Best(); best.Score != max {
			t.Errorf("trial %d: best should be %f but got %f", trial, max, best.Score)
		}
	}
}

func TestKBestListCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero capacity")
		}
	}()
	NewKBestList[int](0)
}

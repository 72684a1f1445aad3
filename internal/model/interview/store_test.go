package interview

import (
	"testing"

	"github.com/luoxingyu/mockview/internal/model/chat"
)

func TestSeedCoversEverySessionType(t *testing.T) {
	store := NewMemoryStore(Seed())

	for _, typ := range chat.SessionTypes() {
		profile, ok := store.FindByType(typ)
		if !ok {
			t.Fatalf("missing profile for session type %s", typ)
		}
		if profile.OpeningLine == "" {
			t.Fatalf("profile %s has no opening line", typ)
		}
		if len(profile.Questions) == 0 {
			t.Fatalf("profile %s has an empty question bank", typ)
		}
	}
}

func TestFindByTypeUnknown(t *testing.T) {
	store := NewMemoryStore(Seed())
	if _, ok := store.FindByType(chat.SessionType("astrology")); ok {
		t.Fatal("unknown session type must not resolve")
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	list := store.List()
	list[0].Title = "mutated"

	fresh := store.List()
	if fresh[0].Title == "mutated" {
		t.Fatal("List must return a copy")
	}
}

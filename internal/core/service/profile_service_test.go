package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pollwise/poll-api/internal/core/domain"
)

// memFileStore keeps objects in a map and returns deterministic URLs.
type memFileStore struct {
	objects map[string]string
	putErr  error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{objects: make(map[string]string)}
}

func (s *memFileStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = string(data)
	return "https://files.example.com/" + key, nil
}

func (s *memFileStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func newTestProfileService(repo *memUserRepo, store *memFileStore) (*ProfileService, *stubAudit) {
	audit := &stubAudit{}
	return NewProfileService(repo, store, audit, zerolog.Nop()), audit
}

func TestProfileService_SetPicture(t *testing.T) {
	repo := newMemUserRepo()
	seedLocalUser(t, repo, "alice", "secret-password")
	store := newMemFileStore()
	svc, audit := newTestProfileService(repo, store)

	user, err := svc.SetPicture(context.Background(), "id-alice", ".png", strings.NewReader("pixels"), "image/png")
	if err != nil {
		t.Fatalf("SetPicture: %v", err)
	}
	if user.ProfilePicKey != "profile/id-alice.png" {
		t.Fatalf("unexpected key %q", user.ProfilePicKey)
	}
	if user.ProfilePicURL == "" {
		t.Fatalf("URL not recorded")
	}
	if store.objects["profile/id-alice.png"] != "pixels" {
		t.Fatalf("object not stored")
	}

	stored, _ := repo.FindByID(context.Background(), "id-alice")
	if stored.ProfilePicURL != user.ProfilePicURL {
		t.Fatalf("URL not persisted")
	}
	if len(audit.entries) == 0 {
		t.Fatalf("expected an audit entry")
	}
}

func TestProfileService_SetPictureReplacesOldFormat(t *testing.T) {
	repo := newMemUserRepo()
	seedLocalUser(t, repo, "alice", "secret-password")
	store := newMemFileStore()
	svc, _ := newTestProfileService(repo, store)

	if _, err := svc.SetPicture(context.Background(), "id-alice", ".png", strings.NewReader("v1"), "image/png"); err != nil {
		t.Fatalf("first SetPicture: %v", err)
	}
	if _, err := svc.SetPicture(context.Background(), "id-alice", ".jpg", strings.NewReader("v2"), "image/jpeg"); err != nil {
		t.Fatalf("second SetPicture: %v", err)
	}

	if _, ok := store.objects["profile/id-alice.png"]; ok {
		t.Fatalf("stale object survived the format change")
	}
	if store.objects["profile/id-alice.jpg"] != "v2" {
		t.Fatalf("new object missing")
	}
}

func TestProfileService_SetPictureStoreFailure(t *testing.T) {
	repo := newMemUserRepo()
	seedLocalUser(t, repo, "alice", "secret-password")
	store := newMemFileStore()
	store.putErr = errors.New("bucket unreachable")
	svc, _ := newTestProfileService(repo, store)

	if _, err := svc.SetPicture(context.Background(), "id-alice", ".png", strings.NewReader("pixels"), "image/png"); err == nil {
		t.Fatalf("expected store failure to surface")
	}

	stored, _ := repo.FindByID(context.Background(), "id-alice")
	if stored.ProfilePicKey != "" {
		t.Fatalf("account must stay untouched on failure")
	}
}

func TestProfileService_RemovePicture(t *testing.T) {
	repo := newMemUserRepo()
	seedLocalUser(t, repo, "alice", "secret-password")
	store := newMemFileStore()
	svc, _ := newTestProfileService(repo, store)

	if _, err := svc.SetPicture(context.Background(), "id-alice", ".png", strings.NewReader("pixels"), "image/png"); err != nil {
		t.Fatalf("SetPicture: %v", err)
	}
	user, err := svc.RemovePicture(context.Background(), "id-alice")
	if err != nil {
		t.Fatalf("RemovePicture: %v", err)
	}
	if user.ProfilePicKey != "" || user.ProfilePicURL != "" {
		t.Fatalf("picture fields not cleared")
	}
	if len(store.objects) != 0 {
		t.Fatalf("object not deleted")
	}
}

func TestProfileService_RemovePictureWithoutOne(t *testing.T) {
	repo := newMemUserRepo()
	seedLocalUser(t, repo, "alice", "secret-password")
	svc, _ := newTestProfileService(repo, newMemFileStore())

	if _, err := svc.RemovePicture(context.Background(), "id-alice"); !errors.Is(err, domain.ErrNoPicture) {
		t.Fatalf("expected ErrNoPicture, got %v", err)
	}
}

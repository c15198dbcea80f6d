package service

import (
	"context"
	"errors"
	"testing"
)

func TestProjectService_ListCachesOnMiss(t *testing.T) {
	store := &fakeProjectStore{projects: testProjects()}
	c := &fakeProjectCache{}
	svc := NewProjectService(store, c, nil)

	for i := 0; i < 3; i++ {
		projects, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(projects) != 4 {
			t.Fatalf("expected 4 projects, got %d", len(projects))
		}
	}

	if store.calls != 1 {
		t.Errorf("store calls = %d, want 1", store.calls)
	}
	if c.sets != 1 {
		t.Errorf("cache sets = %d, want 1", c.sets)
	}
}

func TestProjectService_ListFallsBackOnCacheError(t *testing.T) {
	store := &fakeProjectStore{projects: testProjects()}
	c := &fakeProjectCache{getErr: errBoom, setErr: errBoom}
	svc := NewProjectService(store, c, nil)

	projects, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("cache failures must not fail the request: %v", err)
	}
	if len(projects) != 4 {
		t.Errorf("expected 4 projects, got %d", len(projects))
	}
}

func TestProjectService_ListStoreError(t *testing.T) {
	svc := NewProjectService(&fakeProjectStore{err: errBoom}, &fakeProjectCache{}, nil)

	if _, err := svc.List(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestProjectService_ListEmpty(t *testing.T) {
	svc := NewProjectService(&fakeProjectStore{}, &fakeProjectCache{}, nil)

	projects, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if projects == nil {
		t.Error("expected empty non-nil slice")
	}
}

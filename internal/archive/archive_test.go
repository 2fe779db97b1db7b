package archive

import (
	"context"
	"io"
	"strings"
	"testing"
)

func storeUnderTest(t *testing.T, driver Driver) Store {
	t.Helper()
	switch driver {
	case DriverMemory:
		return NewMemory()
	case DriverFilesystem:
		store, err := NewFilesystem(t.TempDir())
		if err != nil {
			t.Fatalf("new filesystem store: %v", err)
		}
		return store
	default:
		t.Fatalf("no local store for driver %s", driver)
		return nil
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []Driver{DriverMemory, DriverFilesystem} {
		t.Run(string(driver), func(t *testing.T) {
			store := storeUnderTest(t, driver)
			payload := `{"dataset_id":"ds-1"}`
			info, err := store.Put(ctx, "exports/ds-1/20260301T120000Z.json", strings.NewReader(payload), PutOptions{
				ContentType: "application/json",
				Metadata:    map[string]string{"dataset_id": "ds-1"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len(payload)) || info.ETag == "" {
				t.Fatalf("unexpected info: %+v", info)
			}

			got, rc, err := store.Get(ctx, "exports/ds-1/20260301T120000Z.json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer func() { _ = rc.Close() }()
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(data) != payload {
				t.Fatalf("content mismatch: %q", data)
			}
			if got.Metadata["dataset_id"] != "ds-1" {
				t.Fatalf("metadata lost: %+v", got.Metadata)
			}
		})
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []Driver{DriverMemory, DriverFilesystem} {
		t.Run(string(driver), func(t *testing.T) {
			store := storeUnderTest(t, driver)
			if _, err := store.Put(ctx, "exports/a.json", strings.NewReader("one"), PutOptions{}); err != nil {
				t.Fatalf("first put: %v", err)
			}
			if _, err := store.Put(ctx, "exports/a.json", strings.NewReader("two"), PutOptions{}); err == nil {
				t.Fatalf("expected duplicate key rejection")
			}
		})
	}
}

func TestListFiltersByPrefixAndSorts(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []Driver{DriverMemory, DriverFilesystem} {
		t.Run(string(driver), func(t *testing.T) {
			store := storeUnderTest(t, driver)
			for _, key := range []string{"exports/ds-2/b.json", "exports/ds-1/a.json", "other/x.json"} {
				if _, err := store.Put(ctx, key, strings.NewReader("{}"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "exports/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(infos))
			}
			if infos[0].Key != "exports/ds-1/a.json" || infos[1].Key != "exports/ds-2/b.json" {
				t.Fatalf("unexpected order: %v", infos)
			}
		})
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []Driver{DriverMemory, DriverFilesystem} {
		t.Run(string(driver), func(t *testing.T) {
			store := storeUnderTest(t, driver)
			if _, err := store.Put(ctx, "exports/a.json", strings.NewReader("{}"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			existed, err := store.Delete(ctx, "exports/a.json")
			if err != nil || !existed {
				t.Fatalf("delete existing: existed=%v err=%v", existed, err)
			}
			existed, err = store.Delete(ctx, "exports/a.json")
			if err != nil || existed {
				t.Fatalf("delete missing: existed=%v err=%v", existed, err)
			}
		})
	}
}

func TestFilesystemRejectsTraversalKeys(t *testing.T) {
	store := storeUnderTest(t, DriverFilesystem)
	for _, key := range []string{"", "/abs.json", "../escape.json", "a/../../b.json"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("{}"), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	if _, err := Open(ctx, Options{Driver: Driver("bogus")}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	fsStore, err := Open(ctx, Options{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open default driver: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("default driver should be fs, got %s", fsStore.Driver())
	}
}

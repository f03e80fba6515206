package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Adembc/lazysrv/internal/adapters/filesystem"
	"github.com/Adembc/lazysrv/internal/core/domain"
	"github.com/Adembc/lazysrv/internal/core/ports"
)

func newTestRepo(t *testing.T, path string, backups int) *profileRepo {
	t.Helper()
	return NewProfileRepo(zaptest.NewLogger(t).Sugar(), filesystem.NewOSFileSystem(), path, backups)
}

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "Servers.xml")
}

func mustAdd(t *testing.T, r *profileRepo, f domain.ProfileFields) domain.ServerProfile {
	t.Helper()
	p, err := r.Add(f)
	if err != nil {
		t.Fatalf("Add(%+v) error = %v", f, err)
	}
	return p
}

func TestProfileRepo_LoadAllMissingFile(t *testing.T) {
	path := storePath(t)
	repo := newTestRepo(t, path, 0)

	profiles, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v, want nil", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("LoadAll() returned %d profiles, want 0", len(profiles))
	}

	mustAdd(t, repo, domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Add should create the store file: %v", err)
	}
}

func TestProfileRepo_AddAssignsSequentialIDsAcrossReloads(t *testing.T) {
	path := storePath(t)

	for want := 1; want <= 5; want++ {
		// A fresh repo per call forces a reload from disk.
		repo := newTestRepo(t, path, 0)
		p := mustAdd(t, repo, domain.ProfileFields{Name: "srv", Host: "h", User: "u", Secret: "s"})
		if p.ID != want {
			t.Fatalf("Add #%d assigned id %d, want %d", want, p.ID, want)
		}
	}

	profiles, err := newTestRepo(t, path, 0).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range profiles {
		if p.ID != i+1 {
			t.Errorf("profile %d has id %d, want %d", i, p.ID, i+1)
		}
	}
}

func TestProfileRepo_NextIDUsesMaximum(t *testing.T) {
	path := storePath(t)
	legacy := `<?xml version="1.0" encoding="utf-8"?>
<ArrayOfServers>
  <Servers><Id>4</Id><Name>a</Name><Ip>h</Ip><User>u</User><Password>p</Password></Servers>
  <Servers><Id>2</Id><Name>b</Name><Ip>h</Ip><User>u</User><Password>p</Password></Servers>
</ArrayOfServers>`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}

	p := mustAdd(t, newTestRepo(t, path, 0), domain.ProfileFields{Name: "c", Host: "h", User: "u", Secret: "p"})
	if p.ID != 5 {
		t.Fatalf("Add assigned id %d, want 5", p.ID)
	}
}

func TestProfileRepo_UpdateKeepsID(t *testing.T) {
	repo := newTestRepo(t, storePath(t), 0)
	mustAdd(t, repo, domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})
	added := mustAdd(t, repo, domain.ProfileFields{Name: "db1", Host: "10.0.0.6", User: "root", Secret: "y"})

	updated, err := repo.Update(added.ID, domain.ProfileFields{Name: "db2", Host: "10.0.0.7", User: "postgres", Secret: "z"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != added.ID {
		t.Fatalf("Update changed id from %d to %d", added.ID, updated.ID)
	}

	got, err := repo.FindByID(added.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	want := domain.ServerProfile{ID: added.ID, Name: "db2", Host: "10.0.0.7", User: "postgres", Secret: "z"}
	if got != want {
		t.Errorf("FindByID() = %+v, want %+v", got, want)
	}
}

func TestProfileRepo_RoundTrip(t *testing.T) {
	path := storePath(t)
	repo := newTestRepo(t, path, 0)

	inputs := []domain.ProfileFields{
		{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"},
		{Name: "db <primary>", Host: "db.example.com:2222", User: "root", Secret: `p&"'<>ss`},
		{Name: "ünïcode", Host: "::1", User: "ops", Secret: "пароль"},
	}
	want := make(map[domain.ServerProfile]bool)
	for _, in := range inputs {
		want[mustAdd(t, repo, in)] = true
	}

	profiles, err := newTestRepo(t, path, 0).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(profiles) != len(want) {
		t.Fatalf("reloaded %d profiles, want %d", len(profiles), len(want))
	}
	for _, p := range profiles {
		if !want[p] {
			t.Errorf("unexpected profile after reload: %+v", p)
		}
	}
}

func TestProfileRepo_RejectsUnstorableText(t *testing.T) {
	tests := []struct {
		name   string
		fields domain.ProfileFields
	}{
		{name: "control char in password", fields: domain.ProfileFields{Name: "a", Host: "h", User: "u", Secret: "p\x01w"}},
		{name: "invalid utf-8 in password", fields: domain.ProfileFields{Name: "a", Host: "h", User: "u", Secret: "p\xffw"}},
		{name: "nul in host", fields: domain.ProfileFields{Name: "a", Host: "h\x00", User: "u", Secret: "s"}},
		{name: "escape in name", fields: domain.ProfileFields{Name: "\x1b[31ma", Host: "h", User: "u", Secret: "s"}},
		{name: "lone surrogate bytes in user", fields: domain.ProfileFields{Name: "a", Host: "h", User: "u\xed\xa0\x80", Secret: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := storePath(t)
			repo := newTestRepo(t, path, 0)
			mustAdd(t, repo, domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})
			before, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			_, err = repo.Add(tt.fields)
			var writeErr *domain.StorageWriteError
			if !errors.As(err, &writeErr) {
				t.Fatalf("Add() error = %v, want *StorageWriteError", err)
			}
			_, err = repo.Update(1, tt.fields)
			if !errors.As(err, &writeErr) {
				t.Fatalf("Update() error = %v, want *StorageWriteError", err)
			}

			after, _ := os.ReadFile(path)
			if string(after) != string(before) {
				t.Errorf("store changed after a rejected write")
			}
		})
	}
}

func TestProfileRepo_KeepsWhitespaceControlChars(t *testing.T) {
	path := storePath(t)
	in := domain.ProfileFields{Name: "a", Host: "h", User: "u", Secret: "p\tw\r\nx"}
	added := mustAdd(t, newTestRepo(t, path, 0), in)

	got, err := newTestRepo(t, path, 0).FindByID(added.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Fields() != in {
		t.Errorf("reloaded %q, want %q", got.Secret, in.Secret)
	}
}

func TestProfileRepo_ConcurrentAddsAssignUniqueIDs(t *testing.T) {
	const n = 50
	path := storePath(t)
	repo := newTestRepo(t, path, 0)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  []int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := repo.Add(domain.ProfileFields{Name: fmt.Sprintf("srv%d", i), Host: "h", User: "u", Secret: "s"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids = append(ids, p.ID)
		}(i)
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("concurrent Add failed: %v", errs[0])
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i+1 {
			t.Fatalf("ids = %v, want 1..%d without gaps or repeats", ids, n)
		}
	}

	profiles, err := newTestRepo(t, path, 0).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != n {
		t.Errorf("store holds %d profiles, want %d", len(profiles), n)
	}
}

func TestProfileRepo_UpdateNotFoundLeavesFileUnchanged(t *testing.T) {
	path := storePath(t)
	repo := newTestRepo(t, path, 3)
	mustAdd(t, repo, domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = repo.Update(42, domain.ProfileFields{Name: "ghost", Host: "h", User: "u", Secret: "s"})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("Update() error = %v, want ErrProfileNotFound", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("store changed after not-found update:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestProfileRepo_Scenario(t *testing.T) {
	repo := newTestRepo(t, storePath(t), 0)

	web := mustAdd(t, repo, domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})
	if web.ID != 1 {
		t.Fatalf("first profile id = %d, want 1", web.ID)
	}
	all, _ := repo.LoadAll()
	if len(all) != 1 {
		t.Fatalf("store has %d profiles, want 1", len(all))
	}

	db := mustAdd(t, repo, domain.ProfileFields{Name: "db1", Host: "10.0.0.6", User: "root", Secret: "y"})
	if db.ID != 2 {
		t.Fatalf("second profile id = %d, want 2", db.ID)
	}

	if _, err := repo.Update(1, domain.ProfileFields{Name: "web1b", Host: "10.0.0.5", User: "admin", Secret: "z"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.FindByID(1)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.ServerProfile{ID: 1, Name: "web1b", Host: "10.0.0.5", User: "admin", Secret: "z"}
	if got != want {
		t.Errorf("FindByID(1) = %+v, want %+v", got, want)
	}

	gotDB, err := repo.FindByName("db1")
	if err != nil {
		t.Fatal(err)
	}
	if gotDB != db {
		t.Errorf("FindByName(db1) = %+v, want %+v", gotDB, db)
	}
}

func TestProfileRepo_FindByNameReturnsFirstMatch(t *testing.T) {
	repo := newTestRepo(t, storePath(t), 0)
	first := mustAdd(t, repo, domain.ProfileFields{Name: "dup", Host: "a", User: "u", Secret: "s"})
	mustAdd(t, repo, domain.ProfileFields{Name: "dup", Host: "b", User: "u", Secret: "s"})

	got, err := repo.FindByName("dup")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Errorf("FindByName returned id %d, want %d", got.ID, first.ID)
	}

	if _, err := repo.FindByName("DUP"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("lookup must be case-sensitive, got err = %v", err)
	}
}

func TestProfileRepo_Delete(t *testing.T) {
	repo := newTestRepo(t, storePath(t), 0)
	mustAdd(t, repo, domain.ProfileFields{Name: "a", Host: "h", User: "u", Secret: "s"})
	mustAdd(t, repo, domain.ProfileFields{Name: "b", Host: "h", User: "u", Secret: "s"})
	mustAdd(t, repo, domain.ProfileFields{Name: "c", Host: "h", User: "u", Secret: "s"})

	if err := repo.Delete(2); err != nil {
		t.Fatalf("Delete(2) error = %v", err)
	}
	if _, err := repo.FindByID(2); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("FindByID(2) after delete: err = %v, want ErrProfileNotFound", err)
	}
	if err := repo.Delete(2); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("second Delete(2) error = %v, want ErrProfileNotFound", err)
	}

	p := mustAdd(t, repo, domain.ProfileFields{Name: "d", Host: "h", User: "u", Secret: "s"})
	if p.ID != 4 {
		t.Errorf("id after delete = %d, want 4", p.ID)
	}
}

func TestProfileRepo_CorruptStore(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not xml", content: "this is not xml"},
		{name: "wrong root", content: `<Servers><Id>1</Id></Servers>`},
		{name: "non numeric id", content: `<ArrayOfServers><Servers><Id>abc</Id></Servers></ArrayOfServers>`},
		{name: "missing id", content: `<ArrayOfServers><Servers><Name>a</Name></Servers></ArrayOfServers>`},
		{name: "duplicate id", content: `<ArrayOfServers><Servers><Id>1</Id></Servers><Servers><Id>1</Id></Servers></ArrayOfServers>`},
		{name: "truncated", content: `<ArrayOfServers><Servers><Id>1</Id><Name>web`},
		{name: "empty file", content: ""},
		{name: "whitespace only", content: " \n\t\n"},
		{name: "byte order mark only", content: "\xef\xbb\xbf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := storePath(t)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			repo := newTestRepo(t, path, 0)

			_, err := repo.LoadAll()
			var corrupt *domain.CorruptStoreError
			if !errors.As(err, &corrupt) {
				t.Fatalf("LoadAll() error = %v, want *CorruptStoreError", err)
			}
			if corrupt.Path != path {
				t.Errorf("CorruptStoreError.Path = %q, want %q", corrupt.Path, path)
			}

			if _, err := repo.Add(domain.ProfileFields{Name: "n", Host: "h", User: "u", Secret: "s"}); !errors.As(err, &corrupt) {
				t.Errorf("Add() on corrupt store error = %v, want *CorruptStoreError", err)
			}
			data, _ := os.ReadFile(path)
			if string(data) != tt.content {
				t.Errorf("corrupt store must not be overwritten")
			}
		})
	}
}

func TestProfileRepo_ReadsDotNetFile(t *testing.T) {
	path := storePath(t)
	content := "\xef\xbb\xbf" + `<?xml version="1.0" encoding="utf-8"?>
<ArrayOfServers xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <Servers>
    <Id>1</Id>
    <Name>web1</Name>
    <Ip>10.0.0.5</Ip>
    <User>admin</User>
    <Password>x</Password>
  </Servers>
</ArrayOfServers>`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := newTestRepo(t, path, 0).FindByName("web1")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	want := domain.ServerProfile{ID: 1, Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"}
	if got != want {
		t.Errorf("FindByName() = %+v, want %+v", got, want)
	}
}

func TestProfileRepo_WritesDotNetLayout(t *testing.T) {
	path := storePath(t)
	mustAdd(t, newTestRepo(t, path, 0), domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, fragment := range []string{"<ArrayOfServers>", "<Servers>", "<Id>1</Id>", "<Name>web1</Name>", "<Ip>10.0.0.5</Ip>", "<User>admin</User>", "<Password>x</Password>"} {
		if !strings.Contains(string(data), fragment) {
			t.Errorf("store file missing %q:\n%s", fragment, data)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != StoreFilePerms {
		t.Errorf("store file perms = %o, want %o", perm, StoreFilePerms)
	}
}

type failingRenameFS struct {
	ports.FileSystem
	renameErr error
}

func (f failingRenameFS) Rename(string, string) error {
	return f.renameErr
}

func TestProfileRepo_WriteFailureKeepsPreviousFile(t *testing.T) {
	path := storePath(t)
	mustAdd(t, newTestRepo(t, path, 0), domain.ProfileFields{Name: "web1", Host: "10.0.0.5", User: "admin", Secret: "x"})
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	diskFull := errors.New("no space left on device")
	repo := NewProfileRepo(zaptest.NewLogger(t).Sugar(), failingRenameFS{FileSystem: filesystem.NewOSFileSystem(), renameErr: diskFull}, path, 0)

	_, err = repo.Add(domain.ProfileFields{Name: "db1", Host: "10.0.0.6", User: "root", Secret: "y"})
	var writeErr *domain.StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Add() error = %v, want *StorageWriteError", err)
	}
	if !errors.Is(err, diskFull) {
		t.Errorf("StorageWriteError should wrap the underlying cause, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("failed write changed the store file")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestProfileRepo_BackupsAreRotated(t *testing.T) {
	path := storePath(t)
	repo := newTestRepo(t, path, 2)
	tick := time.Unix(1700000000, 0)
	repo.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for i := 0; i < 5; i++ {
		mustAdd(t, repo, domain.ProfileFields{Name: "srv", Host: "h", User: "u", Secret: "s"})
	}

	backups, err := repo.findBackupFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("found %d backups, want 2: %v", len(backups), backups)
	}

	// The newest backup holds the store as it was before the last add.
	sort.Strings(backups)
	prev := NewProfileRepo(zaptest.NewLogger(t).Sugar(), filesystem.NewOSFileSystem(), backups[len(backups)-1], 0)
	profiles, err := prev.LoadAll()
	if err != nil {
		t.Fatalf("newest backup is unreadable: %v", err)
	}
	if len(profiles) != 4 {
		t.Errorf("newest backup has %d profiles, want 4", len(profiles))
	}
}

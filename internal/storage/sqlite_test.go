package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/games/t2048"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testResult(id string, status t2048.Status, maxTile uint16, moves int, started time.Time) dispatch.Result {
	return dispatch.Result{
		ID:        id,
		Status:    status,
		Board:     t2048.Board{{maxTile, 2, 0, 0}, {4, 0, 0, 0}},
		MaxTile:   maxTile,
		Moves:     moves,
		Rotations: moves / 2,
		Seed:      uint64(moves) * 6,
		StartedAt: started,
		Duration:  time.Duration(moves) * time.Second,
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	started := time.UnixMilli(1_700_000_000_000)
	want := testResult("abc", t2048.StatusWon, 2048, 321, started)

	if err := store.SaveSessionResult(want); err != nil {
		t.Fatalf("SaveSessionResult() failed: %v", err)
	}

	got, err := store.SessionByID("abc")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("SessionByID() returned nil for a saved session")
	}

	if got.Status != "won" {
		t.Errorf("Status = %q, want won", got.Status)
	}
	if got.MaxTile != 2048 || got.Moves != 321 || got.Rotations != 160 {
		t.Errorf("counters = %d/%d/%d", got.MaxTile, got.Moves, got.Rotations)
	}
	if got.Seed != want.Seed {
		t.Errorf("Seed = %d, want %d", got.Seed, want.Seed)
	}
	if got.Board != want.Board {
		t.Errorf("Board = %v, want %v", got.Board, want.Board)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Duration != want.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, want.Duration)
	}
}

func TestStoreSessionByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.SessionByID("nope")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for an unknown session, got %+v", got)
	}
}

func TestStoreDuplicateSessionID(t *testing.T) {
	store := openTestStore(t)

	r := testResult("dup", t2048.StatusLost, 64, 10, time.Now())
	if err := store.SaveSessionResult(r); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.SaveSessionResult(r); err == nil {
		t.Error("expected an error when saving the same session twice")
	}
}

func TestStoreSeedKeepsAllBits(t *testing.T) {
	store := openTestStore(t)

	r := testResult("big", t2048.StatusLost, 8, 1, time.Now())
	r.Seed = 1<<63 + 5
	if _, err := store.SaveSession(r); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	got, err := store.SessionByID("big")
	if err != nil || got == nil {
		t.Fatalf("SessionByID() = %v, %v", got, err)
	}
	if got.Seed != r.Seed {
		t.Errorf("Seed = %d, want %d", got.Seed, r.Seed)
	}
}

func TestStoreRecentSessions(t *testing.T) {
	store := openTestStore(t)

	base := time.UnixMilli(1_700_000_000_000)
	for i := range 5 {
		r := testResult(fmt.Sprintf("s%d", i), t2048.StatusLost, 128, 10+i, base.Add(time.Duration(i)*time.Minute))
		if _, err := store.SaveSession(r); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}

	recent, err := store.RecentSessions(3)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(recent))
	}

	// Newest first
	for i, want := range []string{"s4", "s3", "s2"} {
		if recent[i].SessionID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].SessionID, want)
		}
	}
}

func TestStoreBestSessions(t *testing.T) {
	store := openTestStore(t)

	now := time.Now()
	results := []dispatch.Result{
		testResult("a", t2048.StatusLost, 256, 100, now),
		testResult("b", t2048.StatusWon, 2048, 400, now),
		testResult("c", t2048.StatusLost, 512, 200, now),
		testResult("d", t2048.StatusWon, 2048, 350, now),
	}
	for _, r := range results {
		if _, err := store.SaveSession(r); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}

	best, err := store.BestSessions(10)
	if err != nil {
		t.Fatalf("BestSessions() failed: %v", err)
	}

	var order []string
	for _, e := range best {
		order = append(order, e.SessionID)
	}
	want := []string{"d", "b", "c", "a"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("BestSessions() order = %v, want %v", order, want)
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	// Empty history
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Sessions != 0 || stats.WinRate() != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("unexpected stats for empty history: %+v", stats)
	}

	base := time.UnixMilli(1_700_000_000_000)
	store.SaveSession(testResult("w", t2048.StatusWon, 2048, 300, base))
	store.SaveSession(testResult("l1", t2048.StatusLost, 512, 100, base.Add(time.Hour)))
	store.SaveSession(testResult("l2", t2048.StatusLost, 128, 200, base.Add(2*time.Hour)))

	stats, err = store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.Sessions != 3 || stats.Wins != 1 || stats.Losses != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/1/2", stats.Sessions, stats.Wins, stats.Losses)
	}
	if stats.BestTile != 2048 {
		t.Errorf("BestTile = %d, want 2048", stats.BestTile)
	}
	if stats.AvgMoves != 200 || stats.TotalMoves != 600 {
		t.Errorf("moves avg/total = %v/%d, want 200/600", stats.AvgMoves, stats.TotalMoves)
	}
	if stats.TotalPlaying != 600*time.Second {
		t.Errorf("TotalPlaying = %v, want 10m", stats.TotalPlaying)
	}
	if !stats.LastPlayed.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("LastPlayed = %v", stats.LastPlayed)
	}
}

func TestStoreClearSessions(t *testing.T) {
	store := openTestStore(t)

	store.SaveSession(testResult("x", t2048.StatusLost, 32, 5, time.Now()))
	store.SaveSession(testResult("y", t2048.StatusLost, 64, 6, time.Now()))

	if err := store.ClearSessions(); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}

	recent, _ := store.RecentSessions(10)
	if len(recent) != 0 {
		t.Errorf("Expected 0 sessions after clear, got %d", len(recent))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestBoardEncoding(t *testing.T) {
	b := t2048.Board{{2, 4, 8, 16}, {32, 64, 128, 256}, {512, 1024, 2048, 0}, {0, 0, 0, 2}}

	encoded := formatBoard(b)
	if encoded != "2,4,8,16,32,64,128,256,512,1024,2048,0,0,0,0,2" {
		t.Errorf("formatBoard() = %q", encoded)
	}

	decoded, err := parseBoard(encoded)
	if err != nil {
		t.Fatalf("parseBoard() failed: %v", err)
	}
	if decoded != b {
		t.Errorf("parseBoard() = %v, want %v", decoded, b)
	}

	for _, bad := range []string{"", "1,2,3", "2,4,8,16,32,64,128,256,512,1024,2048,0,0,0,0,x"} {
		if _, err := parseBoard(bad); err == nil {
			t.Errorf("parseBoard(%q) should fail", bad)
		}
	}
}

package audit

import (
	"path/filepath"
	"testing"

	"github.com/akintewe/Neko-Oracle-RWA/core/types"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	journal, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	return journal, path
}

func testEvent(eventType, asset string) *types.Event {
	return &types.Event{
		Type:       eventType,
		Attributes: map[string]string{"asset": asset, "amount": "100"},
	}
}

func TestJournalAppendsAndCounts(t *testing.T) {
	journal, _ := openTestJournal(t)

	journal.Emit(testEvent("lending.deposit", "USDC"))
	journal.Emit(testEvent("lending.withdraw", "USDC"))
	journal.Emit(testEvent("lending.deposit", "TNOTE"))

	count, err := journal.CountByType("lending.deposit")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 deposits, got %d", count)
	}

	records, err := journal.Tail(2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Type != "lending.deposit" || records[1].Type != "lending.withdraw" {
		t.Fatalf("unexpected tail order: %s, %s", records[0].Type, records[1].Type)
	}
}

func TestJournalChainVerifies(t *testing.T) {
	journal, _ := openTestJournal(t)

	for i := 0; i < 10; i++ {
		journal.Emit(testEvent("lending.accrue", "USDC"))
	}
	bad, err := journal.Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if bad != 0 {
		t.Fatalf("chain reported broken at %d", bad)
	}
}

func TestJournalDetectsTampering(t *testing.T) {
	journal, _ := openTestJournal(t)

	journal.Emit(testEvent("lending.deposit", "USDC"))
	journal.Emit(testEvent("lending.borrow", "USDC"))
	journal.Emit(testEvent("lending.repay", "USDC"))

	if err := journal.db.Model(&Record{}).Where("id = ?", 2).Update("payload", `{"amount":"999"}`).Error; err != nil {
		t.Fatalf("tamper: %v", err)
	}

	bad, err := journal.Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if bad != 2 {
		t.Fatalf("expected record 2 flagged, got %d", bad)
	}
}

func TestJournalResumesChainAcrossReopen(t *testing.T) {
	journal, path := openTestJournal(t)
	journal.Emit(testEvent("lending.deposit", "USDC"))

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened.Emit(testEvent("lending.withdraw", "USDC"))

	bad, err := reopened.Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if bad != 0 {
		t.Fatalf("chain broken after reopen at %d", bad)
	}
}

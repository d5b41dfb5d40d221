package audit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"lukechampine.com/blake3"

	"github.com/akintewe/Neko-Oracle-RWA/core/events"
	"github.com/akintewe/Neko-Oracle-RWA/core/types"
)

// Record is one journaled event. Records form a hash chain: every digest
// commits to the previous record's digest, the event type and the payload,
// so any retroactive edit breaks verification from that point on.
type Record struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Type      string `gorm:"index;size:128"`
	Payload   string
	Digest    string `gorm:"size:64"`
	CreatedAt time.Time
}

// Journal persists emitted events into a SQLite database. It satisfies
// events.Emitter so it can be attached directly to the engine and ledger.
type Journal struct {
	mu     sync.Mutex
	db     *gorm.DB
	logger *slog.Logger
	last   [32]byte
}

// Open opens (or creates) the journal database at path.
func Open(path string, log *slog.Logger) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	j := &Journal{db: db, logger: log}

	var tip Record
	err = db.Order("id desc").First(&tip).Error
	switch {
	case err == nil:
		decoded, decodeErr := hex.DecodeString(tip.Digest)
		if decodeErr != nil || len(decoded) != len(j.last) {
			return nil, fmt.Errorf("corrupt digest on record %d", tip.ID)
		}
		copy(j.last[:], decoded)
	case err == gorm.ErrRecordNotFound:
		// Fresh journal starts from the zero digest.
	default:
		return nil, fmt.Errorf("read journal tip: %w", err)
	}
	return j, nil
}

// Emit appends the event to the journal. Failures are logged rather than
// propagated so the engine's state transition is never blocked by the audit
// trail.
func (j *Journal) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	payload := encodePayload(evt)

	j.mu.Lock()
	defer j.mu.Unlock()

	digest := chainDigest(j.last, evt.EventType(), payload)
	record := Record{
		Type:      evt.EventType(),
		Payload:   payload,
		Digest:    hex.EncodeToString(digest[:]),
		CreatedAt: time.Now().UTC(),
	}
	if err := j.db.Create(&record).Error; err != nil {
		j.logger.Error("audit journal append failed", "event", evt.EventType(), "error", err)
		return
	}
	j.last = digest
}

// Verify walks the full chain and reports the first record whose digest does
// not commit to its predecessor. A return of (0, nil) means the chain is
// intact.
func (j *Journal) Verify() (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var prev [32]byte
	var badID uint64
	var batch []Record
	err := j.db.Order("id asc").FindInBatches(&batch, 256, func(_ *gorm.DB, _ int) error {
		for _, record := range batch {
			want := chainDigest(prev, record.Type, record.Payload)
			if hex.EncodeToString(want[:]) != record.Digest {
				badID = record.ID
				return errChainBroken
			}
			prev = want
		}
		return nil
	}).Error
	if err == errChainBroken {
		return badID, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

// Tail returns the most recent n records, newest first.
func (j *Journal) Tail(n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	var records []Record
	if err := j.db.Order("id desc").Limit(n).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountByType returns how many records carry the given event type.
func (j *Journal) CountByType(eventType string) (int64, error) {
	var count int64
	if err := j.db.Model(&Record{}).Where("type = ?", eventType).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var errChainBroken = fmt.Errorf("audit journal: chain broken")

func chainDigest(prev [32]byte, eventType, payload string) [32]byte {
	h := blake3.New(32, nil)
	_, _ = h.Write(prev[:])
	_, _ = h.Write([]byte(eventType))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(payload))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func encodePayload(evt events.Event) string {
	if typed, ok := evt.(*types.Event); ok && typed != nil {
		raw, err := json.Marshal(typed.Attributes)
		if err == nil {
			return string(raw)
		}
	}
	return "{}"
}

package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pot-code/scorm-courseware/internal/infrastructure/driver"
)

// snapshotKeyPrefix fixed storage key, one record per learner
const snapshotKeyPrefix = "course-progress:"

// SnapshotKV SnapshotRepository implementation on the key-value store
type SnapshotKV struct {
	KVStore driver.KeyValueDB
}

var _ SnapshotRepository = &SnapshotKV{}

// NewSnapshotRepository create a key-value backed snapshot repository
func NewSnapshotRepository(KVStore driver.KeyValueDB) *SnapshotKV {
	return &SnapshotKV{
		KVStore: KVStore,
	}
}

func (repo *SnapshotKV) Load(ctx context.Context, learnerID string) (*CourseProgress, error) {
	key := snapshotKeyPrefix + learnerID
	if ok, err := repo.KVStore.Exists(key); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	raw, err := repo.KVStore.Get(key)
	if err != nil {
		return nil, err
	}
	cp := new(CourseProgress)
	if err := json.Unmarshal([]byte(raw), cp); err != nil {
		return nil, fmt.Errorf("malformed progress snapshot: %w", err)
	}
	if len(cp.Lessons) == 0 || cp.CurrentLesson < 1 {
		return nil, fmt.Errorf("malformed progress snapshot: missing lesson slots")
	}
	return cp, nil
}

func (repo *SnapshotKV) Save(ctx context.Context, learnerID string, cp *CourseProgress) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return repo.KVStore.Set(snapshotKeyPrefix+learnerID, string(raw))
}

func (repo *SnapshotKV) Clear(ctx context.Context, learnerID string) error {
	return repo.KVStore.Del(snapshotKeyPrefix + learnerID)
}

package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/KartikLabhshetwar/FolioSign/internal/documents"
	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/pagination"
)

// fakeDocuments tracks guest ownership per id and records cleanup calls.
type fakeDocuments struct {
	owned   map[uuid.UUID]bool
	calls   [][]uuid.UUID
	failErr error
}

func (f *fakeDocuments) Cleanup(ctx context.Context, ids []uuid.UUID) ([]documents.CleanupResult, error) {
	f.calls = append(f.calls, ids)

	if f.failErr != nil {
		return nil, f.failErr
	}

	results := make([]documents.CleanupResult, 0, len(ids))
	for _, id := range ids {
		owned, known := f.owned[id]
		switch {
		case !known:
			results = append(results, documents.CleanupResult{ID: id, Reason: "not found"})
		case owned:
			results = append(results, documents.CleanupResult{ID: id, Reason: "document has an owner"})
		default:
			results = append(results, documents.CleanupResult{ID: id, Deleted: true})
		}
	}
	return results, nil
}

func (f *fakeDocuments) List(context.Context, pagination.PageRequest, documents.Filter) (pagination.PageResult[documents.Document], error) {
	return pagination.PageResult[documents.Document]{}, nil
}
func (f *fakeDocuments) Get(context.Context, uuid.UUID) (documents.Document, error) {
	return documents.Document{}, documents.ErrNotFound
}
func (f *fakeDocuments) DownloadURL(context.Context, uuid.UUID) (string, error) { return "", nil }
func (f *fakeDocuments) Presign(context.Context, documents.PresignRequest) (storage.PresignedUpload, error) {
	return storage.PresignedUpload{}, nil
}
func (f *fakeDocuments) Upload(context.Context, documents.UploadRequest) (documents.Document, error) {
	return documents.Document{}, nil
}
func (f *fakeDocuments) Register(context.Context, documents.RegisterRequest) (documents.Document, error) {
	return documents.Document{}, nil
}
func (f *fakeDocuments) Sign(context.Context, uuid.UUID, documents.SignRequest) (documents.Document, error) {
	return documents.Document{}, nil
}
func (f *fakeDocuments) Delete(context.Context, uuid.UUID) error { return nil }

func testQueue(owned map[uuid.UUID]bool) (*Queue, *fakeDocuments) {
	fake := &fakeDocuments{owned: owned}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewQueue(fake, logger), fake
}

func TestQueueFlushDeletesOnlyGuestDocuments(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	owned := make(map[uuid.UUID]bool, 5)
	for i := range ids {
		ids[i] = uuid.New()
		owned[ids[i]] = i < 2 // first two have owners
	}

	queue, _ := testQueue(owned)
	queue.Enqueue(ids...)

	results, err := queue.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}

	deleted := 0
	for _, r := range results {
		if r.Deleted {
			deleted++
			if owned[r.ID] {
				t.Errorf("owned document %s was deleted", r.ID)
			}
		}
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	if queue.Len() != 0 {
		t.Errorf("queue not drained: %d remaining", queue.Len())
	}
}

func TestQueueDeduplicates(t *testing.T) {
	queue, fake := testQueue(map[uuid.UUID]bool{})

	id := uuid.New()
	queue.Enqueue(id, id, id)

	if queue.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", queue.Len())
	}

	if _, err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(fake.calls) != 1 || len(fake.calls[0]) != 1 {
		t.Errorf("cleanup called with %v, want single id", fake.calls)
	}
}

func TestQueueDequeue(t *testing.T) {
	queue, fake := testQueue(map[uuid.UUID]bool{})

	keep := uuid.New()
	withdrawn := uuid.New()
	queue.Enqueue(keep, withdrawn)

	queue.Dequeue(withdrawn)
	queue.Dequeue(uuid.New()) // unknown id is a no-op

	if queue.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", queue.Len())
	}

	if _, err := queue.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(fake.calls) != 1 || len(fake.calls[0]) != 1 || fake.calls[0][0] != keep {
		t.Errorf("cleanup called with %v, want only %s", fake.calls, keep)
	}

	// A dequeued id can be enqueued again later.
	queue.Enqueue(withdrawn)
	if queue.Len() != 1 {
		t.Errorf("re-enqueue after dequeue: Len() = %d, want 1", queue.Len())
	}
}

func TestQueueFlushEmpty(t *testing.T) {
	queue, fake := testQueue(map[uuid.UUID]bool{})

	results, err := queue.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
	if len(fake.calls) != 0 {
		t.Error("cleanup called for empty queue")
	}
}

func TestQueueRequeuesOnFailure(t *testing.T) {
	queue, fake := testQueue(map[uuid.UUID]bool{})
	fake.failErr = errors.New("database offline")

	queue.Enqueue(uuid.New(), uuid.New())

	if _, err := queue.Flush(context.Background()); err == nil {
		t.Fatal("Flush() succeeded, want error")
	}
	if queue.Len() != 2 {
		t.Errorf("failed batch not requeued: Len() = %d, want 2", queue.Len())
	}
}

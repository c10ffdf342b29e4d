package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/repository"
	"github.com/Harsh-BH/SetForge/internal/setcalc"
)

var _ repository.Store = (*Store)(nil)

// Barcode is one slot of the in-memory barcode pool.
type Barcode struct {
	Code string
	Used bool
}

// Store is an in-memory repository.Store for tests. Transactions are serialized
// and roll back by restoring a snapshot when fn returns an error.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	jobs     map[int64]*domain.SetJob
	nextID   int64
	barcodes []Barcode

	// Hook functions for injecting errors. They run before the in-memory behaviour
	// and replace it when they return a non-nil error.
	CreateFn         func(ctx context.Context, job *domain.SetJob) error
	MarkAggregatedFn func(ctx context.Context, id int64, barcode string) error
	MarkErrorFn      func(ctx context.Context, id int64, reason string) error
	ApplyImportFn    func(ctx context.Context, id, itemID, variantID int64) error
	ClaimNextFn      func(ctx context.Context) error

	// Recorded calls for assertions.
	SignatureLocks int
	Transactions   int
	Rollbacks      int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{jobs: make(map[int64]*domain.SetJob)}
}

func (s *Store) Jobs() repository.SetJobRepository { return &jobRepo{s: s} }

func (s *Store) Barcodes() repository.BarcodePool { return &barcodePool{s: s} }

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.Transactions++
	jobs, nextID, barcodes := s.snapshot()
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.jobs, s.nextID, s.barcodes = jobs, nextID, barcodes
		s.Rollbacks++
		s.mu.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(&txStore{s: s}); err != nil {
		rollback()
		return err
	}
	return nil
}

// AddBarcodes appends unused barcodes to the pool in id order.
func (s *Store) AddBarcodes(codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range codes {
		s.barcodes = append(s.barcodes, Barcode{Code: c})
	}
}

// BarcodeSlots returns a copy of the pool.
func (s *Store) BarcodeSlots() []Barcode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Barcode(nil), s.barcodes...)
}

// Seed stores job as is, assigning an id when it has none.
func (s *Store) Seed(job *domain.SetJob) *domain.SetJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == 0 {
		s.nextID++
		job.ID = s.nextID
	} else if job.ID > s.nextID {
		s.nextID = job.ID
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
		job.UpdatedAt = job.CreatedAt
	}
	s.jobs[job.ID] = cloneJob(job)
	return cloneJob(job)
}

// Job returns a copy of the stored job, or nil.
func (s *Store) Job(id int64) *domain.SetJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		return cloneJob(j)
	}
	return nil
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Store) snapshot() (map[int64]*domain.SetJob, int64, []Barcode) {
	jobs := make(map[int64]*domain.SetJob, len(s.jobs))
	for id, j := range s.jobs {
		jobs[id] = cloneJob(j)
	}
	return jobs, s.nextID, append([]Barcode(nil), s.barcodes...)
}

type txStore struct {
	s *Store
}

func (t *txStore) Jobs() repository.SetJobRepository { return &jobRepo{s: t.s} }

func (t *txStore) Barcodes() repository.BarcodePool { return &barcodePool{s: t.s} }

func (t *txStore) InTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

type jobRepo struct {
	s *Store
}

func (r *jobRepo) Create(ctx context.Context, job *domain.SetJob) error {
	if r.s.CreateFn != nil {
		if err := r.s.CreateFn(ctx, job); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	r.s.nextID++
	job.ID = r.s.nextID
	job.Status = domain.StatusOpen
	job.Items = domain.NewItems(job.VariantIDs())
	job.CreatedAt = now
	job.UpdatedAt = now
	r.s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *jobRepo) GetByID(_ context.Context, id int64) (*domain.SetJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(j), nil
}

func (r *jobRepo) List(_ context.Context) ([]*domain.SetJob, error) {
	return r.collect(func(*domain.SetJob) bool { return true }, true), nil
}

func (r *jobRepo) ListAggregatable(_ context.Context) ([]*domain.SetJob, error) {
	return r.collect(func(j *domain.SetJob) bool { return j.Status.Aggregatable() }, false), nil
}

func (r *jobRepo) Update(_ context.Context, job *domain.SetJob) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.jobs[job.ID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if !stored.Status.Editable() {
		return domain.ErrJobNotEditable
	}
	stored.RequestedBy = job.RequestedBy
	stored.SetType = job.SetType
	stored.Status = domain.StatusOpen
	stored.LastError = nil
	stored.Items = domain.NewItems(job.VariantIDs())
	stored.UpdatedAt = time.Now().UTC()

	job.Status = stored.Status
	job.LastError = nil
	job.Items = domain.NewItems(job.VariantIDs())
	job.CreatedAt = stored.CreatedAt
	job.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *jobRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(r.s.jobs, id)
	return nil
}

func (r *jobRepo) LockSignatures(_ context.Context) error {
	r.s.mu.Lock()
	r.s.SignatureLocks++
	r.s.mu.Unlock()
	return nil
}

func (r *jobRepo) Signatures(_ context.Context, count int, excludeID int64) ([]domain.JobSignature, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.JobSignature
	for _, j := range r.sortedLocked(false) {
		if j.ID == excludeID || len(j.Items) != count {
			continue
		}
		out = append(out, domain.JobSignature{
			JobID:        j.ID,
			NewVariantID: j.NewVariantID,
			Count:        len(j.Items),
			Signature:    setcalc.Signature(j.VariantIDs()),
		})
	}
	return out, nil
}

func (r *jobRepo) MarkAggregated(ctx context.Context, id int64, barcode string) error {
	if r.s.MarkAggregatedFn != nil {
		if err := r.s.MarkAggregatedFn(ctx, id, barcode); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if !j.Status.Aggregatable() {
		return domain.ErrJobNotEligible
	}
	j.Status = domain.StatusWaitingForComponents
	j.Barcode = &barcode
	j.LastError = nil
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *jobRepo) MarkError(ctx context.Context, id int64, reason string) error {
	if r.s.MarkErrorFn != nil {
		if err := r.s.MarkErrorFn(ctx, id, reason); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if !j.Status.Aggregatable() {
		return domain.ErrJobNotEligible
	}
	j.Status = domain.StatusError
	j.LastError = &reason
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *jobRepo) ApplyImport(ctx context.Context, id, itemID, variantID int64) (bool, error) {
	if r.s.ApplyImportFn != nil {
		if err := r.s.ApplyImportFn(ctx, id, itemID, variantID); err != nil {
			return false, err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok || !j.Status.Importable() {
		return false, nil
	}
	j.NewItemID = &itemID
	j.NewVariantID = &variantID
	j.Status = domain.StatusComponentsAdded
	j.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *jobRepo) collect(keep func(*domain.SetJob) bool, desc bool) []*domain.SetJob {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.SetJob
	for _, j := range r.sortedLocked(desc) {
		if keep(j) {
			out = append(out, cloneJob(j))
		}
	}
	return out
}

func (r *jobRepo) sortedLocked(desc bool) []*domain.SetJob {
	jobs := make([]*domain.SetJob, 0, len(r.s.jobs))
	for _, j := range r.s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(a, b int) bool {
		if desc {
			return jobs[a].ID > jobs[b].ID
		}
		return jobs[a].ID < jobs[b].ID
	})
	return jobs
}

type barcodePool struct {
	s *Store
}

func (p *barcodePool) ClaimNext(ctx context.Context) (string, error) {
	if p.s.ClaimNextFn != nil {
		if err := p.s.ClaimNextFn(ctx); err != nil {
			return "", err
		}
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for i := range p.s.barcodes {
		if !p.s.barcodes[i].Used {
			p.s.barcodes[i].Used = true
			return p.s.barcodes[i].Code, nil
		}
	}
	return "", domain.ErrMissingBarcode
}

func (p *barcodePool) Peek(_ context.Context, limit int) ([]string, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var out []string
	for _, b := range p.s.barcodes {
		if len(out) == limit {
			break
		}
		if !b.Used {
			out = append(out, b.Code)
		}
	}
	return out, nil
}

func (p *barcodePool) CountUnused(_ context.Context) (int64, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var n int64
	for _, b := range p.s.barcodes {
		if !b.Used {
			n++
		}
	}
	return n, nil
}

func cloneJob(j *domain.SetJob) *domain.SetJob {
	c := *j
	c.Items = append([]domain.SetJobItem(nil), j.Items...)
	if c.Items == nil {
		c.Items = []domain.SetJobItem{}
	}
	return &c
}

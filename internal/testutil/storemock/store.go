// Package storemock backs the func-field repository mocks with in-memory
// maps. WithinTx snapshots the maps and restores them when the callback
// fails, so usecase tests can assert rollback behaviour.
package storemock

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	"ibb-guide/internal/testutil/accountmock"
	"ibb-guide/internal/testutil/auditmock"
	"ibb-guide/internal/testutil/changemock"
	"ibb-guide/internal/testutil/listingmock"
	"ibb-guide/internal/testutil/partnermock"
	"ibb-guide/internal/testutil/requestmock"
	"ibb-guide/internal/testutil/uowmock"
)

var ErrDuplicateActiveKey = errors.New("storemock: duplicate active key")

type state struct {
	Accounts   map[string]account.Account
	Partners   map[string]partner.Profile
	Listings   map[string]listing.Listing
	Categories map[uint64]bool
	Changes    map[string]pendingchange.Change
	Requests   map[string]request.Request
	Logs       []request.StatusLog
	Versions   []request.EntityVersion
	Decisions  []request.Decision
	Audit      []audit.Record
}

func (s state) clone() state {
	return state{
		Accounts:   maps.Clone(s.Accounts),
		Partners:   maps.Clone(s.Partners),
		Listings:   maps.Clone(s.Listings),
		Categories: maps.Clone(s.Categories),
		Changes:    maps.Clone(s.Changes),
		Requests:   maps.Clone(s.Requests),
		Logs:       slices.Clone(s.Logs),
		Versions:   slices.Clone(s.Versions),
		Decisions:  slices.Clone(s.Decisions),
		Audit:      slices.Clone(s.Audit),
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	state
	nextID uint64

	// AuditErr, when set, fails every audit insert.
	AuditErr error
}

func New() *Store {
	return &Store{state: state{
		Accounts:   map[string]account.Account{},
		Partners:   map[string]partner.Profile{},
		Listings:   map[string]listing.Listing{},
		Categories: map[uint64]bool{},
		Changes:    map[string]pendingchange.Change{},
		Requests:   map[string]request.Request{},
	}}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// Seed helpers assign numeric ids and store copies.

func (s *Store) AddAccount(a account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.Accounts[a.AccountID] = a
}

func (s *Store) AddPartner(p partner.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.Partners[p.ProfileID] = p
}

func (s *Store) AddListing(l listing.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.Listings[l.ListingID] = l
}

func (s *Store) AddCategory(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Categories[id] = true
}

func (s *Store) Listing(listingID string) listing.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Listings[listingID]
}

func (s *Store) Partner(profileID string) partner.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Partners[profileID]
}

func (s *Store) Account(accountID string) account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Accounts[accountID]
}

func (s *Store) Change(changeID string) pendingchange.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Changes[changeID]
}

func (s *Store) Request(requestID string) request.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests[requestID]
}

func (s *Store) AuditRecords() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Audit)
}

// UoW runs callbacks one at a time and rolls the maps back on error.
func (s *Store) UoW() *uowmock.UoW {
	repos := s.Repos()
	inner := uowmock.Passthrough(repos)
	return uowmock.New().
		WithWithinTx(func(ctx context.Context, fn func(uow.Repos) error) error {
			return s.atomic(func() error { return inner.WithinTx(ctx, fn) })
		}).
		WithWithinListingTx(func(ctx context.Context, listingID string, fn func(uow.Repos, *listing.Listing) error) error {
			return s.atomic(func() error { return inner.WithinListingTx(ctx, listingID, fn) })
		})
}

func (s *Store) atomic(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	saved := s.state.clone()
	s.mu.Unlock()

	err := fn()
	if err != nil {
		s.mu.Lock()
		s.state = saved
		s.mu.Unlock()
	}
	return err
}

// Repos exposes the store through the func-field mocks.
func (s *Store) Repos() uow.Repos {
	return uow.Repos{
		Accounts:       s.accounts(),
		Partners:       s.partners(),
		Listings:       s.listings(),
		PendingChanges: s.changes(),
		Requests:       s.requests(),
		Audit:          s.audit(),
	}
}

func (s *Store) accounts() *accountmock.Repo {
	return &accountmock.Repo{
		GetByAccountIDFn: func(_ context.Context, accountID string) (*account.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.Accounts[accountID]
			if !ok {
				return nil, account.ErrNotFound
			}
			return &a, nil
		},
		ListReviewersFn: func(context.Context) ([]account.Account, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []account.Account
			for _, a := range s.Accounts {
				if a.CanReview() {
					out = append(out, a)
				}
			}
			return out, nil
		},
		UpdateStatusFn: func(_ context.Context, accountID string, status account.Status, active bool) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.Accounts[accountID]
			if !ok {
				return account.ErrNotFound
			}
			a.AccountStatus = status
			a.IsActive = active
			s.Accounts[accountID] = a
			return nil
		},
		AssignRoleFn: func(_ context.Context, accountID, role string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			a, ok := s.Accounts[accountID]
			if !ok {
				return account.ErrNotFound
			}
			a.Role = role
			s.Accounts[accountID] = a
			return nil
		},
	}
}

func (s *Store) partners() *partnermock.Repo {
	return &partnermock.Repo{
		CreateFn: func(_ context.Context, p *partner.Profile) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			p.ID = s.id()
			s.Partners[p.ProfileID] = *p
			return nil
		},
		GetByProfileIDFn: func(_ context.Context, profileID string) (*partner.Profile, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			p, ok := s.Partners[profileID]
			if !ok {
				return nil, partner.ErrNotFound
			}
			return &p, nil
		},
		ListByStatusFn: func(_ context.Context, status workflow.Status) ([]partner.Profile, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []partner.Profile
			for _, p := range s.Partners {
				if p.Status == status {
					out = append(out, p)
				}
			}
			return out, nil
		},
		CountByStatusFn: func(_ context.Context, status workflow.Status) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var n int64
			for _, p := range s.Partners {
				if p.Status == status {
					n++
				}
			}
			return n, nil
		},
		UpdateFn: func(_ context.Context, p *partner.Profile, expected workflow.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.Partners[p.ProfileID]
			if !ok || cur.Status != expected || cur.Version != p.Version {
				return workflow.ErrStaleState
			}
			p.Version++
			s.Partners[p.ProfileID] = *p
			return nil
		},
	}
}

func (s *Store) listings() *listingmock.Repo {
	return &listingmock.Repo{
		CreateFn: func(_ context.Context, l *listing.Listing) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			l.ID = s.id()
			s.Listings[l.ListingID] = *l
			return nil
		},
		GetByListingIDFn: func(_ context.Context, listingID string) (*listing.Listing, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			l, ok := s.Listings[listingID]
			if !ok {
				return nil, listing.ErrNotFound
			}
			return &l, nil
		},
		ListByStatusFn: func(_ context.Context, status workflow.Status) ([]listing.Listing, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []listing.Listing
			for _, l := range s.Listings {
				if l.ApprovalStatus == status {
					out = append(out, l)
				}
			}
			return out, nil
		},
		CountByStatusFn: func(_ context.Context, status workflow.Status) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var n int64
			for _, l := range s.Listings {
				if l.ApprovalStatus == status {
					n++
				}
			}
			return n, nil
		},
		UpdateFn: func(_ context.Context, l *listing.Listing, expected workflow.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.Listings[l.ListingID]
			if !ok || cur.ApprovalStatus != expected || cur.Version != l.Version {
				return workflow.ErrStaleState
			}
			l.Version++
			s.Listings[l.ListingID] = *l
			return nil
		},
		CategoryExistsFn: func(_ context.Context, id uint64) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.Categories[id], nil
		},
	}
}

func (s *Store) unresolved(match func(pendingchange.Change) bool) []pendingchange.Change {
	var out []pendingchange.Change
	for _, c := range s.Changes {
		if c.IsPending() && match(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b pendingchange.Change) int { return int(b.ID) - int(a.ID) })
	return out
}

func (s *Store) changes() *changemock.Repo {
	return &changemock.Repo{
		CreateFn: func(_ context.Context, c *pendingchange.Change) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c.ActiveKey != nil {
				for _, other := range s.Changes {
					if other.ActiveKey != nil && *other.ActiveKey == *c.ActiveKey {
						return ErrDuplicateActiveKey
					}
				}
			}
			c.ID = s.id()
			s.Changes[c.ChangeID] = *c
			return nil
		},
		GetByChangeIDFn: func(_ context.Context, changeID string) (*pendingchange.Change, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			c, ok := s.Changes[changeID]
			if !ok {
				return nil, pendingchange.ErrNotFound
			}
			return &c, nil
		},
		FindUnresolvedFn: func(_ context.Context, listingID, field string) (*pendingchange.Change, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			found := s.unresolved(func(c pendingchange.Change) bool {
				return c.ListingID == listingID && c.FieldName == field
			})
			if len(found) == 0 {
				return nil, pendingchange.ErrNotFound
			}
			return &found[0], nil
		},
		ListUnresolvedForListingFn: func(_ context.Context, listingID string) ([]pendingchange.Change, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.unresolved(func(c pendingchange.Change) bool { return c.ListingID == listingID }), nil
		},
		ListUnresolvedFn: func(context.Context) ([]pendingchange.Change, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.unresolved(func(pendingchange.Change) bool { return true }), nil
		},
		CountUnresolvedFn: func(context.Context) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return int64(len(s.unresolved(func(pendingchange.Change) bool { return true }))), nil
		},
		UpdateFn: func(_ context.Context, c *pendingchange.Change, expected workflow.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.Changes[c.ChangeID]
			if !ok || cur.Status != expected || cur.Version != c.Version {
				return workflow.ErrStaleState
			}
			c.Version++
			s.Changes[c.ChangeID] = *c
			return nil
		},
	}
}

func (s *Store) requests() *requestmock.Repo {
	return &requestmock.Repo{
		CreateFn: func(_ context.Context, r *request.Request) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			r.ID = s.id()
			s.Requests[r.RequestID] = *r
			return nil
		},
		GetByRequestIDFn: func(_ context.Context, requestID string) (*request.Request, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			r, ok := s.Requests[requestID]
			if !ok {
				return nil, request.ErrNotFound
			}
			return &r, nil
		},
		ListByStatusFn: func(_ context.Context, status workflow.Status) ([]request.Request, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []request.Request
			for _, r := range s.Requests {
				if r.Status == status {
					out = append(out, r)
				}
			}
			return out, nil
		},
		UpdateFn: func(_ context.Context, r *request.Request, expected workflow.Status) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.Requests[r.RequestID]
			if !ok || cur.Status != expected || cur.Version != r.Version {
				return workflow.ErrStaleState
			}
			r.Version++
			s.Requests[r.RequestID] = *r
			return nil
		},
		AddStatusLogFn: func(_ context.Context, l *request.StatusLog) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			l.ID = s.id()
			s.Logs = append(s.Logs, *l)
			return nil
		},
		ListStatusLogsFn: func(_ context.Context, requestID string) ([]request.StatusLog, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []request.StatusLog
			for _, l := range s.Logs {
				if l.RequestID == requestID {
					out = append(out, l)
				}
			}
			return out, nil
		},
		AddDecisionFn: func(_ context.Context, d *request.Decision) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			d.ID = s.id()
			s.Decisions = append(s.Decisions, *d)
			return nil
		},
		ListDecisionsFn: func(_ context.Context, requestID string) ([]request.Decision, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []request.Decision
			for i := len(s.Decisions) - 1; i >= 0; i-- {
				if d := s.Decisions[i]; d.RequestID == requestID {
					out = append(out, d)
				}
			}
			return out, nil
		},
		CreateVersionFn: func(_ context.Context, v *request.EntityVersion) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			v.ID = s.id()
			s.Versions = append(s.Versions, *v)
			return nil
		},
		ListVersionsFn: func(_ context.Context, targetKind, targetID string) ([]request.EntityVersion, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []request.EntityVersion
			for i := len(s.Versions) - 1; i >= 0; i-- {
				if v := s.Versions[i]; v.TargetKind == targetKind && v.TargetID == targetID {
					out = append(out, v)
				}
			}
			return out, nil
		},
	}
}

func (s *Store) audit() *auditmock.Repo {
	return &auditmock.Repo{
		CreateFn: func(_ context.Context, r *audit.Record) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.AuditErr != nil {
				return s.AuditErr
			}
			r.ID = s.id()
			s.Audit = append(s.Audit, *r)
			return nil
		},
		ListForTargetFn: func(_ context.Context, targetKind, targetID string) ([]audit.Record, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []audit.Record
			for _, r := range s.Audit {
				if r.TargetKind == targetKind && r.TargetID == targetID {
					out = append(out, r)
				}
			}
			return out, nil
		},
	}
}

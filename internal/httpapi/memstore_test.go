package httpapi

// In-memory store implementations backing the transport tests. They honor the
// same sentinel contracts as the PostgreSQL stores.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"subcore.org/internal/account"
	"subcore.org/internal/catalog"
	"subcore.org/internal/entitlement"
	"subcore.org/internal/ids"
	"subcore.org/internal/payment"
	"subcore.org/internal/rbac"
	"subcore.org/internal/session"
	"subcore.org/internal/subscription"
)

type memAccounts struct {
	mu   sync.Mutex
	rows map[string]*account.Account
	sys  map[string]*account.SysAccount
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		rows: map[string]*account.Account{},
		sys:  map[string]*account.SysAccount{},
	}
}

func (m *memAccounts) Create(_ context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.Username, a.Username) || strings.EqualFold(row.Email, a.Email) {
			return account.ErrConflict
		}
	}
	if a.ID == "" {
		a.ID = ids.New()
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAccounts) Find(_ context.Context, id string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

func (m *memAccounts) FindByUsername(_ context.Context, username string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if strings.EqualFold(row.Username, username) {
			cp := *row
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

func (m *memAccounts) List(_ context.Context) ([]*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*account.Account, 0, len(m.rows))
	for _, row := range m.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccounts) UpdateProfile(_ context.Context, id, username, name, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return account.ErrNotFound
	}
	row.Username = username
	row.Name = name
	row.Email = email
	return nil
}

func (m *memAccounts) UpdateCredential(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return account.ErrNotFound
	}
	row.CredentialHash = hash
	return nil
}

func (m *memAccounts) FindSysByUsername(_ context.Context, username string) (*account.SysAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.sys[username]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

type memCatalog struct {
	mu        sync.Mutex
	plans     map[string]*catalog.Plan
	resources map[string]*catalog.Resource
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		plans:     map[string]*catalog.Plan{},
		resources: map[string]*catalog.Resource{},
	}
}

func (m *memCatalog) CreatePlan(_ context.Context, p *catalog.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = ids.New()
	}
	p.CreatedAt = time.Now().UTC()
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *memCatalog) FindPlan(_ context.Context, id string) (*catalog.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.plans[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, catalog.ErrNotFound
}

func (m *memCatalog) ListPlans(_ context.Context) ([]*catalog.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*catalog.Plan, 0, len(m.plans))
	for _, row := range m.plans {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCatalog) UpdatePlan(_ context.Context, p *catalog.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *memCatalog) CreateResource(_ context.Context, r *catalog.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = ids.New()
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

func (m *memCatalog) FindResource(_ context.Context, id string) (*catalog.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.resources[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, catalog.ErrNotFound
}

func (m *memCatalog) ListResources(_ context.Context) ([]*catalog.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*catalog.Resource, 0, len(m.resources))
	for _, row := range m.resources {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCatalog) ListResourcesForPlan(_ context.Context, planID string) ([]*catalog.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalog.Resource
	for _, row := range m.resources {
		if row.PlanID == planID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCatalog) UpdateResource(_ context.Context, r *catalog.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[r.ID]; !ok {
		return catalog.ErrNotFound
	}
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

type memSubscriptions struct {
	mu    sync.Mutex
	rows  map[string]*subscription.Subscription
	links []subscription.GroupLink
}

func newMemSubscriptions() *memSubscriptions {
	return &memSubscriptions{rows: map[string]*subscription.Subscription{}}
}

func (m *memSubscriptions) Insert(_ context.Context, sub *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.ID == "" {
		sub.ID = ids.New()
	}
	sub.CreatedAt = time.Now().UTC()
	cp := *sub
	m.rows[sub.ID] = &cp
	return nil
}

func (m *memSubscriptions) Find(_ context.Context, id string) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, subscription.ErrNotFound
}

func (m *memSubscriptions) FindByAccount(_ context.Context, accountID string) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *subscription.Subscription
	for _, row := range m.rows {
		if row.AccountID != accountID {
			continue
		}
		if best == nil || (row.Active && !best.Active) {
			best = row
		}
	}
	if best == nil {
		return nil, subscription.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memSubscriptions) ListByAccount(_ context.Context, accountID string) ([]*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*subscription.Subscription
	for _, row := range m.rows {
		if row.AccountID == accountID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubscriptions) ListDetailed(_ context.Context) ([]*subscription.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*subscription.Detail, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, &subscription.Detail{Subscription: *row})
	}
	return out, nil
}

func (m *memSubscriptions) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return subscription.ErrNotFound
	}
	row.Active = active
	return nil
}

func (m *memSubscriptions) Delegate(_ context.Context, parentSub *subscription.Subscription, parentID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Conflict check before any mutation, like the transactional store.
	for _, row := range m.rows {
		if row.AccountID == childID && row.Active {
			return fmt.Errorf("%w: child already has an active subscription", subscription.ErrConflict)
		}
	}
	for id, row := range m.rows {
		if row.AccountID == childID {
			delete(m.rows, id)
		}
	}
	cp := subscription.Subscription{
		ID:        ids.New(),
		AccountID: childID,
		PlanID:    parentSub.PlanID,
		Active:    parentSub.Active,
		StartDate: parentSub.StartDate,
		EndDate:   parentSub.EndDate,
		CreatedAt: time.Now().UTC(),
	}
	m.rows[cp.ID] = &cp
	m.links = append(m.links, subscription.GroupLink{
		ID:        ids.New(),
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *memSubscriptions) LinksByParent(_ context.Context, parentID string) ([]subscription.GroupLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []subscription.GroupLink
	for _, link := range m.links {
		if link.ParentID == parentID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *memSubscriptions) LinksByChild(_ context.Context, childID string) ([]subscription.GroupLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []subscription.GroupLink
	for _, link := range m.links {
		if link.ChildID == childID {
			out = append(out, link)
		}
	}
	return out, nil
}

type memPayments struct {
	mu   sync.Mutex
	rows []*payment.Payment
}

func (m *memPayments) Insert(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = ids.New()
	}
	p.PaidAt = time.Now().UTC()
	cp := *p
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memPayments) ListDetailed(_ context.Context) ([]*payment.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*payment.Detail, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, &payment.Detail{Payment: *row})
	}
	return out, nil
}

type memRBAC struct {
	mu     sync.Mutex
	roles  map[string]*rbac.Role
	perms  map[string]*rbac.Permission
	grants map[string][]string
}

func newMemRBAC() *memRBAC {
	return &memRBAC{
		roles:  map[string]*rbac.Role{},
		perms:  map[string]*rbac.Permission{},
		grants: map[string][]string{},
	}
}

func (m *memRBAC) CreateRole(_ context.Context, r *rbac.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.roles {
		if row.Name == r.Name {
			return rbac.ErrConflict
		}
	}
	if r.ID == "" {
		r.ID = ids.New()
	}
	r.CreatedAt = time.Now().UTC()
	cp := *r
	m.roles[r.ID] = &cp
	return nil
}

func (m *memRBAC) UpdateRole(_ context.Context, id, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.roles[id]
	if !ok {
		return rbac.ErrNotFound
	}
	row.Name = name
	row.Description = description
	return nil
}

func (m *memRBAC) ListRoles(_ context.Context) ([]*rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*rbac.Role, 0, len(m.roles))
	for _, row := range m.roles {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRBAC) CreatePermission(_ context.Context, p *rbac.Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = ids.New()
	}
	p.CreatedAt = time.Now().UTC()
	cp := *p
	m.perms[p.ID] = &cp
	return nil
}

func (m *memRBAC) ListPermissions(_ context.Context) ([]*rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*rbac.Permission, 0, len(m.perms))
	for _, row := range m.perms {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRBAC) Grant(_ context.Context, roleID, permissionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[roleID] = append(m.grants[roleID], permissionID)
	return nil
}

func (m *memRBAC) PermissionsForRole(_ context.Context, roleID string) ([]*rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rbac.Permission
	for _, pid := range m.grants[roleID] {
		if row, ok := m.perms[pid]; ok {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSessions struct {
	mu      sync.Mutex
	byToken map[string]string
	byAcct  map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]string{}, byAcct: map[string]string{}}
}

func (m *memSessions) Replace(_ context.Context, accountID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.byAcct[accountID]; ok {
		delete(m.byToken, old)
	}
	m.byAcct[accountID] = token
	m.byToken[token] = accountID
	return nil
}

func (m *memSessions) Consume(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byToken[token]
	if !ok {
		return "", session.ErrUnknownToken
	}
	return id, nil
}

// memEntitlements assembles snapshots from the in-memory subscription and
// catalog stores, mirroring the SQL assembler's join.
type memEntitlements struct {
	subs    *memSubscriptions
	catalog *memCatalog
}

func (m *memEntitlements) Snapshot(ctx context.Context, accountID string) (entitlement.Snapshot, error) {
	snap := entitlement.Snapshot{Resources: []entitlement.Resource{}}
	sub, err := m.subs.FindByAccount(ctx, accountID)
	if err != nil {
		return snap, nil
	}
	snap.Subscription = &entitlement.Subscription{
		ID:        sub.ID,
		PlanID:    sub.PlanID,
		Active:    sub.Active,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}
	resources, err := m.catalog.ListResourcesForPlan(ctx, sub.PlanID)
	if err != nil {
		return snap, err
	}
	for _, res := range resources {
		snap.Resources = append(snap.Resources, entitlement.Resource{
			ID:   res.ID,
			Name: res.Name,
			Max:  res.Max,
		})
	}
	return snap, nil
}

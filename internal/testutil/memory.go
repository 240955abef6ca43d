// Package testutil holds in-memory stand-ins for the Mongo repositories and Redis
// caches, plus a small catalog fixture.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"vitasurvey/internal/model"
)

// CategoryRepo implements repository.CategoryRepo
type CategoryRepo struct {
	mu    sync.Mutex
	tree  model.Tree
	Loads int
	Err   error
}

func NewCategoryRepo(tree model.Tree) *CategoryRepo {
	return &CategoryRepo{tree: tree}
}

func (r *CategoryRepo) LoadTree(ctx context.Context) (model.Tree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loads++
	if r.Err != nil {
		return model.Tree{}, r.Err
	}
	return r.tree, nil
}

func (r *CategoryRepo) ReplaceTree(ctx context.Context, tree model.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree = tree
	return nil
}

// MemberRepo implements repository.MemberRepo
type MemberRepo struct {
	mu      sync.Mutex
	members map[string]*model.Member
}

func NewMemberRepo(members ...model.Member) *MemberRepo {
	r := &MemberRepo{members: make(map[string]*model.Member)}
	for i := range members {
		m := members[i]
		r.members[m.ID] = &m
	}
	return r
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *MemberRepo) GetGender(ctx context.Context, id string) (string, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil || m == nil {
		return "", err
	}
	return m.Gender, nil
}

func (r *MemberRepo) Upsert(ctx context.Context, member *model.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

// SubmissionRepo implements repository.SubmissionRepo. Set Err to make Create fail.
type SubmissionRepo struct {
	mu          sync.Mutex
	Submissions []*model.Submission
	Err         error
}

func NewSubmissionRepo() *SubmissionRepo {
	return &SubmissionRepo{}
}

func (r *SubmissionRepo) Create(ctx context.Context, submission *model.Submission) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	submission.ID = fmt.Sprintf("sub-%d", len(r.Submissions)+1)
	cp := *submission
	r.Submissions = append(r.Submissions, &cp)
	return submission.ID, nil
}

func (r *SubmissionRepo) GetByMemberID(ctx context.Context, memberID string) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.Submissions {
		if s.MemberID == memberID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// TreeCache implements cache.TreeCache. Err fails the live tree reads only.
type TreeCache struct {
	mu   sync.Mutex
	tree *model.Tree
	pins map[string]model.Tree
	Err  error
}

func NewTreeCache() *TreeCache {
	return &TreeCache{pins: make(map[string]model.Tree)}
}

func (c *TreeCache) Get(ctx context.Context) (*model.Tree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	if c.tree == nil {
		return nil, nil
	}
	cp := *c.tree
	return &cp, nil
}

func (c *TreeCache) Set(ctx context.Context, tree model.Tree) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = &tree
	return nil
}

func (c *TreeCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = nil
	return nil
}

func (c *TreeCache) Pin(ctx context.Context, tree model.Tree) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pins[tree.Version()] = tree
	return nil
}

func (c *TreeCache) Pinned(ctx context.Context, version string) (*model.Tree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tree, ok := c.pins[version]
	if !ok {
		return nil, nil
	}
	return &tree, nil
}

// ExpirePins drops every pinned tree, as if their TTL ran out
func (c *TreeCache) ExpirePins() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pins = make(map[string]model.Tree)
}

// SessionCache implements cache.SessionCache. Entries round-trip through JSON and calls
// fail on a done context, the way they do against Redis.
type SessionCache struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewSessionCache() *SessionCache {
	return &SessionCache{sessions: make(map[string][]byte)}
}

func (c *SessionCache) Set(ctx context.Context, session *model.SessionSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.ID] = data
	return nil
}

func (c *SessionCache) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	data, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var session model.SessionSnapshot
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

// Len reports the number of stored sessions
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Broadcast is one message seen by Broadcaster
type Broadcast struct {
	MemberID string
	Type     string
	Payload  interface{}
}

// Broadcaster records member broadcasts
type Broadcaster struct {
	mu       sync.Mutex
	Messages []Broadcast
}

func (b *Broadcaster) BroadcastToMember(memberID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, Broadcast{MemberID: memberID, Type: msgType, Payload: payload})
}

// Types returns the message types in arrival order
func (b *Broadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.Messages))
	for i, m := range b.Messages {
		types[i] = m.Type
	}
	return types
}

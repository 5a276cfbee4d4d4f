package service

import (
	"errors"
	"sync"
	"testing"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	entries map[string]*model.Challenge
	err     error
}

func (f *fakeCatalog) FindActiveBySlug(slug string) (*model.Challenge, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return entry, nil
}

// fakeLedger 在内存中重现账本的结构约束：提交永远追加成功，
// 每个 (user, challenge) 的解题记录最多写入一次。
type fakeLedger struct {
	mu     sync.Mutex
	subs   []*model.Submission
	solved map[[2]uint]bool
	err    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{solved: make(map[[2]uint]bool)}
}

func (f *fakeLedger) Append(sub *model.Submission, solve *model.Solve) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.subs = append(f.subs, sub)
	if solve == nil {
		return false, nil
	}

	key := [2]uint{solve.UserID, solve.ChallengeID}
	if f.solved[key] {
		// 唯一索引冲突：提交行保留，解题行被丢弃
		return false, nil
	}
	f.solved[key] = true
	return true, nil
}

func (f *fakeLedger) HasSolved(userID, challengeID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solved[[2]uint{userID, challengeID}], nil
}

type fakePlugins struct {
	instances map[string]challenge.Challenge
}

func (f *fakePlugins) Get(slug string) (challenge.Challenge, bool) {
	ch, ok := f.instances[slug]
	return ch, ok
}

type pluginStub struct {
	challenge.BaseChallenge
}

func (p *pluginStub) RegisterRoutes(rg *gin.RouterGroup) {}

func newSubmitFixture(t *testing.T) (*SubmissionService, *fakeLedger) {
	t.Helper()

	entry := &model.Challenge{
		ID:     7,
		Slug:   "sqli-basic",
		Title:  "Login Bypass",
		Points: 100,
	}
	inst := &pluginStub{BaseChallenge: challenge.NewBase(challenge.Descriptor{
		Slug: "sqli-basic", Title: "Login Bypass", Flag: "FLAG{right}",
	}, "")}

	ledger := newFakeLedger()
	svc := NewSubmissionService(
		&fakeCatalog{entries: map[string]*model.Challenge{"sqli-basic": entry}},
		ledger,
		ledger,
		&fakePlugins{instances: map[string]challenge.Challenge{"sqli-basic": inst}},
	)
	return svc, ledger
}

func TestSubmitFirstSolve(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)

	res, err := svc.Submit(1, "sqli-basic", "FLAG{right}", "127.0.0.1", "req-1")
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.True(t, res.FirstSolve)
	assert.Equal(t, 100, res.Points)
	assert.Contains(t, res.Message, "Congratulations")

	require.Len(t, ledger.subs, 1)
	assert.True(t, ledger.subs[0].IsCorrect)
	assert.Equal(t, "req-1", ledger.subs[0].RequestID)
}

func TestSubmitWrongFlag(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)

	res, err := svc.Submit(1, "sqli-basic", "FLAG{nope}", "127.0.0.1", "req-1")
	require.NoError(t, err)

	assert.False(t, res.Correct)
	assert.False(t, res.FirstSolve)
	assert.Zero(t, res.Points)
	assert.Equal(t, "Incorrect flag. Try again!", res.Message)

	// 错误提交也要进账本
	require.Len(t, ledger.subs, 1)
	assert.False(t, ledger.subs[0].IsCorrect)
}

func TestSubmitAlreadySolved(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)

	_, err := svc.Submit(1, "sqli-basic", "FLAG{right}", "127.0.0.1", "req-1")
	require.NoError(t, err)

	res, err := svc.Submit(1, "sqli-basic", "FLAG{right}", "127.0.0.1", "req-2")
	require.NoError(t, err)

	assert.True(t, res.Correct)
	assert.False(t, res.FirstSolve)
	assert.Zero(t, res.Points)
	assert.Equal(t, "You have already solved this challenge.", res.Message)

	// 重复解题不阻止提交入账
	assert.Len(t, ledger.subs, 2)
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newSubmitFixture(t)

	_, err := svc.Submit(1, "", "FLAG{x}", "", "")
	assert.ErrorIs(t, err, util.ErrInvalidRequest)

	_, err = svc.Submit(1, "sqli-basic", "   ", "", "")
	assert.ErrorIs(t, err, util.ErrInvalidRequest)
}

func TestSubmitUnknownChallenge(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)

	_, err := svc.Submit(1, "no-such", "FLAG{x}", "", "")
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)

	// 未找到的提交不进账本
	assert.Empty(t, ledger.subs)
}

func TestSubmitPluginAbsent(t *testing.T) {
	t.Parallel()

	entry := &model.Challenge{ID: 9, Slug: "ghost", Title: "Ghost", Points: 50}
	ledger := newFakeLedger()
	svc := NewSubmissionService(
		&fakeCatalog{entries: map[string]*model.Challenge{"ghost": entry}},
		ledger,
		ledger,
		&fakePlugins{instances: map[string]challenge.Challenge{}},
	)

	_, err := svc.Submit(1, "ghost", "FLAG{x}", "", "")
	assert.ErrorIs(t, err, util.ErrChallengeNotFound)
}

func TestSubmitPersistenceFailure(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)
	ledger.err = errors.New("connection lost")

	_, err := svc.Submit(1, "sqli-basic", "FLAG{right}", "", "")
	assert.ErrorIs(t, err, util.ErrPersistence)
}

// TestSubmitConcurrentDuplicate 模拟同一用户对同一题目的并发正确
// 提交：所有提交都入账，但恰好一个拿到首解。
func TestSubmitConcurrentDuplicate(t *testing.T) {
	t.Parallel()

	svc, ledger := newSubmitFixture(t)

	const workers = 32
	results := make([]*SubmitResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(1, "sqli-basic", "FLAG{right}", "127.0.0.1", "")
		}(i)
	}
	wg.Wait()

	firstSolves := 0
	for i, res := range results {
		require.NoError(t, errs[i])
		assert.True(t, res.Correct)
		if res.FirstSolve {
			firstSolves++
		}
	}

	assert.Equal(t, 1, firstSolves, "恰好一个提交拿到首解")
	assert.Len(t, ledger.subs, workers, "全部提交都进账本")
}

package app

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gosubgroup/domain/core"
	"gosubgroup/domain/dataset"
	"gosubgroup/domain/run"
	"gosubgroup/internal"
	"gosubgroup/internal/config"
	errs "gosubgroup/internal/errors"
	"gosubgroup/internal/testkit"
	"gosubgroup/ports"
)

// MockTableReader implements ports.TableReader
type MockTableReader struct {
	mock.Mock
}

func (m *MockTableReader) Read(ctx context.Context, path string) (*dataset.Table, error) {
	args := m.Called(ctx, path)
	table, _ := args.Get(0).(*dataset.Table)
	return table, args.Error(1)
}

type recordingListener struct {
	mu       sync.Mutex
	finished []string
}

func (l *recordingListener) RunFinished(strategy string, status run.Status, elapsed time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, fmt.Sprintf("%s:%s", strategy, status))
}

func plantedTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := testkit.Planted(testkit.DefaultPlantedConfig())
	require.NoError(t, err)
	return table
}

func searchDefaults() config.SearchConfig {
	return config.SearchConfig{
		Strategy:    "beam",
		BeamWidth:   10,
		Depth:       2,
		ResultCap:   10,
		NChunks:     5,
		Schedule:    "reciprocal",
		MinCoverage: 0.02,
		Quality:     "wracc",
		A:           1,
	}
}

func newService(reader ports.TableReader, repo ports.RunRepository) *DiscoveryService {
	return NewDiscoveryService(reader, repo, internal.NewLogger(internal.LogLevelError))
}

func TestDiscover_FindsPlantedSubgroup(t *testing.T) {
	ctx := context.Background()
	reader := &MockTableReader{}
	reader.On("Read", mock.Anything, "planted.csv").Return(plantedTable(t), nil).Once()
	repo := testkit.NewInMemoryRunRepository()
	listener := &recordingListener{}
	svc := newService(reader, repo).WithListeners(listener)

	res, err := svc.Discover(ctx, DiscoveryRequest{
		Dataset: "planted.csv",
		Target:  testkit.TargetColumn,
		Search:  searchDefaults(),
		Persist: true,
	})
	require.NoError(t, err)
	reader.AssertExpectations(t)

	require.NotEmpty(t, res.Run.Subgroups)
	assert.LessOrEqual(t, len(res.Run.Subgroups), 10)
	top := res.Run.Subgroups[0]
	assert.Contains(t, top.Description, "region == 'south'")
	assert.Less(t, top.PValue, 0.01)
	for i := 1; i < len(res.Run.Subgroups); i++ {
		assert.GreaterOrEqual(t, res.Run.Subgroups[i-1].Quality, res.Run.Subgroups[i].Quality)
		assert.Equal(t, i+1, res.Run.Subgroups[i].Rank)
	}

	assert.Equal(t, run.StatusCompleted, res.Run.Status)
	assert.NotEmpty(t, res.Run.Manifest.ResultsHash)
	assert.Greater(t, res.Evaluated, 0)
	assert.Equal(t, []string{"beam:completed"}, listener.finished)

	stored, err := svc.GetRun(ctx, res.Run.ID())
	require.NoError(t, err)
	assert.Equal(t, res.Run.Subgroups, stored.Subgroups)
}

func TestDiscover_Deterministic(t *testing.T) {
	svc := newService(nil, nil)
	req := DiscoveryRequest{Table: plantedTable(t), Target: testkit.TargetColumn, Search: searchDefaults()}

	a, err := svc.Discover(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Discover(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.Run.Manifest.ResultsHash, b.Run.Manifest.ResultsHash)
	assert.Equal(t, a.Run.Manifest.OptionsHash, b.Run.Manifest.OptionsHash)
	assert.NotEqual(t, a.Run.ID(), b.Run.ID())
}

func TestDiscover_PermutationTest(t *testing.T) {
	svc := newService(nil, nil)
	search := searchDefaults()
	search.ResultCap = 3
	search.Permutations = 99

	res, err := svc.Discover(context.Background(), DiscoveryRequest{
		Table:  plantedTable(t),
		Target: testkit.TargetColumn,
		Search: search,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Run.Subgroups)

	top := res.Run.Subgroups[0]
	assert.InDelta(t, 0.01, top.PermutationP, 1e-12)
	for i, sg := range res.Run.Subgroups {
		assert.Greater(t, sg.PermutationP, 0.0)
		assert.Equal(t, res.Summary.Subgroups[i].PermutationP, sg.PermutationP)
	}
	assert.Equal(t, 99, res.Run.Manifest.Options["permutations"])
	assert.Contains(t, res.Summary.Markdown(), "permutation p")
}

func TestDiscover_ReadError(t *testing.T) {
	reader := &MockTableReader{}
	reader.On("Read", mock.Anything, "missing.csv").Return(nil, fmt.Errorf("%w: CSV file missing.csv", core.ErrNotFound))

	_, err := newService(reader, nil).Discover(context.Background(), DiscoveryRequest{
		Dataset: "missing.csv",
		Target:  testkit.TargetColumn,
		Search:  searchDefaults(),
	})
	require.Error(t, err)
	assert.Equal(t, errs.CodeNotFound, errs.GetCode(err))
}

func TestDiscover_Validation(t *testing.T) {
	svc := newService(&MockTableReader{}, nil)
	ctx := context.Background()

	_, err := svc.Discover(ctx, DiscoveryRequest{Dataset: "a.csv", Search: searchDefaults()})
	assert.Equal(t, errs.CodeValidationError, errs.GetCode(err))

	_, err = svc.Discover(ctx, DiscoveryRequest{Target: "t", Search: searchDefaults()})
	assert.Equal(t, errs.CodeValidationError, errs.GetCode(err))

	bad := searchDefaults()
	bad.Strategy = "apriori"
	_, err = svc.Discover(ctx, DiscoveryRequest{Table: plantedTable(t), Target: testkit.TargetColumn, Search: bad})
	assert.Error(t, err)

	bad = searchDefaults()
	bad.Depth = 0
	_, err = svc.Discover(ctx, DiscoveryRequest{Table: plantedTable(t), Target: testkit.TargetColumn, Search: bad})
	assert.Equal(t, errs.CodeValidationError, errs.GetCode(err))
}

func TestDiscover_FailedRunIsPersisted(t *testing.T) {
	ctx := context.Background()
	repo := testkit.NewInMemoryRunRepository()
	listener := &recordingListener{}
	svc := NewDiscoveryService(nil, repo, internal.NewLogger(internal.LogLevelWarn)).WithListeners(listener)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	_, err := svc.Discover(ctx, DiscoveryRequest{
		Table:   plantedTable(t),
		Target:  "region",
		Search:  searchDefaults(),
		Persist: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidTarget)
	assert.Equal(t, errs.CodeInvalidInput, errs.GetCode(err))

	status := run.StatusFailed
	failed, err := svc.ListRuns(ctx, ports.RunFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, []string{"beam:failed"}, listener.finished)
	assert.Contains(t, logs.String(), "[WARN] [DiscoveryService] Run "+failed[0].RunID.String()+" failed after")
}

func TestDiscover_Preprocessing(t *testing.T) {
	svc := newService(nil, nil)
	ctx := context.Background()

	res, err := svc.Discover(ctx, DiscoveryRequest{
		Table:       plantedTable(t),
		Target:      testkit.TargetColumn,
		Standardize: true,
		Search:      searchDefaults(),
	})
	require.NoError(t, err)
	assert.Equal(t, true, res.Run.Manifest.Options["standardize"])
	assert.Contains(t, res.Run.Subgroups[0].Description, "region == 'south'")

	res, err = svc.Discover(ctx, DiscoveryRequest{
		Table:  plantedTable(t),
		Target: testkit.TargetColumn,
		Encode: &EncodeSpec{Categorical: []string{"region"}, Features: 2},
		Search: searchDefaults(),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ReconstructionError, 0.0)
	for _, sg := range res.Run.Subgroups {
		assert.False(t, strings.Contains(sg.Description, "region"), sg.Description)
	}

	_, err = svc.Discover(ctx, DiscoveryRequest{
		Table:  plantedTable(t),
		Target: testkit.TargetColumn,
		Encode: &EncodeSpec{Categorical: []string{"region"}, Features: 50},
		Search: searchDefaults(),
	})
	assert.ErrorIs(t, err, core.ErrInvalidOption)
}

func TestCompare_Strategies(t *testing.T) {
	listener := &recordingListener{}
	svc := newService(nil, nil).WithListeners(listener)

	out, err := svc.Compare(context.Background(), DiscoveryRequest{
		Table:  plantedTable(t),
		Target: testkit.TargetColumn,
		Search: searchDefaults(),
	}, []string{"beam", "dfs", "best-first"})
	require.NoError(t, err)

	require.Len(t, out.Results, 3)
	require.Len(t, out.Comparisons, 2)
	assert.Equal(t, "beam", out.Results[0].Run.Manifest.Strategy)
	assert.Equal(t, "dfs", out.Results[1].Run.Manifest.Strategy)
	assert.Equal(t, "best-first", out.Results[2].Run.Manifest.Strategy)
	assert.InDelta(t, out.Results[1].Run.Subgroups[0].Quality, out.Results[2].Run.Subgroups[0].Quality, 1e-12)
	assert.Len(t, listener.finished, 3)

	for _, c := range out.Comparisons {
		assert.Equal(t, out.Results[0].Summary.Title, c.Left)
	}

	_, err = svc.Compare(context.Background(), DiscoveryRequest{Table: plantedTable(t), Target: testkit.TargetColumn, Search: searchDefaults()}, []string{"beam", "nope"})
	assert.ErrorIs(t, err, core.ErrInvalidOption)
}

func TestRepositoryOptional(t *testing.T) {
	svc := newService(nil, nil)
	runs, err := svc.ListRuns(context.Background(), ports.RunFilters{})
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = svc.GetRun(context.Background(), core.RunID("x"))
	require.Error(t, err)
	assert.Equal(t, errs.CodeNotFound, errs.GetCode(err))
	assert.Equal(t, "run x not found", err.Error())
}

func TestProfile(t *testing.T) {
	reader := &MockTableReader{}
	reader.On("Read", mock.Anything, "planted.csv").Return(plantedTable(t), nil)

	p, err := newService(reader, nil).Profile(context.Background(), "planted.csv")
	require.NoError(t, err)
	assert.Equal(t, 400, p.Rows)

	targets := map[string]bool{}
	for _, c := range p.Columns {
		if c.CandidateTarget {
			targets[c.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{"member": true, testkit.TargetColumn: true}, targets)

	_, err = newService(reader, nil).Profile(context.Background(), "")
	assert.Equal(t, errs.CodeValidationError, errs.GetCode(err))
}

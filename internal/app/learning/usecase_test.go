package learning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"loopplanner/internal/adapter/learningcsv"
	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/survival"
)

func TestImport_RestrictsToCatalog(t *testing.T) {
	repo := newLearningRepo()
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}

	out, err := uc.Import(context.Background(), ImportRequest{
		ProfileID: "p1",
		CSV:       strings.NewReader("actionIdentifier,completions,timeCompleted\nDig,3,\nGhost,1,\nSwim,,20\n"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Imported != 2 || len(out.Unknown) != 1 || out.Unknown[0] != "Ghost" {
		t.Fatalf("import result mismatch: %+v", out)
	}
	stored := repo.data["p1"]
	if stored["Dig"] != familiarity.Completions(3) || stored["Swim"] != familiarity.TimeCompleted(20) {
		t.Fatalf("stored learning mismatch: %+v", stored)
	}
	if _, ok := stored["Ghost"]; ok {
		t.Fatalf("unknown action stored")
	}
	if out.Stats.Completed != 1 || out.Stats.Partial != 1 {
		t.Fatalf("stats mismatch: %+v", out.Stats)
	}
}

func TestImport_StrictRejectsUnknown(t *testing.T) {
	repo := newLearningRepo()
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}
	_, err := uc.Import(context.Background(), ImportRequest{ProfileID: "p1", CSV: strings.NewReader("Ghost,1,"), Strict: true})

	var unknownErr *UnknownActionsError
	if !errors.As(err, &unknownErr) || unknownErr.Names[0] != "Ghost" {
		t.Fatalf("expected UnknownActionsError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("unknown actions error should unwrap to ErrInvalidRequest")
	}
	if _, ok := repo.data["p1"]; ok {
		t.Fatalf("strict failure must not save")
	}
}

func TestImport_RejectsEmpty(t *testing.T) {
	uc := UseCase{TxManager: learningTx{}, LearningRepo: newLearningRepo(), Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}
	if _, err := uc.Import(context.Background(), ImportRequest{ProfileID: "p1", CSV: strings.NewReader("")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := uc.Import(context.Background(), ImportRequest{CSV: strings.NewReader("Dig,1,")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank profile, got %v", err)
	}
}

func TestExportAndGet(t *testing.T) {
	repo := newLearningRepo()
	repo.data["p1"] = familiarity.State{"Dig": familiarity.Completions(2)}
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}

	text, err := uc.Export(context.Background(), "p1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if text != "actionIdentifier,completions,timeCompleted\nDig,2,\n" {
		t.Fatalf("export mismatch: %q", text)
	}

	got, err := uc.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stats.Actions != 1 || got.Stats.Completed != 1 {
		t.Fatalf("stats mismatch: %+v", got.Stats)
	}

	if _, err := uc.Get(context.Background(), "nobody"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitRun_PersistsLearning(t *testing.T) {
	repo := newLearningRepo()
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}

	out, err := uc.CommitRun(context.Background(), CommitRequest{ProfileID: "p1", Actions: []string{"Dig", "Dig", "Wait"}})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if repo.data["p1"]["Dig"] != familiarity.Completions(2) {
		t.Fatalf("stored learning mismatch: %+v", repo.data["p1"])
	}
	if _, ok := repo.data["p1"]["Wait"]; ok {
		t.Fatalf("wait must not be learned")
	}
	if out.Summary.LoopLength != 3 {
		t.Fatalf("summary mismatch: %+v", out.Summary)
	}

	if _, err := uc.CommitRun(context.Background(), CommitRequest{ProfileID: "p1", Actions: []string{"Dig"}}); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if repo.data["p1"]["Dig"] != familiarity.Completions(3) {
		t.Fatalf("learning should carry across runs: %+v", repo.data["p1"])
	}
}

func TestCommitRun_StoresWholeCompletions(t *testing.T) {
	repo := newLearningRepo()
	repo.data["p1"] = familiarity.State{"Dig": {Type: familiarity.KindCompletions, Value: 2.5}}
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}

	if _, err := uc.CommitRun(context.Background(), CommitRequest{ProfileID: "p1", Actions: []string{"Dig"}}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if repo.data["p1"]["Dig"] != familiarity.Completions(3) {
		t.Fatalf("stored learning mismatch: %+v", repo.data["p1"]["Dig"])
	}
	text, err := uc.Export(context.Background(), "p1")
	if err != nil || text != "actionIdentifier,completions,timeCompleted\nDig,3,\n" {
		t.Fatalf("export mismatch: %q err=%v", text, err)
	}
}

func TestCommitRun_PropagatesTxError(t *testing.T) {
	wantErr := errors.New("tx failed")
	uc := UseCase{TxManager: learningTx{err: wantErr}, LearningRepo: newLearningRepo(), Catalog: learningCatalog{}, Codec: learningcsv.Codec{}}
	if _, err := uc.CommitRun(context.Background(), CommitRequest{ProfileID: "p1", Actions: []string{"Dig"}}); !errors.Is(err, wantErr) {
		t.Fatalf("expected tx error, got %v", err)
	}
}

type learningTx struct {
	err error
}

func (t learningTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

type learningRepo struct {
	data map[string]familiarity.State
}

func newLearningRepo() *learningRepo {
	return &learningRepo{data: map[string]familiarity.State{}}
}

func (r *learningRepo) Get(_ context.Context, profileID string) (familiarity.State, error) {
	state, ok := r.data[profileID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return state.Clone(), nil
}

func (r *learningRepo) Save(_ context.Context, profileID string, state familiarity.State) error {
	r.data[profileID] = state.Clone()
	return nil
}

type learningCatalog struct{}

func (learningCatalog) Catalog(context.Context) (survival.Catalog, error) {
	return survival.Catalog{Actions: map[string]survival.ActionDefinition{
		"Dig":  {Time: 10},
		"Swim": {Time: 30},
		"Wait": {Time: 2},
	}}, nil
}

func (learningCatalog) Tuning(context.Context) (survival.Tuning, error) {
	return survival.DefaultTuning(), nil
}

var _ ports.TxManager = learningTx{}
var _ ports.LearningRepository = (*learningRepo)(nil)
var _ ports.CatalogProvider = learningCatalog{}

func TestImport_UsesCodec(t *testing.T) {
	repo := newLearningRepo()
	codec := &stubCodec{decoded: ports.DecodedLearning{
		State:   familiarity.State{"Dig": familiarity.Completions(4)},
		Skipped: []int{2},
	}}
	uc := UseCase{TxManager: learningTx{}, LearningRepo: repo, Catalog: learningCatalog{}, Codec: codec}

	out, err := uc.Import(context.Background(), ImportRequest{ProfileID: "p1", CSV: strings.NewReader("anything")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Imported != 1 || len(out.SkippedLines) != 1 || repo.data["p1"]["Dig"] != familiarity.Completions(4) {
		t.Fatalf("import result mismatch: %+v stored=%+v", out, repo.data["p1"])
	}

	text, err := uc.Export(context.Background(), "p1")
	if err != nil || text != "encoded:1" {
		t.Fatalf("export mismatch: %q err=%v", text, err)
	}

	codec.err = errors.New("bad row")
	if _, err := uc.Import(context.Background(), ImportRequest{ProfileID: "p1", CSV: strings.NewReader("x")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("decode error should be ErrInvalidRequest, got %v", err)
	}
}

type stubCodec struct {
	decoded ports.DecodedLearning
	err     error
}

func (c *stubCodec) Decode(io.Reader) (ports.DecodedLearning, error) {
	if c.err != nil {
		return ports.DecodedLearning{}, c.err
	}
	return c.decoded, nil
}

func (c *stubCodec) Encode(state familiarity.State) (string, error) {
	return fmt.Sprintf("encoded:%d", len(state)), nil
}

var _ ports.LearningCodec = (*stubCodec)(nil)

// Package httpapi is the headless JSON front-end: validate and solve models,
// browse saved runs and download their VTK files.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pnordq/pnfem/internal/domain"
	"github.com/pnordq/pnfem/internal/infra/jsonmodel"
	"github.com/pnordq/pnfem/internal/ports"
	"github.com/pnordq/pnfem/internal/usecase"
)

// maxBody limits model uploads.
const maxBody = 1 << 20

// Deps are the collaborators of the handlers.
type Deps struct {
	Execute  *usecase.ExecuteModel
	Thread   *usecase.SolverThread
	Runs     ports.ArtifactStore
	WriteVTK func(w io.Writer, out *domain.OutputData) error
	Logger   *slog.Logger
}

type Handler struct {
	deps Deps
	log  *slog.Logger
}

func NewHandler(d Deps) *Handler {
	l := d.Logger
	if l == nil {
		l = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Handler{deps: d, log: l}
}

// NewRouter registers every route on a gorilla/mux router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/validate", h.Validate).Methods(http.MethodPost)
	api.HandleFunc("/solve", h.Solve).Methods(http.MethodPost)
	api.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", h.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/vtk", h.GetRunVTK).Methods(http.MethodGet)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Busy   bool   `json:"busy"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	busy := h.deps.Thread != nil && h.deps.Thread.Busy()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Busy: busy})
}

type issueJSON struct {
	Field   string `json:"field"`
	Group   string `json:"group"`
	Message string `json:"message"`
}

type validateResponse struct {
	Valid       bool        `json:"valid"`
	CanSolve    bool        `json:"can_solve"`
	CanStudyB   bool        `json:"can_study_b"`
	CanStudyQ   bool        `json:"can_study_q"`
	Issues      []issueJSON `json:"issues"`
	ElementSize float64     `json:"element_size"`
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	in, err := readModel(r)
	if err != nil {
		writeError(w, err)
		return
	}

	verr := domain.Validate(in)
	resp := validateResponse{
		Valid:       verr == nil,
		CanSolve:    !verr.Blocks(domain.GroupCalcInputs),
		CanStudyB:   usecase.Check(in, domain.StudyB) == nil,
		CanStudyQ:   usecase.Check(in, domain.StudyQ) == nil,
		Issues:      []issueJSON{},
		ElementSize: in.ElSizeFactor * in.H / 4,
	}
	if verr != nil {
		for _, is := range verr.Issues {
			resp.Issues = append(resp.Issues, issueJSON{Field: is.Field, Group: string(is.Group), Message: is.Message})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type solveResponse struct {
	RunID   string               `json:"run_id"`
	JobID   string               `json:"job_id"`
	Summary domain.Summary       `json:"summary"`
	Checks  []domain.CheckResult `json:"checks"`
}

// Solve runs the model on the shared worker and waits for it. A client that
// disconnects cancels the solve.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	in, err := readModel(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := r.URL.Query().Get("name")

	jobID, done, err := h.deps.Thread.Start(r.Context(), func(ctx context.Context) (domain.RunArtifact, string, error) {
		return h.deps.Execute.Execute(ctx, in, usecase.ModelSource{Name: name})
	})
	if err != nil {
		writeError(w, err)
		return
	}

	d := <-done
	if d.Err != nil {
		writeError(w, d.Err)
		return
	}

	resp := solveResponse{RunID: d.RunID, JobID: jobID, Checks: d.Artifact.Checks}
	if d.Artifact.Output != nil {
		resp.Summary = d.Artifact.Output.Summary
	}
	if resp.Checks == nil {
		resp.Checks = []domain.CheckResult{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListRuns(w http.ResponseWriter, _ *http.Request) {
	refs, err := h.deps.Runs.ListRuns()
	if err != nil {
		writeError(w, err)
		return
	}
	if refs == nil {
		refs = []domain.RunRef{}
	}
	writeJSON(w, http.StatusOK, refs)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Runs.LoadRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) GetRunVTK(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := h.deps.Runs.LoadRun(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if run.Output == nil || run.Output.Empty() {
		writeError(w, &domain.OpError{
			Op:   "httpapi.vtk",
			Kind: domain.KindNotFound,
			Err:  fmt.Errorf("run %s has no solve result: %w", id, domain.ErrNoResult),
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".vtk"))
	w.WriteHeader(http.StatusOK)
	if err := h.deps.WriteVTK(w, run.Output); err != nil {
		h.log.Error("http.vtk_write", "run", id, "error", err)
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info("http.request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func readModel(r *http.Request) (domain.InputData, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return domain.InputData{}, &domain.OpError{Op: "httpapi.read", Kind: domain.KindInvalidModel, Err: err}
	}
	in, err := jsonmodel.Unmarshal(b)
	if err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) {
			return domain.InputData{}, err
		}
		return domain.InputData{}, &domain.OpError{Op: "httpapi.decode", Kind: domain.KindInvalidModel, Err: err}
	}
	return in, nil
}

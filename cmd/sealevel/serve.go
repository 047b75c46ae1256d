package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/sealevel.report/internal/db"
	"github.com/banshee-data/sealevel.report/internal/httputil"
	"github.com/banshee-data/sealevel.report/internal/monitoring"
	"github.com/banshee-data/sealevel.report/internal/render"
)

func serveCommand(ctx context.Context, args []string, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	dbPath := fs.String("db", "target/sealevel.db", "Path to the sqlite database")
	listen := fs.String("listen", ":8080", "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	mux := http.NewServeMux()
	// admin debugging routes are reachable over loopback or Tailscale only
	if err := database.AttachAdminRoutes(mux); err != nil {
		return err
	}
	newRunsServer(db.NewRunStore(database)).attach(mux)

	server := &http.Server{
		Addr: *listen,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			monitoring.Logf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		}),
	}

	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("serving %s on %s", database.Path(), *listen)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	monitoring.Logf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	monitoring.Logf("Graceful shutdown complete")
	return nil
}

// runStore is the read side of db.RunStore.
type runStore interface {
	Runs(ctx context.Context) ([]db.StoredRun, error)
	Run(ctx context.Context, id string) (db.StoredRun, error)
	Years(ctx context.Context, id string) ([]db.StoredYear, error)
}

type runsServer struct {
	store runStore
}

func newRunsServer(store runStore) *runsServer {
	return &runsServer{store: store}
}

func (s *runsServer) attach(mux *http.ServeMux) {
	mux.HandleFunc("GET /runs", s.listRuns)
	mux.HandleFunc("GET /runs/{id}", s.getRun)
	mux.HandleFunc("GET /runs/{id}/chart", s.getChart)
}

type runJSON struct {
	ID                    string  `json:"id"`
	Island                string  `json:"island"`
	Scenario              string  `json:"scenario"`
	StartYear             int     `json:"start_year"`
	DangerThresholdMeters float64 `json:"danger_threshold_m"`
	CutoffMeters          float64 `json:"cutoff_m"`
	InitialLand           int     `json:"initial_land"`
	State                 string  `json:"state"`
	Years                 int     `json:"years"`
	FinalYear             int     `json:"final_year,omitempty"`
	Aborted               bool    `json:"aborted"`
	StartedAt             string  `json:"started_at"`
	FinishedAt            string  `json:"finished_at,omitempty"`
}

type yearJSON struct {
	Year              int            `json:"year"`
	RiseMeters        float64        `json:"rise_m"`
	LandCells         int            `json:"land_cells"`
	DangerCells       int            `json:"danger_cells"`
	PercentOfOriginal httputil.Float `json:"percent_of_original"`
	PercentInDanger   httputil.Float `json:"percent_in_danger"`
	Snapshot          bool           `json:"snapshot"`
}

func toRunJSON(r db.StoredRun) runJSON {
	out := runJSON{
		ID:                    r.ID,
		Island:                r.Island,
		Scenario:              r.Scenario,
		StartYear:             r.StartYear,
		DangerThresholdMeters: r.DangerThresholdMeters,
		CutoffMeters:          r.CutoffMeters,
		InitialLand:           r.InitialLand,
		State:                 r.State.String(),
		Years:                 r.Years,
		FinalYear:             r.FinalYear,
		Aborted:               r.Aborted,
		StartedAt:             r.StartedAt.Format(time.RFC3339),
	}
	if !r.FinishedAt.IsZero() {
		out.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return out
}

func (s *runsServer) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.Runs(r.Context())
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run))
	}
	httputil.WriteJSONOK(w, out)
}

func (s *runsServer) getRun(w http.ResponseWriter, r *http.Request) {
	run, years, ok := s.load(w, r)
	if !ok {
		return
	}
	ys := make([]yearJSON, 0, len(years))
	for _, y := range years {
		ys = append(ys, yearJSON{
			Year:              y.Year,
			RiseMeters:        y.RiseMeters,
			LandCells:         y.LandCells,
			DangerCells:       y.DangerCells,
			PercentOfOriginal: httputil.Float(y.PercentOfOriginal),
			PercentInDanger:   httputil.Float(y.PercentInDanger),
			Snapshot:          y.Snapshot,
		})
	}
	httputil.WriteJSONOK(w, struct {
		runJSON
		Results []yearJSON `json:"results"`
	}{toRunJSON(run), ys})
}

func (s *runsServer) getChart(w http.ResponseWriter, r *http.Request) {
	run, years, ok := s.load(w, r)
	if !ok {
		return
	}
	if len(years) == 0 {
		httputil.NotFound(w, "run has no results")
		return
	}
	pts := make([]render.SeriesPoint, len(years))
	for i, y := range years {
		pts[i] = render.SeriesPoint{Year: y.Year, PercentOfOriginal: y.PercentOfOriginal, PercentInDanger: y.PercentInDanger}
	}
	title := run.Island + " " + run.Scenario
	subtitle := fmt.Sprintf("%s, final year %d", run.State, run.FinalYear)
	httputil.WriteHTML(w, func(out io.Writer) error {
		return render.WriteSeriesPage(out, title, subtitle, pts)
	})
}

func (s *runsServer) load(w http.ResponseWriter, r *http.Request) (db.StoredRun, []db.StoredYear, bool) {
	id := r.PathValue("id")
	if err := uuid.Validate(id); err != nil {
		httputil.BadRequest(w, "invalid run id")
		return db.StoredRun{}, nil, false
	}
	run, err := s.store.Run(r.Context(), id)
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return run, nil, false
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return run, nil, false
	}
	years, err := s.store.Years(r.Context(), id)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return run, nil, false
	}
	return run, years, true
}

package cmd

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/clef"
	"github.com/davidorman/scoremend/constants"
	"github.com/davidorman/scoremend/db"
	"github.com/davidorman/scoremend/model"
	"github.com/davidorman/scoremend/score"
	"github.com/davidorman/scoremend/timesig"
)

var (
	auditsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoremend_audits_total",
		Help: "Number of audit requests processed.",
	})
	correctionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoremend_corrections_total",
		Help: "Number of time signatures corrected.",
	})
)

func init() {
	rootCmd.AddCommand(serveCmd)
	prometheus.MustRegister(auditsTotal, correctionsTotal)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the resolver over HTTP",
	Long:  `Serves the resolver over HTTP`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleAudit resolves clefs and audits the posted score, returning the
// corrected score without touching disk.
func HandleAudit(w http.ResponseWriter, r *http.Request) {
	var req model.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}

	page, err := score.Build(&req.Score)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	policy, err := loadPolicy()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resolved := page.ResolveClefs()
	modified := timesig.NewAuditor(policy).Audit(page)
	out := page.DTO()

	auditsTotal.Inc()
	corrections := diffCorrections(&req.Score, &out)
	correctionsTotal.Add(float64(len(corrections)))

	resp := model.AuditResponse{
		Modified:      modified,
		ResolvedClefs: resolved,
		Score:         out,
	}
	if req.IncludeMetadata && req.Score.ID != "" {
		metadatas, err := db.GetScoreMetadatas([]string{req.Score.ID})
		if err != nil {
			zlog.Warn().Err(err).Str("score", req.Score.ID).Msg("metadata lookup failed")
		} else if md, ok := metadatas[req.Score.ID]; ok {
			resp.Metadata = &md
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleClassify runs the clef classifier on posted measured pitches.
func HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req model.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}
	if len(req.MeasuredPitches) > 7 {
		writeError(w, http.StatusBadRequest, "measured_pitches has more than 7 slots")
		return
	}

	var measured [7]*float64
	copy(measured[:], req.MeasuredPitches)

	kind, errors, ok := clef.GuessKind(req.Shape, measured)
	resp := model.ClassifyResponse{Errors: make(map[string]float64, len(errors))}
	for k, e := range errors {
		resp.Errors[k.String()] = e
	}
	if ok {
		resp.Kind = kind.String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func serve() error {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/audit", HandleAudit).Methods("POST")
	router.HandleFunc("/classify", HandleClassify).Methods("POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	handler := cors.Default().Handler(router)
	zlog.Info().Str("addr", constants.ServeAddr).Msg("serving")
	return http.ListenAndServe(constants.ServeAddr, handler)
}

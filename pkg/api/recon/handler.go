// Package recon exposes the reconciliation pipeline over HTTP: direct
// two-file runs, session-based uploads, and report downloads.
package recon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"vendor_recon/pkg/core/pipeline"
	"vendor_recon/pkg/core/prompt"
	"vendor_recon/pkg/core/session"
	"vendor_recon/pkg/core/store"
	"vendor_recon/pkg/core/utils"
)

const (
	maxUploadBytes    = 32 << 20
	ratingPromptDelay = 5 * time.Minute
)

var (
	orchestrator *pipeline.Orchestrator
	sessions     *session.Manager
	uploadDir    string
	outputDir    string
)

func InitHandler(orch *pipeline.Orchestrator, mgr *session.Manager, uploads, outputs string) {
	orchestrator = orch
	sessions = mgr
	uploadDir = uploads
	outputDir = outputs
}

type runResponse struct {
	Status     string   `json:"status"`
	ReportFile string   `json:"report_file,omitempty"`
	Sections   []string `json:"sections,omitempty"`
	Message    string   `json:"message,omitempty"`
	UsageID    int64    `json:"usage_id,omitempty"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleReconcile runs a one-shot reconciliation from a multipart request
// carrying both files under "vendor" and "soa". Optional form fields:
// mode (clean|dirty, default clean), user_comments, format (slack).
func HandleReconcile(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	vendorPath, err := saveUpload(r, "vendor")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	soaPath, err := saveUpload(r, "soa")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, status, err := run(r.Context(), r.FormValue("mode"), vendorPath, soaPath, r.FormValue("user_comments"))
	if err != nil {
		fmt.Printf("[recon] run failed: %v\n", err)
		http.Error(w, err.Error(), status)
		return
	}

	respond(w, r, &runResponse{
		Status:     "done",
		ReportFile: filepath.Base(result.ReportPath),
		Sections:   result.Sections,
	})
}

// HandleUpload accepts one file at a time for a user session, mirroring a
// chat workflow: the run starts automatically once both sides have
// arrived. Form fields: user_id, channel_id, file, and optionally mode and
// user_comments.
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	userID := r.FormValue("user_id")
	channelID := r.FormValue("channel_id")
	if userID == "" || channelID == "" {
		http.Error(w, "user_id and channel_id are required", http.StatusBadRequest)
		return
	}

	path, err := saveUpload(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := session.ClassifyFilename(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := sessions.GetOrCreate(userID, channelID)
	sess.CancelRating()
	sess.SetFile(kind, path)
	if comments := r.FormValue("user_comments"); comments != "" {
		sess.SetComments(comments)
	}
	fmt.Printf("[recon] session %s: stored %s file\n", sess.ID, kind)

	vendorPath, soaPath, comments, ready := sess.TakeFiles()
	if !ready {
		respond(w, r, &runResponse{
			Status:  "waiting",
			Message: fmt.Sprintf("Received the %s file. Upload the other side to start the reconciliation.", kind),
		})
		return
	}

	mode := r.FormValue("mode")
	result, status, runErr := run(r.Context(), mode, vendorPath, soaPath, comments)

	usageID := logUsage(r.Context(), sess, mode, vendorPath, soaPath, runErr)
	sess.SetUsageID(usageID)

	if runErr != nil {
		fmt.Printf("[recon] session %s run failed: %v\n", sess.ID, runErr)
		http.Error(w, runErr.Error(), status)
		return
	}

	// Ask for a rating later unless the user starts another run first.
	sess.ScheduleRatingPrompt(ratingPromptDelay, func() {
		fmt.Printf("[recon] session %s: rating prompt due (usage %d)\n", sess.ID, usageID)
	})

	respond(w, r, &runResponse{
		Status:     "done",
		ReportFile: filepath.Base(result.ReportPath),
		Sections:   result.Sections,
		UsageID:    usageID,
	})
}

// HandleRules returns the usage instructions, optionally converted to
// Slack mrkdwn.
func HandleRules(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	text := prompt.RulesMessage
	if r.URL.Query().Get("format") == "slack" {
		text = utils.MarkdownToSlack(text)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, text)
}

// HandleDownload serves a previously rendered report by filename.
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	name := r.URL.Query().Get("file")
	if name == "" || name != filepath.Base(name) {
		http.Error(w, "invalid file name", http.StatusBadRequest)
		return
	}

	path := filepath.Join(outputDir, name)
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func run(ctx context.Context, mode, vendorPath, soaPath, userComments string) (*pipeline.Result, int, error) {
	var result *pipeline.Result
	var err error
	switch mode {
	case "", "clean":
		result, err = orchestrator.RunClean(ctx, vendorPath, soaPath)
	case "dirty":
		result, err = orchestrator.RunDirty(ctx, vendorPath, soaPath, userComments)
	default:
		return nil, http.StatusBadRequest, fmt.Errorf("unknown mode %q (want clean or dirty)", mode)
	}
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return result, http.StatusOK, nil
}

func respond(w http.ResponseWriter, r *http.Request, resp *runResponse) {
	if r.FormValue("format") == "slack" {
		for i, s := range resp.Sections {
			resp.Sections[i] = utils.MarkdownToSlack(s)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %q file: %w", field, err)
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	path := filepath.Join(uploadDir, fmt.Sprintf("%s_%s", uuid.New().String()[:8], name))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

func logUsage(ctx context.Context, sess *session.Session, mode, vendorPath, soaPath string, runErr error) int64 {
	if store.GetPool() == nil {
		return 0
	}
	status := "ok"
	if runErr != nil {
		status = "error"
	}
	if mode == "" {
		mode = "clean"
	}
	id, err := store.LogUsage(ctx, store.UsageEntry{
		UserID:     sess.UserID,
		ChannelID:  sess.ChannelID,
		Mode:       mode,
		VendorFile: filepath.Base(vendorPath),
		SOAFile:    filepath.Base(soaPath),
		Status:     status,
	})
	if err != nil {
		fmt.Printf("[recon] usage logging failed: %v\n", err)
		return 0
	}
	return id
}

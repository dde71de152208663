package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "vendor_recon/pkg/api/config"
	apirecon "vendor_recon/pkg/api/recon"
	"vendor_recon/pkg/api/rating"
	"vendor_recon/pkg/core/agent"
	"vendor_recon/pkg/core/extract"
	"vendor_recon/pkg/core/pipeline"
	"vendor_recon/pkg/core/report"
	"vendor_recon/pkg/core/session"
	"vendor_recon/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize agent manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	uploadDir := envOr("RECON_UPLOAD_DIR", "data/uploads")
	outputDir := envOr("RECON_OUTPUT_DIR", "data/reports")
	templatePath := envOr("RECON_TEMPLATE_PATH", "resources/report_template.xlsx")
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Printf("[FATAL] Failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	// Usage logging is optional: the service still reconciles without a DB.
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Usage logging disabled: %v\n", err)
		} else {
			defer store.Close()
			if os.Getenv("DRIVE_BACKUP_FOLDER_ID") != "" {
				store.StartBackupLoop(ctx)
			}
		}
	}

	orchestrator := pipeline.NewOrchestrator(
		extract.NewExtractor(agentMgr),
		report.NewRenderer(templatePath),
		outputDir,
	)
	sessions := session.NewManager()

	// Reconciliation endpoints
	apirecon.InitHandler(orchestrator, sessions, uploadDir, outputDir)
	http.HandleFunc("/api/recon/run", apirecon.HandleReconcile)
	http.HandleFunc("/api/recon/upload", apirecon.HandleUpload)
	http.HandleFunc("/api/recon/report", apirecon.HandleDownload)
	http.HandleFunc("/api/recon/rules", apirecon.HandleRules)

	// Rating endpoints
	rating.InitHandler(sessions)
	http.HandleFunc("/api/recon/rating", rating.HandleRating)

	// Config endpoints
	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	port := envOr("PORT", "8080")
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/recon/run     (vendor + soa multipart, one-shot)")
	fmt.Println("  - POST /api/recon/upload  (session upload, one file at a time)")
	fmt.Println("  - GET  /api/recon/report  (?file=reconciliation_<id>.xlsx)")
	fmt.Println("  - POST /api/recon/rating")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

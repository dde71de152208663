// Command recon runs a single reconciliation from the command line.
//
//	recon -vendor ledger.xlsx -soa statement.xlsx [-mode dirty] [-comments "..."]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"vendor_recon/pkg/core/agent"
	"vendor_recon/pkg/core/extract"
	"vendor_recon/pkg/core/pipeline"
	"vendor_recon/pkg/core/report"
)

func main() {
	vendorPath := flag.String("vendor", "", "path to the vendor ledger export")
	soaPath := flag.String("soa", "", "path to the vendor SOA")
	mode := flag.String("mode", "clean", "clean (structured SOA) or dirty (model extraction)")
	comments := flag.String("comments", "", "extra guidance for dirty-mode extraction")
	outputDir := flag.String("out", ".", "directory for the rendered report")
	templatePath := flag.String("template", "resources/report_template.xlsx", "report template workbook")
	flag.Parse()

	if *vendorPath == "" || *soaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	godotenv.Load()

	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	orchestrator := pipeline.NewOrchestrator(
		extract.NewExtractor(agentMgr),
		report.NewRenderer(*templatePath),
		*outputDir,
	)

	ctx := context.Background()
	var result *pipeline.Result
	var err error
	switch *mode {
	case "clean":
		result, err = orchestrator.RunClean(ctx, *vendorPath, *soaPath)
	case "dirty":
		result, err = orchestrator.RunDirty(ctx, *vendorPath, *soaPath, *comments)
	default:
		fmt.Printf("unknown mode %q (want clean or dirty)\n", *mode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Printf("reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	for _, section := range result.Sections {
		fmt.Println(section)
		fmt.Println()
	}
	fmt.Printf("Report written to %s\n", result.ReportPath)
}

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/job-matcher/internal/config"
	"alfredoptarigan/job-matcher/internal/logger"
	"alfredoptarigan/job-matcher/internal/models"
	"alfredoptarigan/job-matcher/internal/repositories"
	"alfredoptarigan/job-matcher/internal/services"
)

// Column aliases accepted in CSV headers and JSON keys. Job boards export
// wildly inconsistent schemas, so each canonical field matches several names.
var fieldAliases = map[string][]string{
	"title":                  {"title", "job_title", "position", "role", "job_name"},
	"company":                {"company", "employer", "organization", "firm"},
	"description":            {"description", "job_description", "summary", "details"},
	"required_skills":        {"required_skills", "skills", "qualifications", "requirements"},
	"experience_level":       {"experience_level", "level", "seniority", "experience"},
	"education_requirements": {"education_requirements", "education", "degree", "qualification"},
	"location":               {"location", "city", "address", "place"},
	"salary_range":           {"salary_range", "salary", "compensation", "pay"},
}

func main() {
	filePath := flag.String("file", "", "path to a CSV or JSON file of job postings")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("usage: ingest_jobs -file jobs.csv")
	}

	log.Printf("🚀 Starting job ingestion from %s", *filePath)

	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	jobRepo := repositories.NewJobRepository(db)

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	jobStore, err := services.NewJobStore(cfg.Qdrant, cfg.Gemini.EmbeddingDim, zlog)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := jobStore.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	embedPool := services.NewEmbedPool(geminiService, cfg.Matcher.EmbedConcurrency, zlog)
	ingestService := services.NewJobIngestService(geminiService, jobStore, jobRepo, embedPool, zlog)

	jobs, err := loadJobs(*filePath)
	if err != nil {
		log.Fatalf("❌ Failed to read jobs file: %v", err)
	}
	log.Printf("📄 Parsed %d job rows", len(jobs))

	report := ingestService.AddJobs(ctx, jobs)

	for _, r := range report.Results {
		if r.Error != "" {
			log.Printf("   ⚠️  row %d: %s", r.Index, r.Error)
		} else {
			log.Printf("   ✅ row %d: %s", r.Index, r.ID)
		}
	}

	log.Printf("\n🎉 Done: %d inserted, %d failed", report.Inserted, report.Failed)
	zlog.Info("ingestion complete",
		zap.Int("inserted", report.Inserted),
		zap.Int("failed", report.Failed))

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func loadJobs(path string) ([]models.JobPosting, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv or .json", filepath.Ext(path))
	}
}

func loadCSV(path string) ([]models.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	header := records[0]
	var jobs []models.JobPosting
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.ToLower(strings.TrimSpace(col))] = strings.TrimSpace(rec[i])
			}
		}
		jobs = append(jobs, jobFromRow(row))
	}
	return jobs, nil
}

func loadJSON(path string) ([]models.JobPosting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Accept a single object too.
		var one map[string]any
		if err2 := json.Unmarshal(data, &one); err2 != nil {
			return nil, err
		}
		raw = []map[string]any{one}
	}

	var jobs []models.JobPosting
	for _, obj := range raw {
		row := make(map[string]string, len(obj))
		for k, v := range obj {
			row[strings.ToLower(strings.TrimSpace(k))] = fmt.Sprintf("%v", v)
		}
		jobs = append(jobs, jobFromRow(row))
	}
	return jobs, nil
}

func jobFromRow(row map[string]string) models.JobPosting {
	get := func(field string) string {
		for _, alias := range fieldAliases[field] {
			if v, ok := row[alias]; ok && v != "" {
				return v
			}
		}
		return ""
	}

	return models.JobPosting{
		Title:                 get("title"),
		Company:               get("company"),
		Description:           get("description"),
		RequiredSkills:        get("required_skills"),
		ExperienceLevel:       get("experience_level"),
		EducationRequirements: get("education_requirements"),
		Location:              get("location"),
		SalaryRange:           get("salary_range"),
	}
}

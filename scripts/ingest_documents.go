package main

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/recruitment-assistant/internal/config"
	"alfredoptarigan/recruitment-assistant/internal/services"
)

// Ingests reference material (stored job descriptions, assessment question
// banks, interview guides) into the vector store so pipeline prompts can pull
// grounded context.
func main() {
	log.Println("🚀 Starting reference document ingestion...")

	cfg := config.Load()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	resumeParser := services.NewResumeParserService()
	chunker := services.NewTextChunker()

	ctx := context.Background()

	documents := []struct {
		Path  string
		Topic string
		Name  string
	}{
		{
			Path:  "./reference_docs/job_descriptions.pdf",
			Topic: "job_description",
			Name:  "Curated Job Description Library",
		},
		{
			Path:  "./reference_docs/assessment_bank.pdf",
			Topic: "assessment_bank",
			Name:  "Technical Assessment Question Bank",
		},
		{
			Path:  "./reference_docs/interview_guide.pdf",
			Topic: "interview_guide",
			Name:  "Structured Interview Guide",
		},
	}

	for _, doc := range documents {
		log.Printf("📄 Ingesting %s (%s)...\n", doc.Name, doc.Path)

		text, err := resumeParser.ExtractText(doc.Path)
		if err != nil {
			log.Printf("⚠️ Skipping %s: %v\n", doc.Path, err)
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 100)
		log.Printf("✂️ Split into %d chunks\n", len(chunks))

		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("⚠️ Failed to embed chunk %d: %v\n", i, err)
				continue
			}

			docID := fmt.Sprintf("%s-%d", doc.Topic, i)
			if err := qdrantService.UpsertSnippet(ctx, docID, doc.Topic, chunk, embedding); err != nil {
				log.Printf("⚠️ Failed to upsert chunk %d: %v\n", i, err)
			}
		}

		log.Printf("✅ Ingested %s\n", doc.Name)
	}

	log.Println("✅ Reference document ingestion completed")
}

// faqctl operates the FAQ store without an MCP client: import a corpus
// file, compute missing embeddings, or run a one-shot search.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"faqsearch/internal/config"
	"faqsearch/internal/embedder"
	"faqsearch/internal/ingest"
	"faqsearch/internal/ranker"
	"faqsearch/internal/store"
)

func main() {
	importPath := flag.String("import", "", "import a YAML corpus file into the store")
	embed := flag.Bool("embed", false, "compute embeddings for entries that lack one")
	resetEmbeddings := flag.Bool("reset-embeddings", false, "drop all cached embeddings (use after switching providers)")
	query := flag.String("query", "", "run a one-shot search for the given query")
	topK := flag.Int("top-k", 0, "number of results for -query (default from config)")
	flag.Parse()

	log.SetOutput(os.Stderr)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	emb, err := embedder.NewFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize embedder: %v", err)
	}
	defer func() { _ = emb.Close() }()

	ctx := context.Background()
	ran := false

	if *importPath != "" {
		ran = true
		ing := ingest.New(st, emb)
		n, err := ing.ImportFile(ctx, *importPath)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		fmt.Printf("imported %d FAQs from %s\n", n, *importPath)
	}

	if *resetEmbeddings {
		ran = true
		if err := st.DeleteEmbeddings(ctx); err != nil {
			log.Fatalf("failed to drop embeddings: %v", err)
		}
		fmt.Println("dropped all cached embeddings")
	}

	if *embed {
		ran = true
		ing := ingest.New(st, emb)
		n, err := ing.EmbedMissing(ctx)
		if err != nil {
			log.Fatalf("embedding failed: %v", err)
		}
		fmt.Printf("embedded %d FAQs with %s/%s\n", n, emb.Provider(), emb.Model())
	}

	if *query != "" {
		ran = true
		k := *topK
		if k <= 0 {
			k = cfg.DefaultTopK
		}
		rk, err := ranker.New(st, emb, ranker.Weights{
			TFIDF:     cfg.TFIDFWeight,
			Embedding: cfg.EmbeddingWeight,
		})
		if err != nil {
			log.Fatalf("ranker setup failed: %v", err)
		}
		if err := rk.Rebuild(ctx); err != nil {
			log.Fatalf("index build failed: %v", err)
		}
		resp, err := rk.Search(ctx, *query, k)
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			log.Fatalf("failed to format results: %v", err)
		}
		fmt.Println(string(out))
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

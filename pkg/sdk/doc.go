// Package ragdex provides an embeddable Go client for the ragdex document
// ingestion and retrieval pipeline, backed by Redis with search modules.
// It wires the same pipeline the HTTP service runs (extraction, chunking,
// embedding, vector storage, retrieval, grounded answering) without the
// server in between.
//
//	client, _ := ragdex.New(ctx,
//	    ragdex.WithRedis("localhost:6379", ""),
//	    ragdex.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	report, _ := client.Ingest(ctx, ragdex.IngestRequest{
//	    FileID:    "doc-1",
//	    FileName:  "report.pdf",
//	    MediaType: "application/pdf",
//	    Data:      pdfBytes,
//	})
//
//	results, _ := client.Retrieve(ctx, ragdex.Query{Text: "invoice total"})
package ragdex

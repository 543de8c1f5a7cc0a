package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragdex/internal/db"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", q.K)
	var queryStr string
	if q.Filter != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", q.Filter, knnPart)
	} else {
		queryStr = fmt.Sprintf("*=>%s", knnPart)
	}

	args := []string{q.IndexName, queryStr}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	args = append(args,
		"SORTBY", "__vector_score",
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBlob(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// SearchCount returns the number of matches via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

// parseKNNResult converts the RESP2 FT.SEARCH reply, translating cosine
// distance into similarity = 1 - distance, clamped to [0, 1].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	entries, total, err := parseEntries(raw)
	if err != nil || entries == nil {
		return &db.SearchResult{Total: total}, err
	}

	for i := range entries {
		if scoreStr, ok := entries[i].Fields["__vector_score"]; ok {
			if d, perr := strconv.ParseFloat(scoreStr, 64); perr == nil {
				entries[i].Score = max(0, 1.0-d)
			}
			delete(entries[i].Fields, "__vector_score")
		}
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// parseEntries parses the 2-stride reply: [total, key1, fields1, key2, fields2, ...].
func parseEntries(raw []rueidis.RedisMessage) ([]db.SearchEntry, int, error) {
	if len(raw) == 0 {
		return nil, 0, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, 0, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return entries, int(total), nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		k, err := fields[i].ToString()
		if err != nil {
			continue
		}
		v, err := fields[i+1].ToString()
		if err != nil {
			continue
		}
		m[k] = v
	}
	return m
}

// vectorToBlob serializes []float32 to the binary form FT.SEARCH expects.
func vectorToBlob(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
